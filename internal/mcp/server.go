// ABOUTME: MCP server initialization and configuration for tally.
// ABOUTME: Sets up a stdio server exposing record operations as tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/2389-research/tally/internal/models"
	"github.com/2389-research/tally/internal/records"
)

// RecordService is the record controller surface exposed as tools.
type RecordService interface {
	AddRecord(ctx context.Context, name, quantity string, chooser records.Chooser) (*records.AddResult, error)
	DeleteRecord(ctx context.Context, name string) ([]models.NumberedLine, error)
	SearchRecord(ctx context.Context, keyword string) ([]models.NumberedLine, error)
	UpdateRecordName(ctx context.Context, oldName, newName string) ([]models.NumberedLine, error)
	SetQuantity(ctx context.Context, name, quantity string) ([]models.NumberedLine, error)
	AddQuantity(ctx context.Context, name, delta string) ([]models.NumberedLine, error)
	ListSorted(ctx context.Context) ([]string, error)
	TotalQuantity(ctx context.Context) (int64, error)
}

// Server wraps the MCP server with a record service.
type Server struct {
	mcp    *gomcp.Server
	recs   RecordService
	logger *zap.Logger
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an MCP server with record tools.
func NewServer(svc RecordService, version string, opts ...ServerOption) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("record service is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "tally",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcp:    mcpServer,
		recs:   svc,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerRecordTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Debug("serving MCP over stdio")
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
