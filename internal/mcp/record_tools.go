// ABOUTME: MCP tool implementations for record operations.
// ABOUTME: Registers add, delete, search, rename, quantity, list, and total tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/2389-research/tally/internal/models"
	"github.com/2389-research/tally/internal/records"
)

func (s *Server) registerRecordTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "add_record",
		Description: "Add a named quantity record. If existing records contain the name (case-insensitive), on_match decides: 'new' adds a separate record, 'merge' adds the quantity into the first match, 'abort' (default) changes nothing.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Record name: a letter followed by letters or digits"},
				"quantity": {"type": ["string", "integer"], "description": "Non-negative integer quantity"},
				"on_match": {"type": "string", "enum": ["new", "merge", "abort"], "description": "What to do when similar names exist (default: abort)"}
			},
			"required": ["name", "quantity"]
		}`),
	}, s.handleAddRecord)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "delete_record",
		Description: "Delete the record whose line starts with 'name,'.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Exact record name"}
			},
			"required": ["name"]
		}`),
	}, s.handleDeleteRecord)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "search_records",
		Description: "Find record lines containing a keyword. Results are tagged with line numbers.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"keyword": {"type": "string", "description": "Substring to look for"}
			},
			"required": ["keyword"]
		}`),
	}, s.handleSearchRecords)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "rename_record",
		Description: "Rename a record, keeping its quantity.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"old_name": {"type": "string", "description": "Current record name"},
				"new_name": {"type": "string", "description": "New record name: a letter followed by letters or digits"}
			},
			"required": ["old_name", "new_name"]
		}`),
	}, s.handleRenameRecord)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "set_quantity",
		Description: "Replace a record's quantity.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Exact record name"},
				"quantity": {"type": ["string", "integer"], "description": "New non-negative integer quantity"}
			},
			"required": ["name", "quantity"]
		}`),
	}, s.handleSetQuantity)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "add_quantity",
		Description: "Add a non-negative amount to a record's quantity.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Exact record name"},
				"delta": {"type": ["string", "integer"], "description": "Non-negative integer to add"}
			},
			"required": ["name", "delta"]
		}`),
	}, s.handleAddQuantity)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_records",
		Description: "List all records sorted by their line text.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListRecords)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "total_quantity",
		Description: "Sum the quantity of every record.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleTotalQuantity)
}

// quantityArg accepts a quantity given either as a JSON string or a number
// literal, keeping the literal text for validation.
type quantityArg string

func (q *quantityArg) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = quantityArg(s)
		return nil
	}
	*q = quantityArg(strings.TrimSpace(string(data)))
	return nil
}

func (s *Server) handleAddRecord(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Name     string      `json:"name"`
		Quantity quantityArg `json:"quantity"`
		OnMatch  string      `json:"on_match"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	choice, err := records.ParseMatchChoice(args.OnMatch)
	if err != nil {
		return toolError("%v", err), nil
	}

	result, err := s.recs.AddRecord(ctx, args.Name, string(args.Quantity), records.StaticChoice(choice))
	if err != nil {
		return s.operationError("add_record", err), nil
	}

	switch result.Outcome {
	case records.Aborted:
		var sb strings.Builder
		sb.WriteString("Not added: similar records exist. Retry with on_match 'new' or 'merge'.\n")
		writeNumbered(&sb, result.Matches)
		return toolText(sb.String()), nil
	case records.Merged:
		return toolText(fmt.Sprintf("Merged into line %d: %s", result.Line.Number, result.Line.Text)), nil
	default:
		return toolText(fmt.Sprintf("Added line %d: %s", result.Line.Number, result.Line.Text)), nil
	}
}

func (s *Server) handleDeleteRecord(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Name == "" {
		return toolError("name is required"), nil
	}

	removed, err := s.recs.DeleteRecord(ctx, args.Name)
	if err != nil {
		return s.operationError("delete_record", err), nil
	}

	var sb strings.Builder
	sb.WriteString("Deleted:\n")
	writeNumbered(&sb, removed)
	return toolText(sb.String()), nil
}

func (s *Server) handleSearchRecords(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Keyword string `json:"keyword"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Keyword == "" {
		return toolError("keyword is required"), nil
	}

	found, err := s.recs.SearchRecord(ctx, args.Keyword)
	var notFound *models.NotFoundError
	if errors.As(err, &notFound) {
		return toolText("No matching records found."), nil
	}
	if err != nil {
		return s.operationError("search_records", err), nil
	}

	var sb strings.Builder
	writeNumbered(&sb, found)
	return toolText(sb.String()), nil
}

func (s *Server) handleRenameRecord(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.OldName == "" {
		return toolError("old_name is required"), nil
	}

	updated, err := s.recs.UpdateRecordName(ctx, args.OldName, args.NewName)
	if err != nil {
		return s.operationError("rename_record", err), nil
	}

	var sb strings.Builder
	sb.WriteString("Renamed:\n")
	writeNumbered(&sb, updated)
	return toolText(sb.String()), nil
}

func (s *Server) handleSetQuantity(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Name     string      `json:"name"`
		Quantity quantityArg `json:"quantity"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	updated, err := s.recs.SetQuantity(ctx, args.Name, string(args.Quantity))
	if err != nil {
		return s.operationError("set_quantity", err), nil
	}

	var sb strings.Builder
	sb.WriteString("Updated:\n")
	writeNumbered(&sb, updated)
	return toolText(sb.String()), nil
}

func (s *Server) handleAddQuantity(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Name  string      `json:"name"`
		Delta quantityArg `json:"delta"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	updated, err := s.recs.AddQuantity(ctx, args.Name, string(args.Delta))
	if err != nil {
		return s.operationError("add_quantity", err), nil
	}

	var sb strings.Builder
	sb.WriteString("Updated:\n")
	writeNumbered(&sb, updated)
	return toolText(sb.String()), nil
}

func (s *Server) handleListRecords(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	lines, err := s.recs.ListSorted(ctx)
	if err != nil {
		return s.operationError("list_records", err), nil
	}
	if len(lines) == 0 {
		return toolText("No records."), nil
	}
	return toolText(strings.Join(lines, "\n") + "\n"), nil
}

func (s *Server) handleTotalQuantity(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	total, err := s.recs.TotalQuantity(ctx)
	if err != nil {
		return s.operationError("total_quantity", err), nil
	}
	return toolText(fmt.Sprintf("Total quantity: %d", total)), nil
}

// operationError converts a controller error into a tool error result.
func (s *Server) operationError(tool string, err error) *gomcp.CallToolResult {
	s.logger.Debug("tool call failed", zap.String("tool", tool), zap.Error(err))
	return toolError("%s failed: %v", tool, err)
}

func writeNumbered(sb *strings.Builder, lines []models.NumberedLine) {
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("%d:%s\n", l.Number, l.Text))
	}
}

func toolText(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
