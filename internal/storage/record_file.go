// ABOUTME: Flat-file record storage, one name,quantity line per record.
// ABOUTME: Reads retry on transient errors; rewrites go through an atomic rename.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/renameio/v2"
)

const defaultFileMode os.FileMode = 0644

// RecordFile stores records as lines of a single text file.
type RecordFile struct {
	path        string
	retryConfig retry.Config
}

// NewRecordFile opens the record file at path, creating it empty if it doesn't exist.
func NewRecordFile(path string) (*RecordFile, error) {
	if path == "" {
		return nil, fmt.Errorf("record file path is required")
	}
	// #nosec G304 -- path is supplied by the user on the command line
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, defaultFileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close record file: %w", err)
	}

	return &RecordFile{
		path: path,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}, nil
}

// Path returns the location of the record file.
func (s *RecordFile) Path() string {
	return s.path
}

// ReadLines returns every physical line of the file.
func (s *RecordFile) ReadLines(ctx context.Context) ([]string, error) {
	retryer := retry.New[[]string](s.retryConfig)

	return retryer.Do(ctx, func(ctx context.Context) ([]string, error) {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read record file: %w", err)
		}
		return splitLines(string(data)), nil
	})
}

// WriteLines atomically replaces the file contents, keeping the existing
// permissions and line terminator.
func (s *RecordFile) WriteLines(ctx context.Context, lines []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := defaultFileMode
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	eol := "\n"
	if data, err := os.ReadFile(s.path); err == nil {
		eol = lineEnding(string(data))
	}

	if err := renameio.WriteFile(s.path, []byte(joinLines(lines, eol)), mode); err != nil {
		return fmt.Errorf("failed to rewrite record file: %w", err)
	}
	return nil
}

// AppendLine adds a line to the end of the file, terminating a dangling last
// line first. The file's existing line terminator is reused.
func (s *RecordFile) AppendLine(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// #nosec G304 -- path is supplied by the user on the command line
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, defaultFileMode)
	if err != nil {
		return fmt.Errorf("failed to open record file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to inspect record file: %w", err)
	}

	content := string(data)
	eol := lineEnding(content)
	prefix := ""
	if content != "" && !strings.HasSuffix(content, "\n") {
		prefix = eol
	}

	if _, err := f.WriteString(prefix + line + eol); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return f.Close()
}

// Close releases any resources held by the store.
func (s *RecordFile) Close() error {
	return nil
}

// lineEnding returns "\r\n" for content that already uses CRLF terminators
// and "\n" otherwise.
func lineEnding(content string) string {
	if strings.Contains(content, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// splitLines splits file content into lines, dropping the final terminator.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// joinLines renders lines back to file content, each ending with eol.
func joinLines(lines []string, eol string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, eol) + eol
}
