// internal/output/jsonl.go
package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

// JSONLSink appends one JSON object per line. Product records and error
// records share the file; error objects carry "error": true so downstream
// consumers can split them without a second file.
type JSONLSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	site   string
	closed bool
}

// NewJSONLSink opens (or creates) the target file for appending.
func NewJSONLSink(path, site string) (*JSONLSink, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonl sink requires a file path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	return &JSONLSink{
		file:   file,
		writer: bufio.NewWriter(file),
		site:   site,
	}, nil
}

// AppendRecord implements RecordSink.
func (s *JSONLSink) AppendRecord(ctx context.Context, record scraper.ValidatedProductRecord) error {
	return s.appendLine(struct {
		Site string `json:"site"`
		scraper.ValidatedProductRecord
	}{Site: s.site, ValidatedProductRecord: record})
}

// AppendError implements RecordSink.
func (s *JSONLSink) AppendError(ctx context.Context, failure scraper.ErrorRecord) error {
	failure.Error = true
	return s.appendLine(struct {
		Site string `json:"site"`
		scraper.ErrorRecord
	}{Site: s.site, ErrorRecord: failure})
}

func (s *JSONLSink) appendLine(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("sink is closed")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Flush implements RecordSink.
func (s *JSONLSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.writer.Flush()
}

// Close implements RecordSink.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to flush sink: %w", err)
	}
	return s.file.Close()
}
