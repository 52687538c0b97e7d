// internal/output/csv.go
package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

// CSVSink writes records as CSV rows with a fixed header. Error records go
// to a sidecar file next to the dataset; mixing free-form failure HTML into
// the product table corrupts downstream spreadsheet imports.
type CSVSink struct {
	mu         sync.Mutex
	file       *os.File
	writer     *csv.Writer
	errFile    *os.File
	errWriter  *csv.Writer
	site       string
	wroteHead  bool
	wroteEHead bool
	closed     bool
}

// NewCSVSink opens the dataset file and the error sidecar for appending.
func NewCSVSink(path, site string) (*CSVSink, error) {
	if path == "" {
		return nil, fmt.Errorf("csv sink requires a file path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	errFile, err := os.OpenFile(errorSidecarPath(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open error file: %w", err)
	}

	return &CSVSink{
		file:      file,
		writer:    csv.NewWriter(file),
		errFile:   errFile,
		errWriter: csv.NewWriter(errFile),
		site:      site,
	}, nil
}

// errorSidecarPath derives the failure file name from the dataset path.
func errorSidecarPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_errors" + ext
}

// AppendRecord implements RecordSink.
func (s *CSVSink) AppendRecord(ctx context.Context, record scraper.ValidatedProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	if !s.wroteHead {
		if err := s.writer.Write(recordColumns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		s.wroteHead = true
	}
	if err := s.writer.Write(recordRow(s.site, record)); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// AppendError implements RecordSink.
func (s *CSVSink) AppendError(ctx context.Context, failure scraper.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	if !s.wroteEHead {
		if err := s.errWriter.Write(errorColumns); err != nil {
			return fmt.Errorf("failed to write error header: %w", err)
		}
		s.wroteEHead = true
	}
	if err := s.errWriter.Write(errorRow(s.site, failure)); err != nil {
		return fmt.Errorf("failed to write error record: %w", err)
	}
	return nil
}

// Flush implements RecordSink.
func (s *CSVSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.writer.Flush()
	s.errWriter.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	if err := s.errWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush errors: %w", err)
	}
	return nil
}

// Close implements RecordSink.
func (s *CSVSink) Close() error {
	if err := s.Flush(); err != nil {
		s.file.Close()
		s.errFile.Close()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.file.Close(); err != nil {
		s.errFile.Close()
		return err
	}
	return s.errFile.Close()
}
