// internal/output/excel.go
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

const (
	excelRecordSheet = "Products"
	excelErrorSheet  = "Errors"

	// Excel's hard limit on characters per cell.
	excelMaxCellLength = 32767
)

// ExcelSink writes records into a workbook with separate sheets for
// products and per-item failures. The workbook is held in memory and
// written on Flush and Close; excelize has no append mode.
type ExcelSink struct {
	mu        sync.Mutex
	file      *excelize.File
	path      string
	site      string
	recordRow int
	errorRow  int
	closed    bool
}

// NewExcelSink creates a workbook sink at the given path.
func NewExcelSink(path, site string) (*ExcelSink, error) {
	if path == "" {
		return nil, fmt.Errorf("excel sink requires a file path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file := excelize.NewFile()
	if err := file.SetSheetName(file.GetSheetName(0), excelRecordSheet); err != nil {
		return nil, fmt.Errorf("failed to name record sheet: %w", err)
	}
	if _, err := file.NewSheet(excelErrorSheet); err != nil {
		return nil, fmt.Errorf("failed to create error sheet: %w", err)
	}

	sink := &ExcelSink{file: file, path: path, site: site}
	if err := sink.writeRow(excelRecordSheet, 1, recordColumns); err != nil {
		return nil, err
	}
	if err := sink.writeRow(excelErrorSheet, 1, errorColumns); err != nil {
		return nil, err
	}
	sink.recordRow = 2
	sink.errorRow = 2
	return sink, nil
}

func (s *ExcelSink) writeRow(sheet string, row int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		if len(v) > excelMaxCellLength {
			v = v[:excelMaxCellLength]
		}
		cells[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := s.file.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// AppendRecord implements RecordSink.
func (s *ExcelSink) AppendRecord(ctx context.Context, record scraper.ValidatedProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	if err := s.writeRow(excelRecordSheet, s.recordRow, recordRow(s.site, record)); err != nil {
		return err
	}
	s.recordRow++
	return nil
}

// AppendError implements RecordSink.
func (s *ExcelSink) AppendError(ctx context.Context, failure scraper.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	if err := s.writeRow(excelErrorSheet, s.errorRow, errorRow(s.site, failure)); err != nil {
		return err
	}
	s.errorRow++
	return nil
}

// Flush implements RecordSink. Saves the workbook so a crash later in the
// crawl keeps everything appended so far.
func (s *ExcelSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Close implements RecordSink.
func (s *ExcelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.file.SaveAs(s.path); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return s.file.Close()
}
