// internal/output/summary.go
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

// SummaryWriter persists the run summary. Write-once: a second write for
// the same run is a programming error and is rejected.
type SummaryWriter struct {
	mu      sync.Mutex
	path    string
	written bool
}

// NewSummaryWriter creates a writer targeting the given file.
func NewSummaryWriter(path string) *SummaryWriter {
	return &SummaryWriter{path: path}
}

// Write serializes the summary as indented JSON.
func (w *SummaryWriter) Write(summary scraper.RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written {
		return fmt.Errorf("run summary already written")
	}
	if w.path == "" {
		return fmt.Errorf("summary writer requires a file path")
	}
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	w.written = true
	return nil
}
