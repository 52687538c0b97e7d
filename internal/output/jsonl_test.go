// internal/output/jsonl_test.go
package output

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

func sampleRecord() scraper.ValidatedProductRecord {
	return scraper.ValidatedProductRecord{
		RawProductRecord: scraper.RawProductRecord{
			Title:        "Tote Bag",
			Link:         "https://shop.example.com/products/tote",
			Images:       []string{"https://cdn.example.com/img/tote.jpg"},
			PrimaryImage: "https://cdn.example.com/img/tote.jpg",
			Prices: []scraper.PriceEntry{
				{Value: "299,90 TL", NumericValue: 299.9, Currency: "TRY"},
			},
			PageTitle: "Canta - Example Store",
			PageURL:   "https://shop.example.com/collections/canta",
			Timestamp: "2026-03-01T12:00:00Z",
		},
		TitleValid: true,
		LinkValid:  true,
		ImgValid:   true,
		PriceValid: true,
		MediaType:  scraper.MediaTypeImage,
	}
}

func sampleError() scraper.ErrorRecord {
	return scraper.ErrorRecord{
		Message:   "item extraction panic: boom",
		Content:   "<li class=\"product-card\"></li>",
		URL:       "https://shop.example.com/collections/canta",
		PageTitle: "Canta - Example Store",
	}
}

func TestJSONLSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	sink, err := NewJSONLSink(path, "example")
	if err != nil {
		t.Fatalf("failed to open sink: %v", err)
	}

	ctx := context.Background()
	if err := sink.AppendRecord(ctx, sampleRecord()); err != nil {
		t.Fatalf("failed to append record: %v", err)
	}
	if err := sink.AppendError(ctx, sampleError()); err != nil {
		t.Fatalf("failed to append error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("failed to close sink: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to reopen dataset: %v", err)
	}
	defer file.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var obj map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		lines = append(lines, obj)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	if lines[0]["site"] != "example" || lines[0]["title"] != "Tote Bag" {
		t.Errorf("unexpected record line: %v", lines[0])
	}
	if _, hasError := lines[0]["error"]; hasError {
		t.Error("product line must not carry the error flag")
	}
	if lines[1]["error"] != true {
		t.Errorf("expected the error flag on the failure line: %v", lines[1])
	}
}

func TestJSONLSinkRejectsAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	sink, err := NewJSONLSink(path, "example")
	if err != nil {
		t.Fatalf("failed to open sink: %v", err)
	}
	sink.Close()

	if err := sink.AppendRecord(context.Background(), sampleRecord()); err == nil {
		t.Error("expected append after close to fail")
	}
}

func TestJSONLSinkRequiresPath(t *testing.T) {
	if _, err := NewJSONLSink("", "example"); err == nil {
		t.Error("expected an error for an empty path")
	}
}
