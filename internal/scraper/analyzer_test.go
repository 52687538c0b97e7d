// internal/scraper/analyzer_test.go
package scraper

import (
	"testing"
	"time"
)

func validatedRecord(link, pageURL, timestamp string) ValidatedProductRecord {
	return ValidatedProductRecord{
		RawProductRecord: RawProductRecord{
			Title:     "Bag",
			Link:      link,
			PageURL:   pageURL,
			Timestamp: timestamp,
		},
		TitleValid: true,
		LinkValid:  true,
		ImgValid:   true,
		PriceValid: true,
	}
}

func TestAnalyzeDuplicates(t *testing.T) {
	page1 := "https://shop.example.com/collections/canta"
	page2 := "https://shop.example.com/collections/canta?page=2"
	ts := Timestamp(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	// Links A, B, A, C, A: A repeats three times.
	records := []ValidatedProductRecord{
		validatedRecord("https://shop.example.com/products/a", page1, ts),
		validatedRecord("https://shop.example.com/products/b", page1, ts),
		validatedRecord("https://shop.example.com/products/a", page2, ts),
		validatedRecord("https://shop.example.com/products/c", page2, ts),
		validatedRecord("https://shop.example.com/products/a", page2, ts),
	}

	summary := NewAnalyzer().Analyze(records)

	if summary.CollectedItems != 5 {
		t.Errorf("expected 5 collected, got %d", summary.CollectedItems)
	}
	if summary.ValidItems != 5 {
		t.Errorf("expected 5 valid, got %d", summary.ValidItems)
	}
	if summary.UniqueLinks != 3 {
		t.Errorf("expected 3 unique links, got %d", summary.UniqueLinks)
	}
	// page1 and page2 differ only by query string, so they are one page.
	if summary.UniquePages != 1 {
		t.Errorf("expected 1 unique page, got %d", summary.UniquePages)
	}
	if summary.DuplicateLinks != 1 {
		t.Errorf("expected 1 duplicated link, got %d", summary.DuplicateLinks)
	}

	if len(summary.DuplicateGroups) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(summary.DuplicateGroups))
	}
	group := summary.DuplicateGroups[0]
	if group.Link != "https://shop.example.com/products/a" {
		t.Errorf("unexpected duplicate link %q", group.Link)
	}
	if group.Count != 3 {
		t.Errorf("expected count 3, got %d", group.Count)
	}
	if group.FirstSeen != 0 {
		t.Errorf("expected first seen at index 0, got %d", group.FirstSeen)
	}
}

func TestAnalyzeGroupOrdering(t *testing.T) {
	page := "https://shop.example.com/collections/canta"
	ts := Timestamp(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	records := []ValidatedProductRecord{
		validatedRecord("https://shop.example.com/products/x", page, ts),
		validatedRecord("https://shop.example.com/products/y", page, ts),
		validatedRecord("https://shop.example.com/products/y", page, ts),
		validatedRecord("https://shop.example.com/products/y", page, ts),
		validatedRecord("https://shop.example.com/products/x", page, ts),
	}

	groups := NewAnalyzer().Analyze(records).DuplicateGroups
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Link != "https://shop.example.com/products/y" || groups[0].Count != 3 {
		t.Errorf("expected y first with count 3, got %+v", groups[0])
	}
	if groups[1].Link != "https://shop.example.com/products/x" || groups[1].Count != 2 {
		t.Errorf("expected x second with count 2, got %+v", groups[1])
	}
}

func TestAnalyzeTimeSpan(t *testing.T) {
	page := "https://shop.example.com/collections/canta"
	records := []ValidatedProductRecord{
		validatedRecord("https://shop.example.com/products/a", page,
			Timestamp(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))),
		validatedRecord("https://shop.example.com/products/b", page,
			Timestamp(time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC))),
		// Malformed timestamps are skipped, not fatal.
		validatedRecord("https://shop.example.com/products/c", page, "not-a-time"),
	}

	summary := NewAnalyzer().Analyze(records)
	if summary.TimeSpanMinutes != 30 {
		t.Errorf("expected 30 minute span, got %v", summary.TimeSpanMinutes)
	}
}

func TestAnalyzeInvalidCounting(t *testing.T) {
	page := "https://shop.example.com/collections/canta"
	ts := Timestamp(time.Now())

	invalid := validatedRecord("https://shop.example.com/products/a", page, ts)
	invalid.PriceValid = false

	summary := NewAnalyzer().Analyze([]ValidatedProductRecord{
		invalid,
		validatedRecord("https://shop.example.com/products/b", page, ts),
	})
	if summary.ValidItems != 1 || summary.InvalidItems != 1 {
		t.Errorf("expected 1 valid and 1 invalid, got %d and %d", summary.ValidItems, summary.InvalidItems)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	summary := NewAnalyzer().Analyze(nil)
	if summary.CollectedItems != 0 || summary.UniquePages != 0 || summary.TimeSpanMinutes != 0 {
		t.Errorf("expected zeroed summary, got %+v", summary)
	}
}
