// internal/scraper/types.go

// Package scraper implements the selector-resolution and record-extraction
// engine: selector scoring, per-field extraction, record assembly, price
// normalization, validation, pagination planning, and run analysis.
package scraper

import (
	"time"
)

// Media types assigned to a validated record.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// ScoredSelector carries the match count and specificity computed for one
// candidate selector against a scope.
type ScoredSelector struct {
	Selector         string `json:"selector"`
	MatchCount       int    `json:"match_count"`
	SpecificityScore int    `json:"specificity_score"`
	CombinedScore    int    `json:"combined_score"`
}

// PriceEntry is one extracted price value. A product item may carry several
// (original vs. discounted price), so records hold a slice, not a scalar.
type PriceEntry struct {
	Value     string `json:"value"`
	Selector  string `json:"selector"`
	Attribute string `json:"attribute"`

	// Set by the price normalizer.
	NumericValue     float64 `json:"numeric_value"`
	Currency         string  `json:"currency,omitempty"`
	UnsetPrice       bool    `json:"unset_price,omitempty"`
	PriceScrapeError bool    `json:"price_scrape_error,omitempty"`
	ParseError       string  `json:"parse_error,omitempty"`
}

// RawProductRecord is the output of assembling one product-item element.
type RawProductRecord struct {
	Title             string            `json:"title,omitempty"`
	Images            []string          `json:"images,omitempty"`
	PrimaryImage      string            `json:"primary_image,omitempty"`
	Link              string            `json:"link,omitempty"`
	Prices            []PriceEntry      `json:"prices,omitempty"`
	Videos            []string          `json:"videos,omitempty"`
	ProductNotInStock bool              `json:"product_not_in_stock,omitempty"`
	MatchedSelectors  map[string]string `json:"matched_selectors,omitempty"`
	PageTitle         string            `json:"page_title"`
	PageURL           string            `json:"page_url"`
	Timestamp         string            `json:"timestamp"`
}

// ErrorRecord captures a per-item extraction failure. The element's outer
// HTML is kept for diagnosis.
type ErrorRecord struct {
	Error     bool   `json:"error"`
	Message   string `json:"message"`
	Content   string `json:"content"`
	URL       string `json:"url"`
	PageTitle string `json:"page_title"`
}

// ItemResult is the per-item outcome of record assembly. Exactly one of
// Record and Failure is non-nil: a bad item never drops its siblings.
type ItemResult struct {
	Record  *RawProductRecord
	Failure *ErrorRecord
}

// IsError reports whether the item produced an ErrorRecord.
func (r ItemResult) IsError() bool {
	return r.Failure != nil
}

// ValidatedProductRecord is a RawProductRecord plus per-field validity flags.
type ValidatedProductRecord struct {
	RawProductRecord

	ImgValid       bool   `json:"img_valid"`
	LinkValid      bool   `json:"link_valid"`
	TitleValid     bool   `json:"title_valid"`
	PageTitleValid bool   `json:"page_title_valid"`
	PriceValid     bool   `json:"price_valid"`
	VideoValid     bool   `json:"video_valid"`
	MediaType      string `json:"media_type"`
}

// PageOutcome aggregates what one page visit produced. Consumed by logging
// and metrics; the per-item results are the actual contract.
type PageOutcome struct {
	PageURL       string
	ItemSelector  string
	Items         []ItemResult
	CandidateHits int
	ErrorCount    int
	ProductPage   bool
}

// DuplicateGroup is a set of records sharing one canonical link.
type DuplicateGroup struct {
	Link      string `json:"link"`
	Count     int    `json:"count"`
	FirstSeen int    `json:"first_seen"`
}

// RunSummary is the write-once aggregate produced at the end of a crawl.
type RunSummary struct {
	SiteName        string           `json:"site_name"`
	CollectedItems  int              `json:"collected_items"`
	ValidItems      int              `json:"valid_items"`
	ErrorItems      int              `json:"error_items"`
	InvalidItems    int              `json:"invalid_items"`
	UniquePages     int              `json:"unique_pages"`
	UniqueLinks     int              `json:"unique_links"`
	DuplicateLinks  int              `json:"duplicate_links"`
	DuplicateGroups []DuplicateGroup `json:"duplicate_groups,omitempty"`
	TimeSpanMinutes float64          `json:"time_span_minutes"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
}

// Timestamp formats a crawl timestamp the way records store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
