// internal/output/types.go

// Package output provides the sinks a crawl writes into: line-based files,
// spreadsheets, relational databases, and MongoDB, plus the run summary
// writer and the artifact store for failure screenshots.
package output

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

// Supported sink formats.
const (
	FormatJSONL      = "jsonl"
	FormatCSV        = "csv"
	FormatExcel      = "excel"
	FormatSQLite     = "sqlite"
	FormatPostgreSQL = "postgresql"
	FormatMySQL      = "mysql"
	FormatMongoDB    = "mongodb"
)

// ValidFormats returns all supported sink format values.
func ValidFormats() []string {
	return []string{
		FormatJSONL, FormatCSV, FormatExcel,
		FormatSQLite, FormatPostgreSQL, FormatMySQL, FormatMongoDB,
	}
}

// IsValidFormat checks whether a format value is supported.
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats() {
		if format == valid {
			return true
		}
	}
	return false
}

// RecordSink receives validated records and per-item error records as the
// crawl produces them. Appends are incremental: a crash mid-run loses at
// most the unflushed tail, never the whole dataset.
type RecordSink interface {
	AppendRecord(ctx context.Context, record scraper.ValidatedProductRecord) error
	AppendError(ctx context.Context, failure scraper.ErrorRecord) error
	Flush() error
	Close() error
}

// recordColumns is the fixed column order shared by the tabular sinks. The
// record schema is closed, so columns are static rather than discovered.
var recordColumns = []string{
	"site",
	"title",
	"link",
	"primary_image",
	"images",
	"price",
	"currency",
	"prices",
	"videos",
	"media_type",
	"not_in_stock",
	"title_valid",
	"link_valid",
	"img_valid",
	"price_valid",
	"video_valid",
	"page_url",
	"page_title",
	"collected_at",
}

// errorColumns is the fixed column order for per-item failure rows.
var errorColumns = []string{
	"site",
	"message",
	"content",
	"url",
	"page_title",
}

// firstPrice returns the numeric value and currency of the first usable
// price entry, zero when every entry is unset or errored.
func firstPrice(record scraper.ValidatedProductRecord) (float64, string) {
	for _, entry := range record.Prices {
		if entry.PriceScrapeError || entry.UnsetPrice {
			continue
		}
		if entry.NumericValue > 0 {
			return entry.NumericValue, entry.Currency
		}
	}
	return 0, ""
}

// jsonCell marshals a value for embedding in a single tabular cell. Slices
// of prices and image URLs survive round-trips through CSV this way.
func jsonCell(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// recordRow flattens a validated record into the recordColumns order.
func recordRow(site string, record scraper.ValidatedProductRecord) []string {
	price, currency := firstPrice(record)
	return []string{
		site,
		record.Title,
		record.Link,
		record.PrimaryImage,
		jsonCell(record.Images),
		strconv.FormatFloat(price, 'f', -1, 64),
		currency,
		jsonCell(record.Prices),
		jsonCell(record.Videos),
		record.MediaType,
		strconv.FormatBool(record.ProductNotInStock),
		strconv.FormatBool(record.TitleValid),
		strconv.FormatBool(record.LinkValid),
		strconv.FormatBool(record.ImgValid),
		strconv.FormatBool(record.PriceValid),
		strconv.FormatBool(record.VideoValid),
		record.PageURL,
		record.PageTitle,
		record.Timestamp,
	}
}

// errorRow flattens a per-item failure into the errorColumns order.
func errorRow(site string, failure scraper.ErrorRecord) []string {
	return []string{
		site,
		failure.Message,
		failure.Content,
		failure.URL,
		failure.PageTitle,
	}
}
