// internal/config/types.go

// Package config provides configuration types and loading for shelfscraper.
// A site configuration describes everything site-specific about a crawl:
// candidate selector lists per semantic field, pagination strategy, scroll
// behavior, exclude patterns, and exchange rates. Configurations are loaded
// once per crawl run and are immutable for the run's duration.
package config

import (
	"time"
)

// Pagination strategies. The strategy is a closed declarative grammar;
// configuration never carries executable pagination expressions.
const (
	PaginationNone       = "none"
	PaginationButtonScan = "button_scan"
	PaginationArithmetic = "arithmetic"
)

// Config is the top-level configuration for one crawl run.
type Config struct {
	// Name identifies this configuration
	Name string `yaml:"name" json:"name"`

	// Version of the configuration format
	Version string `yaml:"version" json:"version"`

	// Site holds the site-specific crawl settings
	Site SiteConfig `yaml:"site" json:"site"`

	// Output configuration
	Output OutputConfig `yaml:"output" json:"output"`

	// Browser configuration
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// SiteConfig describes the site-specific behavior of one crawl.
type SiteConfig struct {
	// Name is the site identifier records and sinks are keyed by
	Name string `yaml:"name" json:"name"`

	// StartURL is the first category page to visit
	StartURL string `yaml:"start_url" json:"start_url"`

	// Selectors holds the candidate selector lists per semantic field
	Selectors SelectorSetsConfig `yaml:"selectors" json:"selectors"`

	// Attributes holds per-field attribute priority lists
	Attributes AttributesConfig `yaml:"attributes" json:"attributes"`

	// Pagination settings
	Pagination PaginationConfig `yaml:"pagination" json:"pagination"`

	// ExcludePatterns filters planned URLs; "*" wildcards are stripped
	// before substring matching
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty" json:"exclude_patterns,omitempty"`

	// ImageCDNBase prefixes relative image URLs when set
	ImageCDNBase string `yaml:"image_cdn_base,omitempty" json:"image_cdn_base,omitempty"`

	// Scrollable pages are scrolled to the bottom before extraction
	Scrollable bool `yaml:"scrollable,omitempty" json:"scrollable,omitempty"`

	// ShowMoreSelector, when set, is clicked repeatedly before extraction
	ShowMoreSelector string `yaml:"show_more_selector,omitempty" json:"show_more_selector,omitempty"`

	// GateTimeout bounds the wait for a product-item selector to appear
	GateTimeout time.Duration `yaml:"gate_timeout,omitempty" json:"gate_timeout,omitempty"`

	// ExchangeRates for optional price conversion to TRY
	ExchangeRates ExchangeRates `yaml:"exchange_rates,omitempty" json:"exchange_rates,omitempty"`

	// Debug enables diagnostic artifact capture beyond timeouts
	Debug bool `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// SelectorSetsConfig holds the raw candidate selector strings per field as
// they appear in configuration files. Order is a priority hint when scores
// tie. Compile resolves these into tagged Selector values.
type SelectorSetsConfig struct {
	ProductItem  []string `yaml:"product_item" json:"product_item"`
	ProductPage  []string `yaml:"product_page,omitempty" json:"product_page,omitempty"`
	Title        []string `yaml:"title" json:"title"`
	Image        []string `yaml:"image,omitempty" json:"image,omitempty"`
	Link         []string `yaml:"link,omitempty" json:"link,omitempty"`
	Price        []string `yaml:"price,omitempty" json:"price,omitempty"`
	Video        []string `yaml:"video,omitempty" json:"video,omitempty"`
	NotAvailable []string `yaml:"not_available,omitempty" json:"not_available,omitempty"`
}

// AttributesConfig lists attribute names tried in order per field. The
// pseudo-attribute "text" resolves to the element's text content.
type AttributesConfig struct {
	Title []string `yaml:"title,omitempty" json:"title,omitempty"`
	Image []string `yaml:"image,omitempty" json:"image,omitempty"`
	Price []string `yaml:"price,omitempty" json:"price,omitempty"`
	Video []string `yaml:"video,omitempty" json:"video,omitempty"`
}

// PaginationConfig selects and parameterizes a pagination strategy.
type PaginationConfig struct {
	// Strategy is one of none, button_scan, arithmetic
	Strategy string `yaml:"strategy" json:"strategy"`

	// Param is the URL suffix the page number is appended to, e.g. "?page="
	Param string `yaml:"param,omitempty" json:"param,omitempty"`

	// Postfixes mark a URL as already paginated; planning is skipped for
	// URLs containing any of them
	Postfixes []string `yaml:"postfixes,omitempty" json:"postfixes,omitempty"`

	// ButtonSelector locates pagination controls for button_scan
	ButtonSelector string `yaml:"button_selector,omitempty" json:"button_selector,omitempty"`

	// TotalCountSelector locates the total-item counter for arithmetic
	TotalCountSelector string `yaml:"total_count_selector,omitempty" json:"total_count_selector,omitempty"`

	// ItemsPerPage divides the total count for arithmetic
	ItemsPerPage int `yaml:"items_per_page,omitempty" json:"items_per_page,omitempty"`

	// MaxPages caps planned pages regardless of strategy
	MaxPages int `yaml:"max_pages,omitempty" json:"max_pages,omitempty"`
}

// ExchangeRates are face-value multipliers to TRY.
type ExchangeRates struct {
	USD float64 `yaml:"usd,omitempty" json:"usd,omitempty"`
	EUR float64 `yaml:"eur,omitempty" json:"eur,omitempty"`
}

// OutputConfig defines where records and the run summary go.
type OutputConfig struct {
	// Format of the record sink (jsonl, csv, excel, sqlite, postgresql,
	// mysql, mongodb)
	Format string `yaml:"format" json:"format"`

	// File path for file-based sinks
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	// ConnectionString for database sinks
	ConnectionString string `yaml:"connection_string,omitempty" json:"connection_string,omitempty"`

	// Table or collection name for database sinks
	Table string `yaml:"table,omitempty" json:"table,omitempty"`

	// Database name for MongoDB
	Database string `yaml:"database,omitempty" json:"database,omitempty"`

	// SummaryFile receives the run summary JSON
	SummaryFile string `yaml:"summary_file,omitempty" json:"summary_file,omitempty"`

	// ArtifactDir receives diagnostic screenshots and sampled payloads
	ArtifactDir string `yaml:"artifact_dir,omitempty" json:"artifact_dir,omitempty"`
}

// BrowserConfig defines browser automation settings.
type BrowserConfig struct {
	// Headless mode
	Headless bool `yaml:"headless" json:"headless"`

	// UserAgent to use
	UserAgent string `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`

	// DisableImages to speed up loading
	DisableImages bool `yaml:"disable_images,omitempty" json:"disable_images,omitempty"`

	// Timeout for navigation
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// ViewportWidth and ViewportHeight of the emulated window
	ViewportWidth  int `yaml:"viewport_width,omitempty" json:"viewport_width,omitempty"`
	ViewportHeight int `yaml:"viewport_height,omitempty" json:"viewport_height,omitempty"`
}

// MetricsConfig defines the metrics/status endpoint settings.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	ListenAddress string `yaml:"listen_address,omitempty" json:"listen_address,omitempty"`
}

// RatePerSecond is the default request pacing when none is configured.
const RatePerSecond = 1.0

// DefaultGateTimeout bounds the product-page gate when unset.
const DefaultGateTimeout = 10 * time.Second
