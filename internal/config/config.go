// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads and validates a configuration file. Selector
// resolution runs here too, so a configuration carrying an unknown computed
// selector or a raw function expression never loads.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Load(data)
}

// Load parses, defaults, and validates configuration bytes.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset fields with working values.
func (c *Config) applyDefaults() {
	if c.Site.GateTimeout <= 0 {
		c.Site.GateTimeout = DefaultGateTimeout
	}
	if c.Site.Attributes.Title == nil {
		c.Site.Attributes.Title = []string{"text"}
	}
	if c.Site.Attributes.Image == nil {
		c.Site.Attributes.Image = []string{"src", "data-src", "srcset"}
	}
	if c.Site.Attributes.Price == nil {
		c.Site.Attributes.Price = []string{"text", "content"}
	}
	if c.Site.Attributes.Video == nil {
		c.Site.Attributes.Video = []string{"src", "data-src"}
	}
	if c.Site.Pagination.Strategy == "" {
		c.Site.Pagination.Strategy = PaginationNone
	}
	if c.Output.Format == "" {
		c.Output.Format = "jsonl"
	}
	if c.Output.File == "" {
		c.Output.File = "dataset.jsonl"
	}
	if c.Output.SummaryFile == "" {
		c.Output.SummaryFile = "run_summary.json"
	}
	if c.Output.ArtifactDir == "" {
		c.Output.ArtifactDir = "artifacts"
	}
	if c.Browser.Timeout <= 0 {
		c.Browser.Timeout = 60 * time.Second
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = 1366
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = 900
	}
	if c.Metrics.ListenAddress == "" {
		c.Metrics.ListenAddress = ":9090"
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.Name) == "" {
		return fmt.Errorf("site name is required")
	}

	if c.Site.StartURL == "" {
		return fmt.Errorf("site start_url is required")
	}
	u, err := url.Parse(c.Site.StartURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("site start_url must be an absolute http(s) URL: %q", c.Site.StartURL)
	}

	if len(c.Site.Selectors.ProductItem) == 0 {
		return fmt.Errorf("at least one product_item selector is required")
	}
	if len(c.Site.Selectors.Title) == 0 {
		return fmt.Errorf("at least one title selector is required")
	}

	// Resolve selectors now so compile failures surface at load time.
	if _, err := c.Site.Selectors.Compile(); err != nil {
		return err
	}

	switch c.Site.Pagination.Strategy {
	case PaginationNone:
	case PaginationButtonScan:
		if c.Site.Pagination.Param == "" {
			return fmt.Errorf("pagination param is required for strategy %q", PaginationButtonScan)
		}
		if c.Site.Pagination.ButtonSelector == "" {
			return fmt.Errorf("pagination button_selector is required for strategy %q", PaginationButtonScan)
		}
	case PaginationArithmetic:
		if c.Site.Pagination.Param == "" {
			return fmt.Errorf("pagination param is required for strategy %q", PaginationArithmetic)
		}
		if c.Site.Pagination.TotalCountSelector == "" {
			return fmt.Errorf("pagination total_count_selector is required for strategy %q", PaginationArithmetic)
		}
		if c.Site.Pagination.ItemsPerPage <= 0 {
			return fmt.Errorf("pagination items_per_page must be positive for strategy %q", PaginationArithmetic)
		}
	default:
		return fmt.Errorf("unknown pagination strategy: %q", c.Site.Pagination.Strategy)
	}

	validFormats := map[string]bool{
		"jsonl": true, "csv": true, "excel": true,
		"sqlite": true, "postgresql": true, "mysql": true, "mongodb": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("unsupported output format: %q", c.Output.Format)
	}

	return nil
}
