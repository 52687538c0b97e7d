// internal/scraper/pagination.go
package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vitrinio/shelfscraper/internal/config"
)

// defaultExcludePatterns filter planned URLs for every site, on top of the
// per-site exclude list.
var defaultExcludePatterns = []string{
	"javascript:", "mailto:", "tel:", "#",
	"/login", "/uye", "/giris", "/sepet", "/cart",
}

var pureDigitsPattern = regexp.MustCompile(`^\d+$`)
var digitsPattern = regexp.MustCompile(`\d+`)
var separatorStripper = strings.NewReplacer(".", "", ",", "")

// PaginationStrategy computes the full set of next-page URLs for one page
// visit. Strategies are declarative configuration objects; no pagination
// expression from configuration is ever executed.
type PaginationStrategy interface {
	// PlanPages returns the synthesized page URLs, unfiltered.
	PlanPages(doc *goquery.Document, currentURL string) ([]string, error)

	// Name returns the strategy name.
	Name() string
}

// ButtonScanStrategy reads visible pagination controls, takes the maximum
// pure-digit page number, and synthesizes URLs base+param+i for i in
// [1, max].
type ButtonScanStrategy struct {
	ButtonSelector string
	Param          string
	MaxPages       int
}

// PlanPages implements PaginationStrategy.
func (s *ButtonScanStrategy) PlanPages(doc *goquery.Document, currentURL string) ([]string, error) {
	if s.ButtonSelector == "" {
		return nil, fmt.Errorf("button selector is required for button_scan strategy")
	}

	maxPage := 0
	doc.Find(s.ButtonSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if !pureDigitsPattern.MatchString(text) {
			return
		}
		if n, err := strconv.Atoi(text); err == nil && n > maxPage {
			maxPage = n
		}
	})

	if maxPage < 2 {
		return nil, nil
	}
	if s.MaxPages > 0 && maxPage > s.MaxPages {
		maxPage = s.MaxPages
	}

	return synthesizePages(currentURL, s.Param, maxPage), nil
}

// Name implements PaginationStrategy.
func (s *ButtonScanStrategy) Name() string { return config.PaginationButtonScan }

// ArithmeticStrategy reads a total-item counter, divides by the configured
// items-per-page, and synthesizes one URL per page. A total not exceeding
// one page's worth yields no URLs: a single page needs no extra requests.
type ArithmeticStrategy struct {
	TotalCountSelector string
	Param              string
	ItemsPerPage       int
	MaxPages           int
}

// PlanPages implements PaginationStrategy.
func (s *ArithmeticStrategy) PlanPages(doc *goquery.Document, currentURL string) ([]string, error) {
	if s.ItemsPerPage <= 0 {
		return nil, fmt.Errorf("items_per_page must be positive for arithmetic strategy")
	}

	counter := doc.Find(s.TotalCountSelector).First()
	if counter.Length() == 0 {
		return nil, nil
	}

	text := separatorStripper.Replace(strings.TrimSpace(counter.Text()))
	match := digitsPattern.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("counter text %q carries no number", strings.TrimSpace(counter.Text()))
	}

	total, err := strconv.Atoi(match)
	if err != nil {
		return nil, fmt.Errorf("counter value %q: %w", match, err)
	}
	if total <= s.ItemsPerPage {
		return nil, nil
	}

	totalPages := (total + s.ItemsPerPage - 1) / s.ItemsPerPage
	if s.MaxPages > 0 && totalPages > s.MaxPages {
		totalPages = s.MaxPages
	}

	return synthesizePages(currentURL, s.Param, totalPages), nil
}

// Name implements PaginationStrategy.
func (s *ArithmeticStrategy) Name() string { return config.PaginationArithmetic }

// NewPaginationStrategy creates a strategy from configuration. The none
// strategy yields a nil strategy: no pagination for this site.
func NewPaginationStrategy(cfg config.PaginationConfig) (PaginationStrategy, error) {
	switch cfg.Strategy {
	case "", config.PaginationNone:
		return nil, nil
	case config.PaginationButtonScan:
		return &ButtonScanStrategy{
			ButtonSelector: cfg.ButtonSelector,
			Param:          cfg.Param,
			MaxPages:       cfg.MaxPages,
		}, nil
	case config.PaginationArithmetic:
		return &ArithmeticStrategy{
			TotalCountSelector: cfg.TotalCountSelector,
			Param:              cfg.Param,
			ItemsPerPage:       cfg.ItemsPerPage,
			MaxPages:           cfg.MaxPages,
		}, nil
	default:
		return nil, fmt.Errorf("unknown pagination strategy: %s", cfg.Strategy)
	}
}

// Planner gates and filters the output of a pagination strategy. Plans are
// computed fresh per page visit and never cached across pages.
type Planner struct {
	strategy PaginationStrategy
	cfg      config.PaginationConfig
	excludes []string
}

// NewPlanner creates a planner for one site.
func NewPlanner(site *config.SiteConfig) (*Planner, error) {
	strategy, err := NewPaginationStrategy(site.Pagination)
	if err != nil {
		return nil, err
	}
	return &Planner{
		strategy: strategy,
		cfg:      site.Pagination,
		excludes: site.ExcludePatterns,
	}, nil
}

// PlanNextPages computes the deduplicated, filtered set of next-page URLs
// for the current page. A URL already carrying a pagination postfix plans
// nothing: re-deriving pagination from a paginated URL would blow up the
// frontier exponentially. Strategy failures (malformed counter text and the
// like) degrade to "no further pages"; the error is returned for logging
// but planning never aborts a crawl.
func (p *Planner) PlanNextPages(doc *goquery.Document, currentURL string) ([]string, error) {
	if p.strategy == nil {
		return nil, nil
	}

	for _, postfix := range p.postfixes() {
		if postfix != "" && strings.Contains(currentURL, postfix) {
			return nil, nil
		}
	}

	pages, err := p.strategy.PlanPages(doc, currentURL)
	if err != nil {
		return nil, err
	}

	var planned []string
	seen := make(map[string]bool)
	for _, page := range pages {
		page = strings.ReplaceAll(page, "??", "?")
		if seen[page] || p.excluded(page) {
			continue
		}
		seen[page] = true
		planned = append(planned, page)
	}
	return planned, nil
}

// postfixes returns the configured already-paginated markers, defaulting to
// the pagination parameter itself.
func (p *Planner) postfixes() []string {
	if len(p.cfg.Postfixes) > 0 {
		return p.cfg.Postfixes
	}
	return []string{p.cfg.Param}
}

// excluded checks a URL against the per-site and shared exclude patterns.
// Wildcard asterisks are stripped before substring matching.
func (p *Planner) excluded(pageURL string) bool {
	for _, pattern := range p.excludes {
		pattern = strings.ReplaceAll(pattern, "*", "")
		if pattern != "" && strings.Contains(pageURL, pattern) {
			return true
		}
	}
	for _, pattern := range defaultExcludePatterns {
		if strings.Contains(pageURL, pattern) {
			return true
		}
	}
	return false
}

func synthesizePages(base, param string, maxPage int) []string {
	urls := make([]string, 0, maxPage)
	for i := 1; i <= maxPage; i++ {
		urls = append(urls, base+param+strconv.Itoa(i))
	}
	return urls
}
