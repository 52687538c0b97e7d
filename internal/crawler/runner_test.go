// internal/crawler/runner_test.go
package crawler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vitrinio/shelfscraper/internal/browser"
	"github.com/vitrinio/shelfscraper/internal/config"
	"github.com/vitrinio/shelfscraper/internal/monitoring"
	"github.com/vitrinio/shelfscraper/internal/scraper"
)

// fakePage serves canned HTML per URL without a browser.
type fakePage struct {
	pages      map[string]string
	gateless   map[string]bool
	current    string
	visited    []string
	waited     []string
	screenshot bool
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.current = url
	p.visited = append(p.visited, url)
	return nil
}

func (p *fakePage) CurrentURL(ctx context.Context) (string, error) { return p.current, nil }

func (p *fakePage) HTML(ctx context.Context) (string, error) { return p.pages[p.current], nil }

func (p *fakePage) EvaluateInPage(ctx context.Context, script string, result interface{}) error {
	return nil
}

func (p *fakePage) QuerySelectorAllCount(ctx context.Context, selector string) (int, error) {
	return 0, nil
}

func (p *fakePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p.waited = append(p.waited, selector)
	if p.gateless[p.current] {
		return browser.ErrWaitTimeout
	}
	return nil
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	p.screenshot = true
	return []byte("png"), nil
}

func (p *fakePage) ScrollToBottom(ctx context.Context) error { return nil }

func (p *fakePage) Click(ctx context.Context, selector string) error { return nil }

func (p *fakePage) Close() error { return nil }

// memorySink collects appended records in memory.
type memorySink struct {
	mu      sync.Mutex
	records []scraper.ValidatedProductRecord
	errors  []scraper.ErrorRecord
}

func (s *memorySink) AppendRecord(ctx context.Context, record scraper.ValidatedProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *memorySink) AppendError(ctx context.Context, failure scraper.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, failure)
	return nil
}

func (s *memorySink) Flush() error { return nil }
func (s *memorySink) Close() error { return nil }

// memoryArtifacts records saved artifact names.
type memoryArtifacts struct {
	saved []string
}

func (a *memoryArtifacts) Save(name string, data []byte) (string, error) {
	a.saved = append(a.saved, name)
	return "memory://" + name, nil
}

const listingPage = `
<html>
<head><title>Canta - Example Store</title></head>
<body>
	<ul>
		<li class="product-card">
			<a class="title" href="/products/tote">Tote Bag</a>
			<img class="photo" src="https://cdn.example.com/img/tote.jpg">
			<span class="price">299,90 TL</span>
		</li>
		<li class="product-card">
			<a class="title" href="/products/backpack">Backpack</a>
			<img class="photo" src="https://cdn.example.com/img/backpack.jpg">
			<span class="price">1.449,90 TL</span>
		</li>
	</ul>
	<div class="pager">
		<a class="page">1</a>
		<a class="page">2</a>
	</div>
</body>
</html>`

func testConfig() *config.Config {
	return &config.Config{
		Name: "example-crawl",
		Site: config.SiteConfig{
			Name:     "example",
			StartURL: "https://shop.example.com/collections/canta",
			Selectors: config.SelectorSetsConfig{
				ProductItem: []string{"li.product-card"},
				Title:       []string{".title"},
				Image:       []string{"img.photo"},
				Price:       []string{".price"},
			},
			Attributes: config.AttributesConfig{
				Title: []string{"text"},
				Image: []string{"src"},
				Price: []string{"text"},
			},
			Pagination: config.PaginationConfig{
				Strategy:       config.PaginationButtonScan,
				Param:          "?page=",
				ButtonSelector: ".pager .page",
			},
		},
	}
}

func newTestRunner(t *testing.T, cfg *config.Config, page browser.Page, sink *memorySink, artifacts *memoryArtifacts) *Runner {
	t.Helper()
	metrics := monitoring.NewMetricsOn("test", prometheus.NewRegistry())
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	runner, err := NewRunner(cfg, page, sink, artifacts, metrics, logrus.NewEntry(log))
	if err != nil {
		t.Fatalf("failed to build runner: %v", err)
	}
	runner.limiter = rate.NewLimiter(rate.Inf, 1)
	return runner
}

func TestRunnerCrawlsPlannedPages(t *testing.T) {
	base := "https://shop.example.com/collections/canta"
	page := &fakePage{
		pages: map[string]string{
			base:             listingPage,
			base + "?page=1": listingPage,
			base + "?page=2": listingPage,
		},
	}
	sink := &memorySink{}
	artifacts := &memoryArtifacts{}

	runner := newTestRunner(t, testConfig(), page, sink, artifacts)
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Start page plus both planned pages; paginated URLs plan nothing more.
	if len(page.visited) != 3 {
		t.Fatalf("expected 3 page visits, got %d: %v", len(page.visited), page.visited)
	}
	if len(sink.records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(sink.records))
	}

	if summary.SiteName != "example" {
		t.Errorf("expected site name in summary, got %q", summary.SiteName)
	}
	if summary.CollectedItems != 6 {
		t.Errorf("expected 6 collected items, got %d", summary.CollectedItems)
	}
	// Two products repeated on three page URLs.
	if summary.UniqueLinks != 2 {
		t.Errorf("expected 2 unique links, got %d", summary.UniqueLinks)
	}
	if summary.DuplicateLinks != 2 {
		t.Errorf("expected both links duplicated, got %d", summary.DuplicateLinks)
	}
	if summary.StartedAt.IsZero() || summary.FinishedAt.Before(summary.StartedAt) {
		t.Errorf("expected a coherent time window, got %v .. %v", summary.StartedAt, summary.FinishedAt)
	}

	first := sink.records[0]
	if first.Title != "Tote Bag" {
		t.Errorf("unexpected first record title %q", first.Title)
	}
	if !first.TitleValid || !first.LinkValid || !first.ImgValid || !first.PriceValid {
		t.Errorf("expected a fully valid record, got %+v", first)
	}
	if len(first.Prices) != 1 || first.Prices[0].NumericValue != 299.9 {
		t.Errorf("expected normalized price, got %+v", first.Prices)
	}
}

func TestRunnerGateTimeoutIsNegativeResult(t *testing.T) {
	base := "https://shop.example.com/collections/canta"
	page := &fakePage{
		pages:    map[string]string{base: "<html><body><p>interstitial</p></body></html>"},
		gateless: map[string]bool{base: true},
	}
	sink := &memorySink{}
	artifacts := &memoryArtifacts{}

	runner := newTestRunner(t, testConfig(), page, sink, artifacts)
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("expected the run to survive a gate timeout, got %v", err)
	}

	if summary.CollectedItems != 0 {
		t.Errorf("expected no items, got %d", summary.CollectedItems)
	}
	if !page.screenshot {
		t.Error("expected a diagnostic screenshot")
	}
	if len(artifacts.saved) != 1 {
		t.Errorf("expected 1 saved artifact, got %d", len(artifacts.saved))
	}
}

func TestRunnerGateSkipsInvalidSelectors(t *testing.T) {
	base := "https://shop.example.com/collections/canta"
	page := &fakePage{
		pages: map[string]string{
			base:             listingPage,
			base + "?page=1": listingPage,
			base + "?page=2": listingPage,
		},
	}
	sink := &memorySink{}

	cfg := testConfig()
	cfg.Site.Selectors.ProductItem = []string{"li.product[card", "li.product-card"}

	runner := newTestRunner(t, cfg, page, sink, &memoryArtifacts{})
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if summary.CollectedItems != 6 {
		t.Errorf("expected 6 collected items, got %d", summary.CollectedItems)
	}
	if len(page.waited) == 0 {
		t.Fatal("expected the gate to wait on the remaining selector")
	}
	for _, sel := range page.waited {
		if sel != "li.product-card" {
			t.Errorf("expected only the compilable selector in the wait, got %q", sel)
		}
	}
}

func TestRunnerNonProductPage(t *testing.T) {
	base := "https://shop.example.com/collections/canta"
	page := &fakePage{
		pages: map[string]string{base: "<html><body><p>no cards</p></body></html>"},
	}
	sink := &memorySink{}

	runner := newTestRunner(t, testConfig(), page, sink, &memoryArtifacts{})
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.CollectedItems != 0 || len(sink.errors) != 0 {
		t.Errorf("expected an empty, error-free run, got %+v", summary)
	}
}
