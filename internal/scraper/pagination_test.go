// internal/scraper/pagination_test.go
package scraper

import (
	"testing"

	"github.com/vitrinio/shelfscraper/internal/config"
)

const paginationHTML = `
<html><body>
	<div class="pager">
		<a class="page">1</a>
		<a class="page">2</a>
		<a class="page">3</a>
		<a class="page">Sonraki</a>
	</div>
	<span class="count">128 ürün</span>
</body></html>`

func buttonScanSite() *config.SiteConfig {
	return &config.SiteConfig{
		Name:     "example",
		StartURL: "https://shop.example.com/collections/canta",
		Pagination: config.PaginationConfig{
			Strategy:       config.PaginationButtonScan,
			Param:          "?page=",
			ButtonSelector: ".pager .page",
		},
	}
}

func TestButtonScanPlansAllPages(t *testing.T) {
	planner, err := NewPlanner(buttonScanSite())
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, paginationHTML)

	base := "https://shop.example.com/collections/canta"
	pages, err := planner.PlanNextPages(doc, base)
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}

	want := []string{base + "?page=1", base + "?page=2", base + "?page=3"}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %d: %v", len(want), len(pages), pages)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page %d: expected %q, got %q", i, want[i], pages[i])
		}
	}
}

func TestButtonScanIgnoresNonNumericControls(t *testing.T) {
	planner, err := NewPlanner(buttonScanSite())
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, `<div class="pager"><a class="page">Önceki</a><a class="page">Sonraki</a></div>`)

	pages, err := planner.PlanNextPages(doc, "https://shop.example.com/collections/canta")
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages without numeric controls, got %v", pages)
	}
}

func TestPostfixGatePreventsReplanning(t *testing.T) {
	planner, err := NewPlanner(buttonScanSite())
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, paginationHTML)

	// A URL already carrying the pagination parameter plans nothing.
	pages, err := planner.PlanNextPages(doc, "https://shop.example.com/collections/canta?page=2")
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages from an already-paginated URL, got %v", pages)
	}
}

func TestDoubleQuestionMarkCollapse(t *testing.T) {
	site := buttonScanSite()
	site.Pagination.Param = "??page="
	site.Pagination.Postfixes = []string{"page="}
	planner, err := NewPlanner(site)
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, paginationHTML)

	pages, err := planner.PlanNextPages(doc, "https://shop.example.com/collections/canta")
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if len(pages) == 0 {
		t.Fatal("expected planned pages")
	}
	if pages[0] != "https://shop.example.com/collections/canta?page=1" {
		t.Errorf("expected collapsed query separator, got %q", pages[0])
	}
}

func TestExcludePatternsFilterPlannedPages(t *testing.T) {
	site := buttonScanSite()
	site.ExcludePatterns = []string{"*page=3*"}
	planner, err := NewPlanner(site)
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, paginationHTML)

	pages, err := planner.PlanNextPages(doc, "https://shop.example.com/collections/canta")
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	for _, page := range pages {
		if page == "https://shop.example.com/collections/canta?page=3" {
			t.Errorf("expected page 3 to be excluded, got %v", pages)
		}
	}
	if len(pages) != 2 {
		t.Errorf("expected 2 pages after exclusion, got %d", len(pages))
	}
}

func TestArithmeticStrategy(t *testing.T) {
	site := &config.SiteConfig{
		Name:     "example",
		StartURL: "https://shop.example.com/collections/canta",
		Pagination: config.PaginationConfig{
			Strategy:           config.PaginationArithmetic,
			Param:              "?page=",
			TotalCountSelector: ".count",
			ItemsPerPage:       24,
		},
	}
	planner, err := NewPlanner(site)
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, paginationHTML)

	// 128 items at 24 per page rounds up to 6 pages.
	pages, err := planner.PlanNextPages(doc, "https://shop.example.com/collections/canta")
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if len(pages) != 6 {
		t.Errorf("expected 6 pages, got %d: %v", len(pages), pages)
	}
}

func TestArithmeticSinglePagePlansNothing(t *testing.T) {
	site := &config.SiteConfig{
		Name:     "example",
		StartURL: "https://shop.example.com/collections/canta",
		Pagination: config.PaginationConfig{
			Strategy:           config.PaginationArithmetic,
			Param:              "?page=",
			TotalCountSelector: ".count",
			ItemsPerPage:       200,
		},
	}
	planner, err := NewPlanner(site)
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, paginationHTML)

	pages, err := planner.PlanNextPages(doc, "https://shop.example.com/collections/canta")
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages when everything fits one page, got %v", pages)
	}
}

func TestNoneStrategyPlansNothing(t *testing.T) {
	site := &config.SiteConfig{Name: "example", StartURL: "https://shop.example.com"}
	planner, err := NewPlanner(site)
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, paginationHTML)

	pages, err := planner.PlanNextPages(doc, "https://shop.example.com")
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if pages != nil {
		t.Errorf("expected nil plan for the none strategy, got %v", pages)
	}
}

func TestMaxPagesCap(t *testing.T) {
	site := buttonScanSite()
	site.Pagination.MaxPages = 2
	planner, err := NewPlanner(site)
	if err != nil {
		t.Fatalf("failed to build planner: %v", err)
	}
	doc := docFromHTML(t, paginationHTML)

	pages, err := planner.PlanNextPages(doc, "https://shop.example.com/collections/canta")
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("expected the cap to hold at 2 pages, got %d", len(pages))
	}
}
