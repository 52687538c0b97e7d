// internal/scraper/assembler_test.go
package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/vitrinio/shelfscraper/internal/config"
)

const listingHTML = `
<html>
<head><title>Canta - Example Store</title></head>
<body>
	<ul class="products">
		<li class="product-card">
			<a class="title" href="/products/tote-bag">Tote Bag</a>
			<img class="photo" src="/cdn/shop/products/tote.jpg">
			<span class="price">299,90 TL</span>
		</li>
		<li class="product-card">
			<a class="card-link" href="/products/backpack?variant=1">
				<span class="title">Backpack</span>
			</a>
			<img class="photo" data-src="/cdn/shop/products/backpack.jpg">
			<span class="price">1.449,90 TL</span>
		</li>
		<li class="product-card">
			<span class="title">Belt Bag</span>
			<span class="sold-out">Tükendi</span>
		</li>
	</ul>
</body>
</html>`

func testSiteConfig() *config.SiteConfig {
	return &config.SiteConfig{
		Name:     "example",
		StartURL: "https://shop.example.com/collections/canta",
		Selectors: config.SelectorSetsConfig{
			ProductItem:  []string{"li.product-card"},
			Title:        []string{".title"},
			Image:        []string{"img.photo"},
			Link:         []string{"a.card-link"},
			Price:        []string{".price"},
			NotAvailable: []string{".sold-out"},
		},
		Attributes: config.AttributesConfig{
			Title: []string{"text"},
			Image: []string{"src", "data-src"},
			Price: []string{"text"},
		},
	}
}

func testAssembler(t *testing.T, site *config.SiteConfig) *Assembler {
	t.Helper()
	sets, err := site.Selectors.Compile()
	if err != nil {
		t.Fatalf("failed to compile selectors: %v", err)
	}
	return NewAssembler(site, sets)
}

func TestAssembleRecords(t *testing.T) {
	site := testSiteConfig()
	a := testAssembler(t, site)
	doc := docFromHTML(t, listingHTML)

	outcome := a.AssembleRecords(doc, "https://shop.example.com/collections/canta")
	if !outcome.ProductPage {
		t.Fatal("expected a product page")
	}
	if outcome.ItemSelector != "li.product-card" {
		t.Errorf("expected item selector %q, got %q", "li.product-card", outcome.ItemSelector)
	}
	if len(outcome.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(outcome.Items))
	}
	if outcome.ErrorCount != 0 {
		t.Fatalf("expected no item errors, got %d", outcome.ErrorCount)
	}

	first := outcome.Items[0].Record
	if first.Title != "Tote Bag" {
		t.Errorf("expected title %q, got %q", "Tote Bag", first.Title)
	}
	// Title element carries its own href; it outranks the link selector.
	if first.Link != "https://shop.example.com/products/tote-bag" {
		t.Errorf("unexpected canonical link %q", first.Link)
	}
	if first.PrimaryImage != "/cdn/shop/products/tote.jpg" {
		t.Errorf("unexpected primary image %q", first.PrimaryImage)
	}
	if first.PageTitle != "Canta - Example Store" {
		t.Errorf("unexpected page title %q", first.PageTitle)
	}
	if first.Timestamp == "" {
		t.Error("expected a timestamp")
	}

	second := outcome.Items[1].Record
	if second.Title != "Backpack" {
		t.Errorf("expected title %q, got %q", "Backpack", second.Title)
	}
	// Title is a span here, so the link selector provides the URL.
	if second.Link != "https://shop.example.com/products/backpack?variant=1" {
		t.Errorf("unexpected canonical link %q", second.Link)
	}
	if len(second.Prices) != 1 || second.Prices[0].Value != "1.449,90 TL" {
		t.Errorf("unexpected prices %+v", second.Prices)
	}

	third := outcome.Items[2].Record
	if !third.ProductNotInStock {
		t.Error("expected third item to be flagged not in stock")
	}
	if third.Link != "" {
		t.Errorf("expected no link for third item, got %q", third.Link)
	}
}

func TestAssembleRecordsNotAProductPage(t *testing.T) {
	a := testAssembler(t, testSiteConfig())
	doc := docFromHTML(t, `<html><body><p>About us</p></body></html>`)

	outcome := a.AssembleRecords(doc, "https://shop.example.com/about")
	if outcome.ProductPage {
		t.Error("expected ProductPage false")
	}
	if len(outcome.Items) != 0 {
		t.Errorf("expected no items, got %d", len(outcome.Items))
	}
}

func TestAssembleItemPanicIsolation(t *testing.T) {
	config.RegisterComputed("panic-on-second", func(container *goquery.Selection) string {
		if container.HasClass("bad") {
			panic("selector blew up")
		}
		text, _ := container.Find("span").First().Attr("data-name")
		return text
	})

	site := testSiteConfig()
	site.Selectors.Title = []string{"computed:panic-on-second"}
	a := testAssembler(t, site)

	doc := docFromHTML(t, `
		<ul>
			<li class="product-card"><span data-name="One"></span></li>
			<li class="product-card bad"><span data-name="Two"></span></li>
			<li class="product-card"><span data-name="Three"></span></li>
		</ul>`)

	outcome := a.AssembleRecords(doc, "https://shop.example.com/collections/canta")
	if len(outcome.Items) != 3 {
		t.Fatalf("expected all 3 items despite the panic, got %d", len(outcome.Items))
	}
	if outcome.ErrorCount != 1 {
		t.Fatalf("expected 1 error item, got %d", outcome.ErrorCount)
	}

	if outcome.Items[0].IsError() || outcome.Items[2].IsError() {
		t.Error("expected sibling items to survive the panic")
	}

	failure := outcome.Items[1].Failure
	if failure == nil {
		t.Fatal("expected the second item to carry an ErrorRecord")
	}
	if !failure.Error {
		t.Error("expected the error flag to be set")
	}
	if !strings.Contains(failure.Message, "selector blew up") {
		t.Errorf("expected the panic message in %q", failure.Message)
	}
	if !strings.Contains(failure.Content, "product-card bad") {
		t.Errorf("expected the element HTML in the error content, got %q", failure.Content)
	}
}

func TestCanonicalLinkContainerAnchorFallback(t *testing.T) {
	site := testSiteConfig()
	site.Selectors.ProductItem = []string{"a.product-card"}
	site.Selectors.Link = nil
	a := testAssembler(t, site)

	doc := docFromHTML(t, `
		<a class="product-card" href="/products/wallet">
			<span class="title">Wallet</span>
		</a>`)

	outcome := a.AssembleRecords(doc, "https://shop.example.com/collections/canta")
	if len(outcome.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(outcome.Items))
	}
	record := outcome.Items[0].Record
	if record.Link != "https://shop.example.com/products/wallet" {
		t.Errorf("expected the container anchor href, got %q", record.Link)
	}
}
