// internal/scraper/assembler.go
package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vitrinio/shelfscraper/internal/config"
)

// errorContentLimit caps the outer-HTML snippet kept on an ErrorRecord.
const errorContentLimit = 2000

// Assembler turns the product-item elements of one page into raw records.
type Assembler struct {
	site *config.SiteConfig
	sets config.SelectorSets
	now  func() time.Time
}

// NewAssembler creates an assembler for one site's compiled configuration.
func NewAssembler(site *config.SiteConfig, sets config.SelectorSets) *Assembler {
	return &Assembler{site: site, sets: sets, now: time.Now}
}

// AssembleRecords extracts one record per product-item element on the page.
//
// The best product-item selector is resolved once per page against the
// whole document. A nil pick means "not a product page": the outcome
// carries zero items and ProductPage false, which is a valid negative, not
// an error. Per-item failures are converted to ErrorRecords so one broken
// card never drops the rest of the page.
func (a *Assembler) AssembleRecords(doc *goquery.Document, pageURL string) *PageOutcome {
	outcome := &PageOutcome{PageURL: pageURL}

	pageTitle := strings.TrimSpace(doc.Find("title").First().Text())

	best := PickBest(doc.Selection, a.sets.ProductItem)
	if best == nil {
		return outcome
	}
	outcome.ProductPage = true
	outcome.ItemSelector = best.Selector

	doc.Selection.Find(best.Selector).Each(func(_ int, container *goquery.Selection) {
		outcome.CandidateHits++

		result := a.assembleItem(container, best.Selector, pageTitle, pageURL)
		if result.IsError() {
			outcome.ErrorCount++
		}
		outcome.Items = append(outcome.Items, result)
	})

	return outcome
}

// assembleItem extracts a single record. Panics from extraction code are
// recovered into an ErrorRecord carrying the element's outer HTML.
func (a *Assembler) assembleItem(container *goquery.Selection, itemSelector, pageTitle, pageURL string) (result ItemResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ItemResult{Failure: &ErrorRecord{
				Error:     true,
				Message:   fmt.Sprintf("item extraction panic: %v", r),
				Content:   outerHTMLSnippet(container),
				URL:       pageURL,
				PageTitle: pageTitle,
			}}
		}
	}()

	attrs := a.site.Attributes

	title, titleSelector := ExtractTitle(container, a.sets.Title, attrs.Title)
	images := ExtractImages(container, a.sets.Image, attrs.Image, a.site.ImageCDNBase)
	link, linkSelector := ExtractLink(container, a.sets.Link)
	videos := ExtractVideos(container, a.sets.Video, attrs.Video)
	prices := ExtractPrices(container, a.sets.Price, attrs.Price)
	notInStock := ExtractAvailability(container, a.sets.NotAvailable)

	record := &RawProductRecord{
		Title:             title,
		Images:            images,
		Link:              a.canonicalLink(container, titleSelector, link, pageURL),
		Prices:            prices,
		Videos:            videos,
		ProductNotInStock: notInStock,
		MatchedSelectors:  map[string]string{"productItem": itemSelector},
		PageTitle:         pageTitle,
		PageURL:           pageURL,
		Timestamp:         Timestamp(a.now()),
	}
	if len(images) > 0 {
		record.PrimaryImage = images[0]
	}
	if titleSelector != "" {
		record.MatchedSelectors["title"] = titleSelector
	}
	if linkSelector != "" {
		record.MatchedSelectors["link"] = linkSelector
	}

	return ItemResult{Record: record}
}

// canonicalLink resolves the single URL representing the product. Priority:
// the title element's own href, then the link-selector match, then the
// container itself when it is an anchor. Title-href wins because sites wrap
// whole cards in decorative anchors that can point at a different variant
// than the link duplicated inside the title.
func (a *Assembler) canonicalLink(container *goquery.Selection, titleSelector, extractedLink, pageURL string) string {
	if titleSelector != "" && !strings.HasPrefix(titleSelector, "computed:") {
		titleEl := container.Find(titleSelector).First()
		if href, ok := titleEl.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return absoluteURL(pageURL, href)
		}
	}

	if extractedLink != "" {
		return absoluteURL(pageURL, extractedLink)
	}

	if container.Is("a") {
		if href, ok := container.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return absoluteURL(pageURL, href)
		}
	}

	return ""
}

// absoluteURL resolves href against the page URL. Unresolvable inputs pass
// through untouched; the validation layer flags them.
func absoluteURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func outerHTMLSnippet(sel *goquery.Selection) string {
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	if len(html) > errorContentLimit {
		return html[:errorContentLimit]
	}
	return html
}
