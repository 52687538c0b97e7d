// internal/scraper/extractor.go
package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vitrinio/shelfscraper/internal/config"
)

// Pseudo-attributes resolving to text content instead of an HTML attribute.
const (
	attrText      = "text"
	attrInnerText = "innerText"
)

var backgroundImagePattern = regexp.MustCompile(`background(?:-image)?\s*:\s*url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// resolveAttr reads one attribute from an element, treating "text" and
// "innerText" as the element's trimmed text content.
func resolveAttr(sel *goquery.Selection, attr string) string {
	if attr == attrText || attr == attrInnerText {
		return strings.TrimSpace(sel.Text())
	}
	value, _ := sel.Attr(attr)
	return strings.TrimSpace(value)
}

// firstAttr tries attribute names in priority order and returns the first
// non-empty value along with the attribute that produced it.
func firstAttr(sel *goquery.Selection, attrs []string) (string, string) {
	for _, attr := range attrs {
		if value := resolveAttr(sel, attr); value != "" {
			return value, attr
		}
	}
	return "", ""
}

// ExtractTitle resolves the item title. The first selector whose resolved
// value is non-empty wins; attribute names are tried in order per selector.
// Computed selectors invoke their extraction function with the container
// instead of querying. Returns the title and the selector that matched;
// both empty when nothing applies.
func ExtractTitle(container *goquery.Selection, selectors []config.Selector, attrs []string) (string, string) {
	if len(attrs) == 0 {
		attrs = []string{attrText}
	}

	for _, sel := range selectors {
		if sel.Kind == config.KindComputed {
			if value := strings.TrimSpace(sel.Compute(container)); value != "" {
				return value, sel.Raw
			}
			continue
		}

		match := container.Find(sel.Raw).First()
		if match.Length() == 0 {
			continue
		}
		if value, _ := firstAttr(match, attrs); value != "" {
			return value, sel.Raw
		}
	}

	return "", ""
}

// ExtractImages gathers image URLs across every selector in the list, not
// just the first hit: product cards routinely split images over lazy-load
// attributes and carousel duplicates. Matched elements are deduplicated by
// node identity, then the attribute values and any background-image URLs
// are unioned and deduplicated by string. The first entry is the caller's
// primary image.
func ExtractImages(container *goquery.Selection, selectors []string, attrs []string, cdnBase string) []string {
	if len(attrs) == 0 {
		attrs = []string{"src"}
	}

	var urls []string
	seenURL := make(map[string]bool)
	seenNode := make(map[*html.Node]bool)

	add := func(raw string) {
		u := normalizeMediaURL(raw, cdnBase)
		if u == "" || seenURL[u] {
			return
		}
		seenURL[u] = true
		urls = append(urls, u)
	}

	for _, selector := range selectors {
		container.Find(selector).Each(func(_ int, match *goquery.Selection) {
			node := match.Get(0)
			if seenNode[node] {
				return
			}
			seenNode[node] = true

			// Explicit src wins over configured attributes.
			if src := resolveAttr(match, "src"); src != "" {
				add(src)
			} else if value, _ := firstAttr(match, attrs); value != "" {
				add(firstSrcsetURL(value))
			}

			if style, ok := match.Attr("style"); ok {
				if m := backgroundImagePattern.FindStringSubmatch(style); m != nil {
					add(m[1])
				}
			}
		})
	}

	return urls
}

// ExtractLink resolves the first link-selector match's href. Unlike images,
// a single best hit is wanted here; canonical-link priority across sources
// is the assembler's job.
func ExtractLink(container *goquery.Selection, selectors []string) (string, string) {
	for _, selector := range selectors {
		match := container.Find(selector).First()
		if match.Length() == 0 {
			continue
		}
		if href, ok := match.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href), selector
		}
	}
	return "", ""
}

// ExtractVideos gathers video URLs with the same all-selectors union
// strategy as images.
func ExtractVideos(container *goquery.Selection, selectors []string, attrs []string) []string {
	if len(attrs) == 0 {
		attrs = []string{"src"}
	}

	var urls []string
	seenURL := make(map[string]bool)
	seenNode := make(map[*html.Node]bool)

	for _, selector := range selectors {
		container.Find(selector).Each(func(_ int, match *goquery.Selection) {
			node := match.Get(0)
			if seenNode[node] {
				return
			}
			seenNode[node] = true

			value, _ := firstAttr(match, attrs)
			if value == "" {
				return
			}
			if !seenURL[value] {
				seenURL[value] = true
				urls = append(urls, value)
			}
		})
	}

	return urls
}

// ExtractPrices keeps every price hit across all selectors. Multiple
// entries per item are intentional: original and discounted prices usually
// live in sibling elements. Each entry records the selector and attribute
// that produced it.
func ExtractPrices(container *goquery.Selection, selectors []string, attrs []string) []PriceEntry {
	if len(attrs) == 0 {
		attrs = []string{attrText}
	}

	var entries []PriceEntry
	seenNode := make(map[*html.Node]bool)

	for _, selector := range selectors {
		container.Find(selector).Each(func(_ int, match *goquery.Selection) {
			node := match.Get(0)
			if seenNode[node] {
				return
			}
			seenNode[node] = true

			value, attr := firstAttr(match, attrs)
			if value == "" {
				return
			}
			entries = append(entries, PriceEntry{
				Value:     value,
				Selector:  selector,
				Attribute: attr,
			})
		})
	}

	return entries
}

// ExtractAvailability reports whether any "not available" selector matches
// within the container.
func ExtractAvailability(container *goquery.Selection, notAvailable []string) bool {
	for _, selector := range notAvailable {
		if container.Find(selector).Length() > 0 {
			return true
		}
	}
	return false
}

// normalizeMediaURL prefixes root-relative URLs with the configured CDN
// base. Protocol-relative URLs pass through; the validation layer upgrades
// them to https.
func normalizeMediaURL(raw, cdnBase string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "//") || strings.Contains(u, "://") {
		return u
	}
	if cdnBase != "" && strings.HasPrefix(u, "/") {
		return strings.TrimSuffix(cdnBase, "/") + u
	}
	return u
}

// firstSrcsetURL reduces a srcset value to its first candidate URL.
func firstSrcsetURL(value string) string {
	if !strings.Contains(value, ",") && !strings.Contains(value, " ") {
		return value
	}
	first := strings.TrimSpace(strings.Split(value, ",")[0])
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	return first
}
