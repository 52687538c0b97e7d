// internal/config/selector.go
package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// SelectorKind tags a resolved selector.
type SelectorKind int

const (
	// KindCSS is a plain CSS selector evaluated against the DOM.
	KindCSS SelectorKind = iota

	// KindComputed is a registered extraction function invoked with the
	// container element instead of a CSS query. Configuration references
	// it as "computed:<name>".
	KindComputed
)

// ComputeFunc derives a field value from a container element. Used for
// fields that no single selector can express, e.g. a title concatenated
// from breadcrumb text.
type ComputeFunc func(container *goquery.Selection) string

// Selector is the resolved form of one configuration selector string. The
// extraction path branches on Kind; syntax sniffing happens exactly once,
// at configuration load.
type Selector struct {
	Kind    SelectorKind
	Raw     string
	Compute ComputeFunc
}

// SelectorSets is the compiled counterpart of SelectorSetsConfig.
type SelectorSets struct {
	ProductItem  []string
	ProductPage  []string
	Title        []Selector
	Image        []string
	Link         []string
	Price        []string
	Video        []string
	NotAvailable []string
}

const computedPrefix = "computed:"

// functionLikePattern detects configuration values that are serialized
// function expressions rather than CSS selectors. These were executable in
// older deployments; they now fail the load with a pointer to the computed
// registry so the failure surfaces at load time, not per extraction.
var functionLikePattern = regexp.MustCompile(`^\s*(function\s*\(|\([\w\s,]*\)\s*=>|[\w$]+\s*=>)`)

var (
	computedMu       sync.RWMutex
	computedRegistry = map[string]ComputeFunc{}
)

// RegisterComputed adds a named extraction function to the registry.
// Registration happens in init blocks; later registrations with the same
// name replace earlier ones.
func RegisterComputed(name string, fn ComputeFunc) {
	computedMu.Lock()
	defer computedMu.Unlock()
	computedRegistry[name] = fn
}

// LookupComputed resolves a registered extraction function.
func LookupComputed(name string) (ComputeFunc, bool) {
	computedMu.RLock()
	defer computedMu.RUnlock()
	fn, ok := computedRegistry[name]
	return fn, ok
}

// ComputedNames lists the registered function names, sorted.
func ComputedNames() []string {
	computedMu.RLock()
	defer computedMu.RUnlock()
	names := make([]string, 0, len(computedRegistry))
	for name := range computedRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveSelector turns one raw configuration string into a tagged Selector.
func ResolveSelector(raw string) (Selector, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	if strings.HasPrefix(trimmed, computedPrefix) {
		name := strings.TrimPrefix(trimmed, computedPrefix)
		fn, ok := LookupComputed(name)
		if !ok {
			return Selector{}, fmt.Errorf("unknown computed selector %q (registered: %s)",
				name, strings.Join(ComputedNames(), ", "))
		}
		return Selector{Kind: KindComputed, Raw: trimmed, Compute: fn}, nil
	}

	if functionLikePattern.MatchString(trimmed) {
		return Selector{}, fmt.Errorf("selector %q looks like a function expression; use a computed:<name> selector instead", trimmed)
	}

	return Selector{Kind: KindCSS, Raw: trimmed}, nil
}

// Compile resolves every selector list of the configuration. Computed
// selectors that don't resolve fail the whole load; a broken configuration
// must never reach the extraction path.
func (sc SelectorSetsConfig) Compile() (SelectorSets, error) {
	sets := SelectorSets{
		ProductItem:  sc.ProductItem,
		ProductPage:  sc.ProductPage,
		Image:        sc.Image,
		Link:         sc.Link,
		Price:        sc.Price,
		Video:        sc.Video,
		NotAvailable: sc.NotAvailable,
	}

	for i, raw := range sc.Title {
		sel, err := ResolveSelector(raw)
		if err != nil {
			return SelectorSets{}, fmt.Errorf("title selector %d: %w", i, err)
		}
		sets.Title = append(sets.Title, sel)
	}

	return sets, nil
}

func init() {
	// Built-in computed selectors covering the function-expression shapes
	// observed in legacy site configurations.
	RegisterComputed("breadcrumb-title", func(container *goquery.Selection) string {
		var parts []string
		container.Closest("body").Find(".breadcrumb li, nav[aria-label=breadcrumb] li, .breadcrumbs li").Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		return strings.Join(parts, " ")
	})

	RegisterComputed("image-alt-title", func(container *goquery.Selection) string {
		alt, _ := container.Find("img[alt]").First().Attr("alt")
		return strings.TrimSpace(alt)
	})

	RegisterComputed("aria-label-title", func(container *goquery.Selection) string {
		if label, ok := container.Attr("aria-label"); ok {
			return strings.TrimSpace(label)
		}
		label, _ := container.Find("[aria-label]").First().Attr("aria-label")
		return strings.TrimSpace(label)
	})
}
