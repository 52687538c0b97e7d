// internal/scraper/scorer.go
package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Specificity weights. A selector's specificity is estimated by counting
// syntactic patterns, not by evaluating it against the DOM.
const (
	weightID          = 100
	weightClass       = 10
	weightAttribute   = 10
	weightPseudoClass = 10
	weightElement     = 1
	weightDescendant  = 5
	weightChild       = 3
	weightNot         = 8
	weightHas         = 12
	lengthDivisor     = 10
)

// Pre-compiled patterns for specificity counting.
var (
	idPattern          = regexp.MustCompile(`#[\w-]+`)
	classPattern       = regexp.MustCompile(`\.[\w-]+`)
	attributePattern   = regexp.MustCompile(`\[[^\]]+\]`)
	pseudoClassPattern = regexp.MustCompile(`(^|[^:]):[a-zA-Z-]+`)
	elementPattern     = regexp.MustCompile(`(^|[\s>+~,(])([a-zA-Z][\w-]*)`)
	notPattern         = regexp.MustCompile(`:not\(`)
	hasPattern         = regexp.MustCompile(`:has\(`)
	combinatorSpacing  = regexp.MustCompile(`\s*([>+~,])\s*`)
	descendantPattern  = regexp.MustCompile(`\s+`)
)

// Specificity computes the weighted pattern score for a selector string.
// Exported so that callers can order selector lists offline.
func Specificity(selector string) int {
	s := strings.TrimSpace(selector)
	if s == "" {
		return 0
	}

	score := 0
	score += weightID * len(idPattern.FindAllString(s, -1))
	score += weightClass * len(classPattern.FindAllString(s, -1))
	score += weightAttribute * len(attributePattern.FindAllString(s, -1))
	score += weightPseudoClass * len(pseudoClassPattern.FindAllString(s, -1))
	score += weightElement * len(elementPattern.FindAllString(s, -1))
	score += weightNot * len(notPattern.FindAllString(s, -1))
	score += weightHas * len(hasPattern.FindAllString(s, -1))

	// Collapse combinator spacing first so "a > b" counts one child
	// combinator and zero descendant combinators.
	normalized := combinatorSpacing.ReplaceAllString(s, "$1")
	score += weightChild * strings.Count(normalized, ">")
	score += weightDescendant * len(descendantPattern.FindAllString(normalized, -1))

	score += len(s) / lengthDivisor

	return score
}

// MatchCount counts matches for a selector within scope. Selectors that do
// not compile count zero matches; invalid syntax is a scoring outcome, not
// an error.
func MatchCount(scope *goquery.Selection, selector string) int {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return 0
	}
	return scope.FindMatcher(matcher).Length()
}

// ValidSelectors filters a candidate list down to the selectors that
// compile. Invalid syntax is dropped, not reported, matching MatchCount's
// treatment of it as a zero-match outcome.
func ValidSelectors(selectors []string) []string {
	valid := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		if _, err := cascadia.Compile(sel); err != nil {
			continue
		}
		valid = append(valid, sel)
	}
	return valid
}

// ScoreSelectors scores every candidate selector against the scope. The
// combined score is specificity*1000+matches for matching selectors and 0
// for non-matching ones, so any selector with a hit outranks all misses.
func ScoreSelectors(scope *goquery.Selection, selectors []string) []ScoredSelector {
	scored := make([]ScoredSelector, 0, len(selectors))
	for _, sel := range selectors {
		matches := MatchCount(scope, sel)
		specificity := Specificity(sel)

		combined := 0
		if matches > 0 {
			combined = specificity*1000 + matches
		}

		scored = append(scored, ScoredSelector{
			Selector:         sel,
			MatchCount:       matches,
			SpecificityScore: specificity,
			CombinedScore:    combined,
		})
	}
	return scored
}

// PickBest returns the selector with the highest combined score, or nil when
// no candidate matches anything. A nil result is a valid negative: it tells
// the caller "this page has no such field", not "something broke". Ties keep
// the first-listed selector so configuration order stays a priority hint.
func PickBest(scope *goquery.Selection, selectors []string) *ScoredSelector {
	if len(selectors) == 0 {
		return nil
	}

	var best *ScoredSelector
	for _, candidate := range ScoreSelectors(scope, selectors) {
		if candidate.MatchCount == 0 {
			continue
		}
		if best == nil || candidate.CombinedScore > best.CombinedScore {
			c := candidate
			best = &c
		}
	}
	return best
}
