// internal/scraper/analyzer.go
package scraper

import (
	"sort"
	"strings"
	"time"
)

// Analyzer computes post-hoc run statistics over a full crawl's collected
// records. It runs once per crawl, after the last page.
type Analyzer struct{}

// NewAnalyzer creates an analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze builds the run summary for a set of validated records. Safe on
// empty input: counts are zero and the time span is zero, never an error.
func (a *Analyzer) Analyze(records []ValidatedProductRecord) RunSummary {
	summary := RunSummary{CollectedItems: len(records)}

	pages := make(map[string]bool)
	linkCounts := make(map[string]int)
	linkFirstSeen := make(map[string]int)

	var oldest, newest time.Time

	for i, record := range records {
		if record.TitleValid && record.LinkValid && record.ImgValid && record.PriceValid {
			summary.ValidItems++
		} else {
			summary.InvalidItems++
		}

		if page := stripQuery(record.PageURL); page != "" {
			pages[page] = true
		}

		if record.Link != "" {
			if _, seen := linkCounts[record.Link]; !seen {
				linkFirstSeen[record.Link] = i
			}
			linkCounts[record.Link]++
		}

		ts, err := time.Parse(time.RFC3339, record.Timestamp)
		if err != nil {
			continue
		}
		if oldest.IsZero() || ts.Before(oldest) {
			oldest = ts
		}
		if newest.IsZero() || ts.After(newest) {
			newest = ts
		}
	}

	summary.UniquePages = len(pages)
	summary.UniqueLinks = len(linkCounts)

	for link, count := range linkCounts {
		if count > 1 {
			summary.DuplicateLinks++
			summary.DuplicateGroups = append(summary.DuplicateGroups, DuplicateGroup{
				Link:      link,
				Count:     count,
				FirstSeen: linkFirstSeen[link],
			})
		}
	}
	sort.Slice(summary.DuplicateGroups, func(i, j int) bool {
		gi, gj := summary.DuplicateGroups[i], summary.DuplicateGroups[j]
		if gi.Count != gj.Count {
			return gi.Count > gj.Count
		}
		return gi.FirstSeen < gj.FirstSeen
	})

	if !oldest.IsZero() && !newest.IsZero() {
		summary.TimeSpanMinutes = newest.Sub(oldest).Minutes()
	}

	return summary
}

// stripQuery drops the query string (and fragment) from a page URL so all
// visits to one listing page count as one page.
func stripQuery(pageURL string) string {
	if i := strings.IndexByte(pageURL, '?'); i >= 0 {
		pageURL = pageURL[:i]
	}
	if i := strings.IndexByte(pageURL, '#'); i >= 0 {
		pageURL = pageURL[:i]
	}
	return pageURL
}
