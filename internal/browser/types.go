// internal/browser/types.go

// Package browser provides the headless-browser page capability the crawl
// runner drives. The extraction engine itself only sees captured HTML; this
// package owns navigation, waiting, scrolling, and screenshots.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout is returned by WaitForSelector when the selector did not
// appear within the deadline. Callers treat it as a negative result, not a
// failure.
var ErrWaitTimeout = errors.New("browser: selector wait timed out")

// Page is the capability the runner consumes. Every call is an
// asynchronous round-trip to the browser process and must tolerate
// arbitrary latency.
type Page interface {
	// Navigate loads a URL and waits for the body to be ready.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the page's location after redirects.
	CurrentURL(ctx context.Context) (string, error)

	// HTML returns the current page's outer HTML.
	HTML(ctx context.Context) (string, error)

	// EvaluateInPage runs a script in page context and unmarshals the
	// result into result.
	EvaluateInPage(ctx context.Context, script string, result interface{}) error

	// QuerySelectorAllCount counts matches for a selector in the live DOM.
	QuerySelectorAllCount(ctx context.Context, selector string) (int, error)

	// WaitForSelector waits until the selector appears, bounded by
	// timeout. Returns ErrWaitTimeout when the deadline passes.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// Screenshot captures the full page as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// ScrollToBottom scrolls to the end of the page, settling lazy-loaded
	// content.
	ScrollToBottom(ctx context.Context) error

	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error

	// Close releases the browser resources.
	Close() error
}

// Stats tracks browser-level counters for logging.
type Stats struct {
	PagesLoaded      int
	Errors           int
	TimeoutsOccurred int
	AverageLoadTime  time.Duration
}
