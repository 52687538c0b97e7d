// internal/browser/chromedp.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/vitrinio/shelfscraper/internal/config"
)

// ChromePage implements Page using chromedp.
type ChromePage struct {
	ctx      context.Context
	cancels  []context.CancelFunc
	cfg      config.BrowserConfig
	stats    *Stats
	navOK    bool
	navMu    sync.RWMutex
}

// NewChromePage launches a Chrome instance configured for scraping.
func NewChromePage(cfg config.BrowserConfig) (*ChromePage, error) {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
	}

	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	page := &ChromePage{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
		cfg:     cfg,
		stats:   &Stats{},
	}

	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(cfg.ViewportWidth), int64(cfg.ViewportHeight)),
	); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	return page, nil
}

// Navigate implements Page.
func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	start := time.Now()

	runCtx := p.ctx
	var cancel context.CancelFunc
	if p.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.ctx, p.cfg.Timeout)
		defer cancel()
	}

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	loadTime := time.Since(start)

	p.navMu.Lock()
	p.navOK = err == nil
	p.navMu.Unlock()

	if err != nil {
		p.stats.Errors++
		return fmt.Errorf("navigation failed: %w", err)
	}

	p.stats.PagesLoaded++
	if p.stats.PagesLoaded == 1 {
		p.stats.AverageLoadTime = loadTime
	} else {
		p.stats.AverageLoadTime = (p.stats.AverageLoadTime + loadTime) / 2
	}
	return nil
}

// CurrentURL implements Page.
func (p *ChromePage) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := chromedp.Run(p.ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return location, nil
}

// HTML implements Page. Navigation must have completed successfully first;
// extracting from a half-loaded page produces phantom partial records.
func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	p.navMu.RLock()
	navOK := p.navOK
	p.navMu.RUnlock()
	if !navOK {
		return "", fmt.Errorf("cannot extract HTML: navigation has not completed successfully")
	}

	var html string
	if err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		p.stats.Errors++
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// EvaluateInPage implements Page.
func (p *ChromePage) EvaluateInPage(ctx context.Context, script string, result interface{}) error {
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, result)); err != nil {
		p.stats.Errors++
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}

// QuerySelectorAllCount implements Page.
func (p *ChromePage) QuerySelectorAllCount(ctx context.Context, selector string) (int, error) {
	var count int
	script := fmt.Sprintf("document.querySelectorAll(%q).length", selector)
	if err := p.EvaluateInPage(ctx, script, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// WaitForSelector implements Page. The timeout converts to ErrWaitTimeout
// so callers can distinguish "not there yet" from browser failures.
func (p *ChromePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	timeoutCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	err := chromedp.Run(timeoutCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			p.stats.TimeoutsOccurred++
			return ErrWaitTimeout
		}
		p.stats.Errors++
		return fmt.Errorf("selector wait failed: %w", err)
	}
	return nil
}

// Screenshot implements Page.
func (p *ChromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(p.ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		p.stats.Errors++
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

// ScrollToBottom implements Page. Scrolls in steps so infinite-scroll
// listeners get a chance to fire between movements.
func (p *ChromePage) ScrollToBottom(ctx context.Context) error {
	script := `new Promise(resolve => {
		let total = 0;
		const step = 600;
		const timer = setInterval(() => {
			window.scrollBy(0, step);
			total += step;
			if (total >= document.body.scrollHeight) {
				clearInterval(timer);
				resolve(true);
			}
		}, 200);
	})`
	var done bool
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &done, func(ep *runtime.EvaluateParams) *runtime.EvaluateParams {
		return ep.WithAwaitPromise(true)
	})); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// Click implements Page.
func (p *ChromePage) Click(ctx context.Context, selector string) error {
	if err := chromedp.Run(p.ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// GetStats returns browser statistics.
func (p *ChromePage) GetStats() *Stats {
	return p.stats
}

// Close implements Page.
func (p *ChromePage) Close() error {
	for _, cancel := range p.cancels {
		cancel()
	}
	return nil
}
