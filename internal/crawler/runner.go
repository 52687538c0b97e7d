// internal/crawler/runner.go

// Package crawler drives a whole run: it owns the crawl frontier, paces
// page visits, hands captured HTML to the extraction engine, and streams
// the results into a sink.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vitrinio/shelfscraper/internal/browser"
	"github.com/vitrinio/shelfscraper/internal/config"
	"github.com/vitrinio/shelfscraper/internal/monitoring"
	"github.com/vitrinio/shelfscraper/internal/output"
	"github.com/vitrinio/shelfscraper/internal/scraper"
)

// Page processing outcomes for metrics.
const (
	outcomeOK          = "ok"
	outcomeGateTimeout = "gate_timeout"
	outcomeError       = "error"
)

// maxShowMoreClicks bounds the show-more loop on pages whose button never
// disappears.
const maxShowMoreClicks = 25

// Runner executes one crawl of one site.
type Runner struct {
	cfg       *config.Config
	page      browser.Page
	sink      output.RecordSink
	artifacts output.ArtifactStore
	metrics   *monitoring.Metrics
	log       *logrus.Entry

	queue      *RequestQueue
	assembler  *scraper.Assembler
	normalizer *scraper.PriceNormalizer
	validator  *scraper.Validator
	planner    *scraper.Planner
	analyzer   *scraper.Analyzer
	limiter    *rate.Limiter

	collected  []scraper.ValidatedProductRecord
	errorItems int
}

// NewRunner wires the engine components for one site.
func NewRunner(
	cfg *config.Config,
	page browser.Page,
	sink output.RecordSink,
	artifacts output.ArtifactStore,
	metrics *monitoring.Metrics,
	log *logrus.Entry,
) (*Runner, error) {
	sets, err := cfg.Site.Selectors.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile selectors: %w", err)
	}

	planner, err := scraper.NewPlanner(&cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("failed to build pagination planner: %w", err)
	}

	return &Runner{
		cfg:        cfg,
		page:       page,
		sink:       sink,
		artifacts:  artifacts,
		metrics:    metrics,
		log:        log.WithField("site", cfg.Site.Name),
		queue:      NewRequestQueue(),
		assembler:  scraper.NewAssembler(&cfg.Site, sets),
		normalizer: scraper.NewPriceNormalizer(cfg.Site.ExchangeRates, true),
		validator:  scraper.NewValidator(),
		planner:    planner,
		analyzer:   scraper.NewAnalyzer(),
		limiter:    rate.NewLimiter(rate.Limit(config.RatePerSecond), 1),
	}, nil
}

// Run crawls from the start URL until the frontier drains, then writes the
// run summary. Page-level failures are logged and skipped; only browser or
// sink failures abort the run.
func (r *Runner) Run(ctx context.Context) (scraper.RunSummary, error) {
	startedAt := time.Now().UTC()
	r.queue.Enqueue(r.cfg.Site.StartURL, LabelStart)

	for {
		req, ok := r.queue.Dequeue()
		if !ok {
			break
		}
		r.metrics.SetQueueDepth(r.queue.Len())

		if err := r.limiter.Wait(ctx); err != nil {
			return scraper.RunSummary{}, fmt.Errorf("crawl cancelled: %w", err)
		}

		if err := r.processPage(ctx, req); err != nil {
			r.metrics.PageVisited(r.cfg.Site.Name, outcomeError)
			r.log.WithError(err).WithField("url", req.URL).Error("page processing failed")
		}
	}

	if err := r.sink.Flush(); err != nil {
		return scraper.RunSummary{}, fmt.Errorf("failed to flush sink: %w", err)
	}

	summary := r.analyzer.Analyze(r.collected)
	summary.SiteName = r.cfg.Site.Name
	summary.ErrorItems = r.errorItems
	summary.StartedAt = startedAt
	summary.FinishedAt = time.Now().UTC()

	r.log.WithFields(logrus.Fields{
		"collected": summary.CollectedItems,
		"valid":     summary.ValidItems,
		"errors":    summary.ErrorItems,
		"pages":     summary.UniquePages,
	}).Info("crawl finished")

	return summary, nil
}

// processPage navigates to one URL, settles dynamic content, extracts
// records, and plans further pages.
func (r *Runner) processPage(ctx context.Context, req Request) error {
	log := r.log.WithFields(logrus.Fields{"url": req.URL, "label": req.Label})
	log.Info("visiting page")

	if err := r.page.Navigate(ctx, req.URL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	passed, err := r.gate(ctx, req.URL)
	if err != nil {
		return err
	}
	if !passed {
		r.metrics.PageVisited(r.cfg.Site.Name, outcomeGateTimeout)
		return nil
	}

	if err := r.settle(ctx); err != nil {
		log.WithError(err).Warn("failed to settle dynamic content")
	}

	html, err := r.page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("failed to capture HTML: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	currentURL, err := r.page.CurrentURL(ctx)
	if err != nil || currentURL == "" {
		currentURL = req.URL
	}

	extractStart := time.Now()
	outcome := r.assembler.AssembleRecords(doc, currentURL)
	r.metrics.ExtractionDone(r.cfg.Site.Name, time.Since(extractStart))

	if err := r.consume(ctx, outcome); err != nil {
		return err
	}

	planned, err := r.planner.PlanNextPages(doc, currentURL)
	if err != nil {
		log.WithError(err).Warn("pagination planning failed")
	}
	for _, pageURL := range planned {
		if r.queue.Enqueue(pageURL, LabelSecond) {
			r.metrics.URLEnqueued(r.cfg.Site.Name)
		}
	}
	r.metrics.SetQueueDepth(r.queue.Len())

	r.metrics.PageVisited(r.cfg.Site.Name, outcomeOK)
	log.WithFields(logrus.Fields{
		"items":   len(outcome.Items),
		"errors":  outcome.ErrorCount,
		"planned": len(planned),
	}).Info("page processed")

	return r.sink.Flush()
}

// gate waits for any product-item selector to appear. A timeout is a
// negative result: the page is not a product listing. The screenshot goes
// to the artifact store so the miss can be diagnosed later.
func (r *Runner) gate(ctx context.Context, pageURL string) (bool, error) {
	// One malformed candidate must degrade to "ignored", not poison the
	// joined wait expression and fail the whole page.
	selectors := strings.Join(scraper.ValidSelectors(r.cfg.Site.Selectors.ProductItem), ", ")
	if selectors == "" {
		return true, nil
	}

	timeout := r.cfg.Site.GateTimeout
	if timeout <= 0 {
		timeout = config.DefaultGateTimeout
	}

	err := r.page.WaitForSelector(ctx, selectors, timeout)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, browser.ErrWaitTimeout) {
		return false, fmt.Errorf("gate wait failed: %w", err)
	}

	r.metrics.GateTimeout(r.cfg.Site.Name)
	log := r.log.WithField("url", pageURL)
	log.Warn("no product items appeared before the gate timeout")

	if shot, shotErr := r.page.Screenshot(ctx); shotErr == nil {
		if ref, saveErr := r.artifacts.Save("gate_timeout_"+r.cfg.Site.Name, shot); saveErr == nil {
			log.WithField("artifact", ref).Info("gate timeout screenshot saved")
		} else {
			log.WithError(saveErr).Warn("failed to save screenshot")
		}
	} else {
		log.WithError(shotErr).Warn("failed to capture screenshot")
	}
	return false, nil
}

// settle expands dynamic listings: scrolls infinite-scroll pages to the
// bottom and clicks through show-more buttons until they stop appearing.
func (r *Runner) settle(ctx context.Context) error {
	if r.cfg.Site.Scrollable {
		if err := r.page.ScrollToBottom(ctx); err != nil {
			return err
		}
	}

	if sel := r.cfg.Site.ShowMoreSelector; sel != "" {
		for i := 0; i < maxShowMoreClicks; i++ {
			count, err := r.page.QuerySelectorAllCount(ctx, sel)
			if err != nil || count == 0 {
				break
			}
			if err := r.page.Click(ctx, sel); err != nil {
				break
			}
			if err := r.page.ScrollToBottom(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// consume normalizes, validates, and persists one page's items.
func (r *Runner) consume(ctx context.Context, outcome *scraper.PageOutcome) error {
	for _, item := range outcome.Items {
		if item.IsError() {
			r.errorItems++
			r.metrics.ItemError(r.cfg.Site.Name)
			if err := r.sink.AppendError(ctx, *item.Failure); err != nil {
				return fmt.Errorf("failed to persist error record: %w", err)
			}
			continue
		}

		record := *item.Record
		r.normalizer.NormalizeAll(record.Prices)
		validated := r.validator.Validate(record)

		r.metrics.ItemCollected(r.cfg.Site.Name)
		if !(validated.TitleValid && validated.LinkValid && validated.ImgValid && validated.PriceValid) {
			r.metrics.ItemInvalid(r.cfg.Site.Name)
		}

		if err := r.sink.AppendRecord(ctx, validated); err != nil {
			return fmt.Errorf("failed to persist record: %w", err)
		}
		r.collected = append(r.collected, validated)
	}
	return nil
}
