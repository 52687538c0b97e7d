// cmd/shelfscraper/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitrinio/shelfscraper/internal/browser"
	"github.com/vitrinio/shelfscraper/internal/config"
	"github.com/vitrinio/shelfscraper/internal/crawler"
	"github.com/vitrinio/shelfscraper/internal/monitoring"
	"github.com/vitrinio/shelfscraper/internal/output"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: shelfscraper run <config.yaml>\n")
			os.Exit(1)
		}
		if err := runCrawl(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: shelfscraper validate <config.yaml>\n")
			os.Exit(1)
		}
		if _, err := config.LoadFromFile(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration file '%s' is valid\n", os.Args[2])

	case "version", "--version", "-v":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runCrawl executes one full crawl from a configuration file.
func runCrawl(configFile string) error {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Site.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logger.WithField("config", cfg.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics("shelfscraper")

	var status *monitoring.StatusServer
	if cfg.Metrics.Enabled {
		status = monitoring.NewStatusServer(cfg.Metrics.ListenAddress, logger.WithField("component", "status"))
		status.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			status.Shutdown(shutdownCtx)
		}()
	}

	page, err := browser.NewChromePage(cfg.Browser)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer page.Close()

	sink, err := output.NewRecordSink(cfg.Output, cfg.Site.Name)
	if err != nil {
		return fmt.Errorf("failed to open output sink: %w", err)
	}
	defer sink.Close()

	artifacts, err := output.NewLocalArtifactStore(cfg.Output.ArtifactDir)
	if err != nil {
		return fmt.Errorf("failed to prepare artifact store: %w", err)
	}

	runner, err := crawler.NewRunner(cfg, page, sink, artifacts, metrics, log)
	if err != nil {
		return fmt.Errorf("failed to build crawl runner: %w", err)
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	if status != nil {
		status.SetSummary(summary)
	}
	if err := output.NewSummaryWriter(cfg.Output.SummaryFile).Write(summary); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}

	fmt.Printf("Collected %d items (%d valid, %d errors) across %d pages\n",
		summary.CollectedItems, summary.ValidItems, summary.ErrorItems, summary.UniquePages)
	return nil
}

func printUsage() {
	fmt.Println("shelfscraper - configuration-driven product listing scraper")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  shelfscraper run <config.yaml>        Crawl a site with the given configuration")
	fmt.Println("  shelfscraper validate <config.yaml>   Validate a configuration file")
	fmt.Println("  shelfscraper version                  Show version information")
	fmt.Println("  shelfscraper help                     Show this help message")
}

func printVersion() {
	fmt.Printf("shelfscraper %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
