package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scoutpool/internal/browser"
	"github.com/ternarybob/scoutpool/internal/bulk"
	"github.com/ternarybob/scoutpool/internal/common"
	"github.com/ternarybob/scoutpool/internal/extraction"
	"github.com/ternarybob/scoutpool/internal/extraction/linkextract"
	"github.com/ternarybob/scoutpool/internal/models"
	"github.com/ternarybob/scoutpool/internal/pool"
	"github.com/ternarybob/scoutpool/internal/queue"
	"github.com/ternarybob/scoutpool/internal/resource"
	"github.com/ternarybob/scoutpool/internal/schedule"
	"github.com/ternarybob/scoutpool/internal/storage/sqlite"
	"github.com/ternarybob/scoutpool/internal/store"
)

// configPaths is a custom flag type allowing multiple -config flags,
// later files override earlier ones.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles   configPaths
	scheduleFlag  = flag.String("schedule", "", "Cron expression for repeated passes (default: run once and exit)")
	bulkURLsFlag  = flag.String("bulk-urls", "", "Inline seed URLs: JSON array/object or newline/comma list (overrides BULK_URLS)")
	bulkFileFlag  = flag.String("bulk-urls-file", "", "Path to a file with seed URLs in the same format as -bulk-urls")
	discoverLinks = flag.Bool("discover-links", false, "Follow each bulk-seeded URL once and enqueue discovered product/category links")
	showVersion   = flag.Bool("version", false, "Print version information")
	showVersionV  = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (may be repeated, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("scoutpool version %s\n", common.GetVersion())
		os.Exit(0)
	}

	cfg, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("failed to load configuration files")
		os.Exit(1)
	}
	common.ApplyEnvOverrides(cfg)
	if *scheduleFlag != "" {
		cfg.Schedule = *scheduleFlag
	}

	logger := common.SetupLogger(cfg)
	common.PrintBanner(cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, *bulkURLsFlag, *bulkFileFlag, *discoverLinks); err != nil {
		logger.Fatal().Err(err).Msg("scoutpool exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger arbor.ILogger, bulkURLs, bulkFile string, discover bool) error {
	db, err := sqlite.Open(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	queueClient, err := queue.New(ctx, db.Conn(), "product_page_urls", logger)
	if err != nil {
		return fmt.Errorf("initializing queue: %w", err)
	}

	seeded, err := seedBulkURLs(ctx, queueClient, bulkURLs, bulkFile)
	if err != nil {
		return fmt.Errorf("seeding bulk urls: %w", err)
	}

	if discover {
		seedDiscoveredLinks(ctx, queueClient, seeded, cfg.Browser.UserAgent, logger)
	}

	if cfg.Pool.DryRunOnly {
		logger.Info().Msg("dry run only, exiting without processing")
		return nil
	}

	browserPool := browser.NewPool(&cfg.Browser, logger)
	pipeline := extraction.NewPipeline(logger)
	productStore := store.New(db.Conn(), logger)
	guard := resource.New(&cfg.Resource, logger)

	workPool := pool.New(cfg, logger, queueClient, browserPool, pipeline, productStore, guard, progressLogger(logger))

	return schedule.RunOnSchedule(ctx, cfg.Schedule, logger, workPool.Run)
}

func seedBulkURLs(ctx context.Context, queueClient *queue.Client, bulkURLs, bulkFile string) ([]string, error) {
	if v := os.Getenv("BULK_URLS"); v != "" && bulkURLs == "" {
		bulkURLs = v
	}
	if v := os.Getenv("BULK_URLS_FILE"); v != "" && bulkFile == "" {
		bulkFile = v
	}

	var entries []bulk.Entry
	if bulkURLs != "" {
		parsed, err := bulk.ParseString(bulkURLs)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}
	if bulkFile != "" {
		parsed, err := bulk.ParseFile(bulkFile)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}

	seeded := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, err := queueClient.Enqueue(ctx, e.URL, e.ProductTypeID); err != nil {
			return nil, err
		}
		seeded = append(seeded, e.URL)
	}
	return seeded, nil
}

// seedDiscoveredLinks follows every bulk-seeded URL once and enqueues any
// further product/category links it finds. Failures are logged and
// skipped rather than aborting startup — link discovery is a best-effort
// supplement to the bulk seed list, not a required step.
func seedDiscoveredLinks(ctx context.Context, queueClient *queue.Client, seeds []string, userAgent string, logger arbor.ILogger) {
	for _, seedURL := range seeds {
		links, err := linkextract.Discover(seedURL, userAgent, logger)
		if err != nil {
			logger.Warn().Err(err).Str("url", seedURL).Msg("link discovery failed, skipping")
			continue
		}
		for _, link := range links {
			if _, err := queueClient.Enqueue(ctx, link, ""); err != nil {
				logger.Warn().Err(err).Str("url", link).Msg("failed to enqueue discovered link")
			}
		}
	}
}

func progressLogger(logger arbor.ILogger) pool.ProgressFunc {
	return func(result pool.WorkResult, stats models.Stats) {
		event := logger.Info()
		if !result.Success {
			event = logger.Warn()
		}
		event.
			Str("url", result.URL).
			Bool("success", result.Success).
			Int("products_found", result.ProductsFound).
			Int("products_saved", result.ProductsSaved).
			Int("total_submitted", stats.Submitted).
			Int("total_succeeded", stats.Succeeded).
			Int("total_failed", stats.Failed).
			Msg("url processed")
	}
}
