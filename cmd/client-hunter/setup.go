package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsikram/client-hunter/internal/config"
	"github.com/itsikram/client-hunter/internal/detector"
	"github.com/itsikram/client-hunter/internal/export"
	"github.com/itsikram/client-hunter/internal/extractor"
	"github.com/itsikram/client-hunter/internal/fingerprint"
	"github.com/itsikram/client-hunter/internal/metrics"
	"github.com/itsikram/client-hunter/internal/pipeline"
	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/scraper"
	"github.com/itsikram/client-hunter/internal/serp"
	"github.com/itsikram/client-hunter/internal/storage"
	"github.com/itsikram/client-hunter/internal/storage/postgres"
	"github.com/itsikram/client-hunter/internal/storage/sqlite"
	"github.com/itsikram/client-hunter/pkg/proxy"
	"github.com/itsikram/client-hunter/pkg/ratelimit"
)

// addRunFlags registers the flags shared by every command that processes URLs.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("urls", "u", nil, "Comma-separated list of target URLs")
	cmd.Flags().StringP("file", "f", "", "Path to a line-oriented domain file (# comments and blank lines ignored)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir, "Directory for report files")
	cmd.Flags().String("prefix", config.DefaultPrefix, "Output file name prefix")
	cmd.Flags().Bool("platform-only", false, "Keep only confirmed WordPress sites in the output")
	cmd.Flags().DurationP("delay", "d", config.DefaultDelay, "Pause between consecutive requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Per-request timeout")
	cmd.Flags().Int("max-results", 0, "Cap on discovered results (0 = unlimited)")
	cmd.Flags().IntP("pages", "p", config.DefaultPages, "Search result pages per query")
	cmd.Flags().Bool("skip-validation", false, "Skip the WordPress detection stage")
	cmd.Flags().Bool("skip-extraction", false, "Skip the contact extraction stage")
	cmd.Flags().String("proxy-file", "", "File with one proxy URL per line")
	cmd.Flags().String("fingerprint", config.DefaultFingerprint, "TLS fingerprint profile (chrome, firefox, safari, go, random)")
	cmd.Flags().Bool("respect-robots", false, "Consult robots.txt before extraction fetches")
	cmd.Flags().Bool("sitemaps", false, "Use sitemaps to find extra contact pages")
	cmd.Flags().String("storage-driver", "", "Persist records to a database (sqlite or postgres)")
	cmd.Flags().String("storage-dsn", "", "Database DSN for --storage-driver")
	cmd.Flags().Int("metrics-port", 0, "Serve Prometheus metrics on this port (0 = disabled)")
}

// buildConfig layers file config, environment and explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("urls") {
		cfg.URLs, _ = flags.GetStringSlice("urls")
	}
	if flags.Changed("file") {
		cfg.DomainFile, _ = flags.GetString("file")
	}
	if flags.Changed("output") {
		cfg.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("prefix") {
		cfg.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("platform-only") {
		cfg.PlatformOnly, _ = flags.GetBool("platform-only")
	}
	if flags.Changed("delay") {
		cfg.Delay, _ = flags.GetDuration("delay")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("max-results") {
		cfg.MaxResults, _ = flags.GetInt("max-results")
	}
	if flags.Changed("pages") {
		cfg.Pages, _ = flags.GetInt("pages")
	}
	if flags.Changed("skip-validation") {
		cfg.SkipValidation, _ = flags.GetBool("skip-validation")
	}
	if flags.Changed("skip-extraction") {
		cfg.SkipExtraction, _ = flags.GetBool("skip-extraction")
	}
	if flags.Changed("proxy-file") {
		cfg.ProxyFile, _ = flags.GetString("proxy-file")
	}
	if flags.Changed("fingerprint") {
		cfg.Fingerprint, _ = flags.GetString("fingerprint")
	}
	if flags.Changed("respect-robots") {
		cfg.RespectRobots, _ = flags.GetBool("respect-robots")
	}
	if flags.Changed("sitemaps") {
		cfg.UseSitemaps, _ = flags.GetBool("sitemaps")
	}
	if flags.Changed("storage-driver") {
		cfg.StorageDriver, _ = flags.GetString("storage-driver")
	}
	if flags.Changed("storage-dsn") {
		cfg.StorageDSN, _ = flags.GetString("storage-dsn")
	}
	if flags.Changed("metrics-port") {
		cfg.MetricsPort, _ = flags.GetInt("metrics-port")
	}
	if verbose, err := cmd.Root().PersistentFlags().GetBool("verbose"); err == nil && verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// collectURLs merges the --urls list with the domain file, in that order.
func collectURLs(cfg *config.Config) ([]string, error) {
	urls := append([]string(nil), cfg.URLs...)
	if cfg.DomainFile != "" {
		fromFile, err := config.ReadDomainFile(cfg.DomainFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs supplied: use --urls or --file")
	}
	return urls, nil
}

// buildPipeline assembles the stage components from the configuration. The
// returned cleanup func stops the metrics server and closes storage.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	var proxyPool *proxy.Pool
	if cfg.ProxyFile != "" {
		proxyPool = proxy.NewPool(proxy.Config{})
		if err := proxyPool.LoadFile(cfg.ProxyFile); err != nil {
			return nil, nil, fmt.Errorf("failed to load proxies: %w", err)
		}
		logger.Info("proxies loaded", "count", proxyPool.Len())
	}

	profile := fingerprint.Profile(cfg.Fingerprint)
	limiter := ratelimit.NewEvery(cfg.Delay, 0.1)

	searchFetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      cfg.Timeout,
		MaxRedirects: 5,
		UseCookieJar: true,
		ProxyPool:    proxyPool,
		Fingerprint:  profile,
		Limiter:      limiter,
		Component:    "search",
	})
	if err != nil {
		return nil, nil, err
	}

	siteFetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      cfg.Timeout,
		MaxRedirects: 5,
		ProxyPool:    proxyPool,
		Fingerprint:  profile,
		Component:    "site",
	})
	if err != nil {
		return nil, nil, err
	}

	det, err := detector.New(detector.Config{
		Fetcher:      siteFetcher,
		ProbeTimeout: cfg.ProbeTimeout,
		Delay:        cfg.Delay,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}

	extCfg := extractor.Config{
		Fetcher: siteFetcher,
		Delay:   cfg.Delay,
		Logger:  logger,
	}
	if cfg.RespectRobots {
		extCfg.Robots = scraper.NewRobotsAuditor(siteFetcher, logger)
	}
	if cfg.UseSitemaps {
		extCfg.Sitemaps = scraper.NewSitemapFetcher(siteFetcher, logger)
		extCfg.SitemapPages = 5
	}
	ext, err := extractor.New(extCfg)
	if err != nil {
		return nil, nil, err
	}

	var store storage.Backend
	switch cfg.StorageDriver {
	case "sqlite":
		store, err = sqlite.New(cfg.StorageDSN)
	case "postgres":
		store, err = postgres.New(context.Background(), cfg.StorageDSN)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var metricsSrv *metrics.Server
	if cfg.MetricsPort > 0 {
		metricsSrv = metrics.Start(cfg.MetricsPort)
		logger.Info("metrics server started", "port", cfg.MetricsPort)
	}

	p := &pipeline.Pipeline{
		Discoverer: serp.NewDiscoverer(serp.NewGoogleScrape(searchFetcher, logger), logger),
		Detector:   det,
		Extractor:  ext,
		Exporter:   export.New(cfg.OutputDir, cfg.Prefix, logger),
		Store:      store,
		Logger:     logger,
	}

	cleanup := func() {
		if metricsSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = metricsSrv.Stop(ctx)
		}
		if store != nil {
			_ = store.Close()
		}
	}
	return p, cleanup, nil
}

func runOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		SkipValidation: cfg.SkipValidation,
		SkipExtraction: cfg.SkipExtraction,
		PlatformOnly:   cfg.PlatformOnly,
		Delay:          cfg.Delay,
	}
}

func printSummary(cmd *cobra.Command, result *prospect.Result) {
	s := result.Summary
	cmd.Printf("\nRun finished in %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	if s.TotalSearchResults > 0 {
		cmd.Printf("  Search results:     %d\n", s.TotalSearchResults)
	}
	cmd.Printf("  Sites processed:    %d\n", len(result.Prospects))
	cmd.Printf("  Sites validated:    %d\n", s.SitesValidated)
	cmd.Printf("  Platform confirmed: %d (%.1f%%)\n", s.PlatformConfirmed, s.DetectionRate)
	cmd.Printf("  Sites with emails:  %d\n", s.SitesWithEmails)
	cmd.Printf("  Emails found:       %d (%d unique)\n", s.TotalEmails, s.UniqueEmails)
}
