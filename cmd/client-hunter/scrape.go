package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Validate and extract contacts from a list of URLs",
		Long: `Scrape processes a caller-supplied URL list: each site is checked for
WordPress, its standard sub-pages are harvested for contact data, and the
results are exported.

Examples:
  # From a comma-separated list
  client-hunter scrape -u acme.com,widgets.net

  # From a domain file, keeping only WordPress sites
  client-hunter scrape -f domains.txt --platform-only

  # Slow and cautious
  client-hunter scrape -f domains.txt -d 5s --respect-robots`,
		RunE: runScrapeCmd,
	}
	addRunFlags(cmd)
	return cmd
}

func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	urls, err := collectURLs(cfg)
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	result, err := p.ProcessURLs(ctx, urls, runOptions(cfg))
	if err != nil {
		return err
	}
	printSummary(cmd, result)
	return nil
}
