package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/serp"
)

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find WordPress sites through search queries, then process them",
		Long: `Discover runs a battery of search queries that surface WordPress-built
sites, optionally narrowed by industry, keywords or custom queries, and
feeds every hit through validation and contact extraction.

Examples:
  # Generic discovery, first 20 results
  client-hunter discover --max-results 20

  # Industry-specific
  client-hunter discover --industry dental --platform-only

  # Keyword-driven
  client-hunter discover --keyword "plumber chicago" --keyword "roofing dallas"

  # Custom queries verbatim
  client-hunter discover --query 'inurl:wp-content "book now"'`,
		RunE: runDiscoverCmd,
	}
	addRunFlags(cmd)
	cmd.Flags().String("industry", "", "Industry query set (see --list-industries)")
	cmd.Flags().StringArrayP("keyword", "k", nil, "Keyword combined with the platform phrase (repeatable)")
	cmd.Flags().StringArrayP("query", "q", nil, "Custom search query run verbatim (repeatable)")
	cmd.Flags().Bool("list-industries", false, "Print known industry keys and exit")
	return cmd
}

func runDiscoverCmd(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list-industries"); list {
		for _, k := range serp.Industries() {
			cmd.Println(k)
		}
		return nil
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("industry") {
		cfg.Industry, _ = cmd.Flags().GetString("industry")
	}
	if cmd.Flags().Changed("keyword") {
		cfg.Keywords, _ = cmd.Flags().GetStringArray("keyword")
	}
	if cmd.Flags().Changed("query") {
		cfg.CustomQueries, _ = cmd.Flags().GetStringArray("query")
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

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

	discover := serp.DiscoverOptions{
		Industry:      cfg.Industry,
		CustomQueries: cfg.CustomQueries,
		MaxResults:    cfg.MaxResults,
		Pages:         cfg.Pages,
		PerPage:       cfg.PerPage,
		QueryDelay:    cfg.Delay,
		PageDelay:     cfg.Delay,
	}

	var result *prospect.Result
	if len(cfg.Keywords) > 0 {
		searchResults, err := p.Discoverer.SearchByKeywords(ctx, cfg.Keywords, discover)
		if err != nil {
			return err
		}
		urls := make([]string, 0, len(searchResults))
		for _, r := range searchResults {
			urls = append(urls, r.URL)
		}
		result, err = p.ProcessURLs(ctx, urls, runOptions(cfg))
		if err != nil {
			return err
		}
		result.SearchResults = searchResults
		result.Summary = prospect.Summarize(result.SearchResults, result.Prospects)
	} else {
		result, err = p.Run(ctx, discover, runOptions(cfg))
		if err != nil {
			return err
		}
	}

	printSummary(cmd, result)
	return nil
}
