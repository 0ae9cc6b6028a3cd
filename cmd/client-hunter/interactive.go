package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsikram/client-hunter/internal/config"
	"github.com/itsikram/client-hunter/internal/pipeline"
	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/serp"
)

// NewInteractiveCmd creates the interactive command.
func NewInteractiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Guided prospecting session",
		Long: `Interactive walks through the run configuration with prompts instead of
flags: input source, stage selection, delay and output location. Defaults
are shown in brackets; press enter to accept them.`,
		RunE: runInteractiveCmd,
	}
	addRunFlags(cmd)
	return cmd
}

type prompter struct {
	in  *bufio.Reader
	cmd *cobra.Command
}

func (p *prompter) ask(question, def string) string {
	if def != "" {
		p.cmd.Printf("%s [%s]: ", question, def)
	} else {
		p.cmd.Printf("%s: ", question)
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func (p *prompter) askBool(question string, def bool) bool {
	defStr := "n"
	if def {
		defStr = "y"
	}
	answer := strings.ToLower(p.ask(question+" (y/n)", defStr))
	return answer == "y" || answer == "yes"
}

func runInteractiveCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), cmd: cmd}

	cmd.Println("client-hunter interactive mode")
	cmd.Println("------------------------------")

	mode := p.ask("Mode: (1) scrape URL list, (2) search discovery", "1")

	if mode == "2" {
		cmd.Printf("Known industries: %s\n", strings.Join(serp.Industries(), ", "))
		cfg.Industry = p.ask("Industry (empty for generic)", cfg.Industry)
		if kw := p.ask("Keywords, comma-separated (empty for none)", ""); kw != "" {
			for _, k := range strings.Split(kw, ",") {
				if k = strings.TrimSpace(k); k != "" {
					cfg.Keywords = append(cfg.Keywords, k)
				}
			}
		}
		if max := p.ask("Max results (0 = unlimited)", strconv.Itoa(cfg.MaxResults)); max != "" {
			if parsed, err := strconv.Atoi(max); err == nil {
				cfg.MaxResults = parsed
			}
		}
	} else {
		if urls := p.ask("URLs, comma-separated (empty to use a file)", strings.Join(cfg.URLs, ",")); urls != "" {
			cfg.URLs = nil
			for _, u := range strings.Split(urls, ",") {
				if u = strings.TrimSpace(u); u != "" {
					cfg.URLs = append(cfg.URLs, u)
				}
			}
		}
		if len(cfg.URLs) == 0 {
			cfg.DomainFile = p.ask("Domain file path", cfg.DomainFile)
		}
	}

	cfg.SkipValidation = !p.askBool("Run WordPress detection?", !cfg.SkipValidation)
	cfg.SkipExtraction = !p.askBool("Extract contact data?", !cfg.SkipExtraction)
	if !cfg.SkipValidation {
		cfg.PlatformOnly = p.askBool("Keep only confirmed WordPress sites?", cfg.PlatformOnly)
	}

	if delay := p.ask("Delay between requests", cfg.Delay.String()); delay != "" {
		if parsed, err := time.ParseDuration(delay); err == nil && parsed >= 0 {
			cfg.Delay = parsed
		}
	}
	cfg.OutputDir = p.ask("Output directory", cfg.OutputDir)
	cfg.Prefix = p.ask("Output file prefix", cfg.Prefix)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	pipe, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if mode == "2" {
		return runInteractiveDiscovery(cmd, cfg, pipe)
	}

	urls, err := collectURLs(cfg)
	if err != nil {
		return err
	}
	result, err := pipe.ProcessURLs(cmd.Context(), urls, runOptions(cfg))
	if err != nil {
		return err
	}
	printSummary(cmd, result)
	return nil
}

func runInteractiveDiscovery(cmd *cobra.Command, cfg *config.Config, pipe *pipeline.Pipeline) error {
	discover := serp.DiscoverOptions{
		Industry:   cfg.Industry,
		MaxResults: cfg.MaxResults,
		Pages:      cfg.Pages,
		PerPage:    cfg.PerPage,
		QueryDelay: cfg.Delay,
		PageDelay:  cfg.Delay,
	}

	if len(cfg.Keywords) > 0 {
		searchResults, err := pipe.Discoverer.SearchByKeywords(cmd.Context(), cfg.Keywords, discover)
		if err != nil {
			return err
		}
		urls := make([]string, 0, len(searchResults))
		for _, r := range searchResults {
			urls = append(urls, r.URL)
		}
		result, err := pipe.ProcessURLs(cmd.Context(), urls, runOptions(cfg))
		if err != nil {
			return err
		}
		result.SearchResults = searchResults
		result.Summary = prospect.Summarize(result.SearchResults, result.Prospects)
		printSummary(cmd, result)
		return nil
	}

	result, err := pipe.Run(cmd.Context(), discover, runOptions(cfg))
	if err != nil {
		return err
	}
	printSummary(cmd, result)
	return nil
}
