package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check URLs for WordPress without extracting contacts",
		Long: `Validate runs only the detection stage over the given URLs and prints
one verdict per line. No contact extraction and no report files.

Examples:
  client-hunter validate -u acme.com,widgets.net
  client-hunter validate -f domains.txt -d 1s`,
		RunE: runValidateCmd,
	}
	addRunFlags(cmd)
	return cmd
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
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

	opts := runOptions(cfg)
	opts.SkipExtraction = true
	opts.SkipValidation = false
	opts.SkipExport = true

	result, err := p.ProcessURLs(cmd.Context(), urls, opts)
	if err != nil {
		return err
	}

	for _, rec := range result.Prospects {
		switch {
		case rec.Error != "":
			cmd.Printf("%-50s ERROR   %s\n", rec.URL, rec.Error)
		case rec.PlatformDetected():
			cmd.Printf("%-50s YES     %s (%s confidence)\n", rec.URL, rec.Verdict.Indicator, rec.Verdict.Confidence)
		default:
			cmd.Printf("%-50s NO      (%s confidence)\n", rec.URL, rec.Verdict.Confidence)
		}
	}
	printSummary(cmd, result)
	return nil
}
