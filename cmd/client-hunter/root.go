package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCmd creates the root command for client-hunter.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client-hunter",
		Short: "Find WordPress-based businesses and their contact data",
		Long: `client-hunter discovers candidate websites through search queries,
checks whether each one runs WordPress, harvests contact information
(emails, phone numbers, social links, contact forms) from their standard
sub-pages, and writes the aggregate to CSV, JSON and plain-text reports.

All network activity is strictly sequential with a configurable delay
between requests.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file path (default: .client-hunter.yaml in current or home directory)")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewInteractiveCmd())
	cmd.AddCommand(NewSampleCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
