package main

import (
	"github.com/spf13/cobra"

	"github.com/itsikram/client-hunter/internal/config"
)

// NewSampleCmd creates the sample command.
func NewSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample [path]",
		Short: "Write an example domain input file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "domains-sample.txt"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteSampleDomainFile(path); err != nil {
				return err
			}
			cmd.Printf("Sample domain file written to %s\n", path)
			return nil
		},
	}
	return cmd
}
