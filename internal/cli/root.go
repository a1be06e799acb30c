// Package cli implements the mnemo command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to the YAML settings file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mnemo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mnemo",
		Short: "mnemo - spaced repetition for linked notes",
		Long:  "Schedules flashcards and whole notes in a markdown vault, weighting review order by link-graph importance.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to config file (default <vault>/.mnemo/config.yaml)")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewDueCommand(opts))
	cmd.AddCommand(NewReviewCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
