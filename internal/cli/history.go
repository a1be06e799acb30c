package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-srs/mnemo/internal/history"
)

// HistoryEntry is one recorded review for output.
type HistoryEntry struct {
	Date     string `json:"date"`
	Response string `json:"response"`
	Interval int    `json:"interval"`
	Ease     int    `json:"ease"`
}

// HistoryResult holds an item's review record for output.
type HistoryResult struct {
	ID           string         `json:"id"`
	Created      string         `json:"created"`
	LastReviewed string         `json:"last_reviewed"`
	Reviews      []HistoryEntry `json:"reviews"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <item-id>",
		Short:         "Show the recorded reviews of one item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, cmd, args[0])
		},
	}
}

func runHistory(opts *RootOptions, cmd *cobra.Command, itemID string) error {
	formatter := newFormatter(opts, cmd)

	settings, err := loadSettings(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load config", err)
	}

	logger := newLogger(opts, cmd)
	store, err := history.Open(settings.HistoryPath(), logger)
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open history", err)
	}
	defer store.Close()

	record, ok := store.History(itemID)
	if !ok {
		msg := fmt.Sprintf("no history for %s", itemID)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	result := HistoryResult{
		ID:           itemID,
		Created:      record.Created.String(),
		LastReviewed: record.LastReviewed.String(),
		Reviews:      make([]HistoryEntry, 0, len(record.History)),
	}
	for _, e := range record.History {
		result.Reviews = append(result.Reviews, HistoryEntry{
			Date:     e.Date.String(),
			Response: e.Response.String(),
			Interval: e.Interval,
			Ease:     e.Ease,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s: %d review(s), first %s, last %s\n",
		itemID, len(result.Reviews), result.Created, result.LastReviewed)
	for _, e := range result.Reviews {
		fmt.Fprintf(formatter.Writer, "  %s %-5s interval %d  ease %d\n", e.Date, e.Response, e.Interval, e.Ease)
	}
	return nil
}
