package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DueItem is one queue entry for output.
type DueItem struct {
	Document   string  `json:"document"`
	Kind       string  `json:"kind"`
	ID         string  `json:"id"`
	Due        string  `json:"due"`
	Interval   int     `json:"interval"`
	Ease       int     `json:"ease"`
	Importance float64 `json:"importance"`
}

// DueResult holds the due queue for output.
type DueResult struct {
	Count int       `json:"count"`
	Items []DueItem `json:"items"`
}

// NewDueCommand creates the due command.
func NewDueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "due",
		Short:         "List items due for review, most important first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDue(rootOpts, cmd)
		},
	}
}

func runDue(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeSync, err.Error(), nil)
		return err
	}
	defer sess.Close()

	due, err := sess.pass.Due()
	if err != nil {
		_ = formatter.Error(ErrCodeSync, err.Error(), nil)
		return WrapExitError(ExitFailure, "list due items", err)
	}

	result := DueResult{Count: len(due), Items: make([]DueItem, 0, len(due))}
	for _, it := range due {
		result.Items = append(result.Items, DueItem{
			Document:   it.Document,
			Kind:       it.Kind.String(),
			ID:         it.ID,
			Due:        it.Schedule.Due.String(),
			Interval:   it.Schedule.Interval,
			Ease:       it.Schedule.Ease,
			Importance: it.Importance,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Count == 0 {
		fmt.Fprintln(formatter.Writer, "Nothing due")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d item(s) due:\n", result.Count)
	for _, it := range result.Items {
		fmt.Fprintf(formatter.Writer, "  %-6s %-40s due %s  interval %d  ease %d\n",
			it.Kind, itemLabel(it), it.Due, it.Interval, it.Ease)
	}
	return nil
}

// itemLabel names a due item for text output: the document for notes, the
// document plus card identity for cards.
func itemLabel(it DueItem) string {
	if it.Kind == "card" {
		return fmt.Sprintf("%s#%s", it.Document, it.ID)
	}
	return it.Document
}
