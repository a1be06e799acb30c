package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-srs/mnemo/internal/review"
)

// SyncResult holds the outcome of a sync pass for output.
type SyncResult struct {
	Documents   int `json:"documents"`
	Notes       int `json:"notes"`
	Cards       int `json:"cards"`
	Due         int `json:"due"`
	AssignedIDs int `json:"assigned_ids"`
	Skipped     int `json:"skipped"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Scan the vault and refresh schedules, identities, and the link index",
		Long: `Scan every document in the vault: rebuild the link index, recompute
importance, parse scheduling annotations, and assign identities to items
that lack them. Documents gain annotations only where identities were
missing; schedules are never changed by sync.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeSync, err.Error(), nil)
		return err
	}
	defer sess.Close()

	result := statsToResult(sess.pass.Stats())

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Synced %d document(s): %d note(s), %d card(s), %d due\n",
		result.Documents, result.Notes, result.Cards, result.Due)
	if result.AssignedIDs > 0 {
		fmt.Fprintf(formatter.Writer, "Assigned %d new identit(ies)\n", result.AssignedIDs)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(formatter.Writer, "Skipped %d malformed annotation(s)\n", result.Skipped)
	}
	return nil
}

func statsToResult(stats review.Stats) SyncResult {
	return SyncResult{
		Documents:   stats.Documents,
		Notes:       stats.Notes,
		Cards:       stats.Cards,
		Due:         stats.Due,
		AssignedIDs: stats.AssignedIDs,
		Skipped:     stats.Skipped,
	}
}
