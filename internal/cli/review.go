package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-srs/mnemo/internal/review"
	"github.com/mnemo-srs/mnemo/internal/srs"
)

// ReviewResult holds the schedule that followed a review, for output.
type ReviewResult struct {
	Document string `json:"document"`
	Kind     string `json:"kind"`
	ID       string `json:"id,omitempty"`
	Response string `json:"response"`
	Due      string `json:"due"`
	Interval int    `json:"interval"`
	Ease     int    `json:"ease"`
}

// NewReviewCommand creates the review command.
func NewReviewCommand(rootOpts *RootOptions) *cobra.Command {
	var card string

	cmd := &cobra.Command{
		Use:   "review <document> <easy|good|hard|reset>",
		Short: "Apply a review response to a note or flashcard",
		Long: `Apply a review response to a document's whole-note schedule, or with
--card to a single flashcard inside it. The new schedule is written back
into the document and the review is appended to the history store.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(rootOpts, cmd, args[0], args[1], card)
		},
	}

	cmd.Flags().StringVar(&card, "card", "", "card identity to review instead of the whole note")
	return cmd
}

func runReview(opts *RootOptions, cmd *cobra.Command, document, responseArg, card string) error {
	formatter := newFormatter(opts, cmd)

	response, err := srs.ParseResponse(responseArg)
	if err != nil {
		_ = formatter.Error(ErrCodeReview, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parse response", err)
	}

	sess, err := openSession(opts, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeSync, err.Error(), nil)
		return err
	}
	defer sess.Close()

	var next srs.Schedule
	kind := "note"
	if card != "" {
		kind = "card"
		next, err = sess.pass.ReviewCard(document, card, response)
	} else {
		next, err = sess.pass.ReviewNote(document, response)
	}
	if err != nil {
		code := ErrCodeReview
		if errors.Is(err, review.ErrUnknownDocument) || errors.Is(err, review.ErrUnknownCard) {
			code = ErrCodeNotFound
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "review", err)
	}

	result := ReviewResult{
		Document: document,
		Kind:     kind,
		ID:       card,
		Response: response.String(),
		Due:      next.Due.String(),
		Interval: next.Interval,
		Ease:     next.Ease,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s %s: next review %s (interval %d, ease %d)\n",
		result.Response, itemLabel(DueItem{Kind: kind, Document: document, ID: card}), result.Due, result.Interval, result.Ease)
	return nil
}
