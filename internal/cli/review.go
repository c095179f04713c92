package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/nearby/internal/review"
)

func newReviewCmd() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "review <property-id> <1-5>",
		Short: "Review a property",
		Long:  "Leave a rating from 1 to 5 stars, with an optional comment, for a property.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, args[0], args[1], comment)
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "review text")

	return cmd
}

func runReview(cmd *cobra.Command, idArg, ratingArg, comment string) error {
	id, err := parseID("property", idArg)
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(ratingArg)
	if err != nil {
		return fmt.Errorf("invalid rating: %s (must be 1-%d)", ratingArg, review.MaxRating)
	}

	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.app.SubmitReview(cmd.Context(), id, rating, comment); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), review.Submission{PropertyID: id, Rating: rating, Comment: comment})
	}
	return nil
}

func newReviewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reviews <property-id>",
		Short: "Show the reviews of a property",
		Args:  cobra.ExactArgs(1),
		RunE:  runReviews,
	}
}

func runReviews(cmd *cobra.Command, args []string) error {
	id, err := parseID("property", args[0])
	if err != nil {
		return err
	}

	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	markup, sum, err := e.app.LoadPropertyReviews(cmd.Context(), id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch {
	case isJSON():
		return printJSON(w, sum)
	case isHTML():
		return printMarkup(w, string(markup))
	default:
		return e.app.Renderer().WriteReviews(w, sum)
	}
}
