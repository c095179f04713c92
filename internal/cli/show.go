package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/nearby/internal/property"
	"github.com/evcraddock/nearby/internal/review"
	"github.com/evcraddock/nearby/internal/view"
)

func newShowCmd() *cobra.Command {
	var slide int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show property details",
		Long:  "Show full details for a property, including its images, owner contact and reviews.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], slide)
		},
	}

	cmd.Flags().IntVar(&slide, "slide", 1, "image to mark as shown (1-based)")

	return cmd
}

// detailOutput is the JSON form of the show command.
type detailOutput struct {
	Property *property.Property `json:"property"`
	Slide    int                `json:"slide"`
	Reviews  *review.Summary    `json:"reviews,omitempty"`
}

func runShow(cmd *cobra.Command, arg string, slide int) error {
	id, err := parseID("property", arg)
	if err != nil {
		return err
	}

	e, err := cliEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	p, err := e.app.ShowPropertyDetail(cmd.Context(), id)
	if err != nil {
		return err
	}
	idx := e.app.GoToSlide(slide - 1)
	reviews := e.app.DetailReviews()

	w := cmd.OutOrStdout()
	switch {
	case isJSON():
		return printJSON(w, detailOutput{Property: p, Slide: idx + 1, Reviews: reviews})
	case isHTML():
		_, content := e.app.Page().Detail()
		return printMarkup(w, content)
	}

	r := e.app.Renderer()
	if err := r.WritePropertyDetail(w, p, e.app.User(), idx); err != nil {
		return err
	}
	if reviews == nil {
		_, err := fmt.Fprintln(w, "\n"+view.ReviewsFailed)
		return err
	}
	fmt.Fprintln(w)
	return r.WriteReviews(w, reviews)
}
