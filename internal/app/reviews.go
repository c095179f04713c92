package app

import (
	"context"
	"html/template"

	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/review"
	"github.com/evcraddock/nearby/internal/view"
)

// OpenReviewModal opens the review dialog for a listing with a cleared star
// picker. Guests are prompted to log in.
func (a *App) OpenReviewModal(propertyID int64) error {
	if err := a.requireLogin(MsgReviewLogin, true); err != nil {
		return err
	}
	a.mu.Lock()
	a.reviewTarget = propertyID
	a.picker.Reset()
	a.mu.Unlock()
	a.page.OpenModal(page.ReviewModal)
	return nil
}

// HoverStar previews a rating in the picker.
func (a *App) HoverStar(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.picker.Hover(n)
}

// LeaveStars ends the preview, restoring the committed rating.
func (a *App) LeaveStars() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.picker.Leave()
}

// ClickStar commits a rating in the picker.
func (a *App) ClickStar(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.picker.Click(n)
}

// Stars returns the picker's displayed and committed ratings.
func (a *App) Stars() (display, committed int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.picker.Display(), a.picker.Value()
}

// SubmitPickedReview submits the review dialog: the listing it was opened
// for and the rating committed in the picker.
func (a *App) SubmitPickedReview(ctx context.Context, comment string) error {
	a.mu.Lock()
	id, rating := a.reviewTarget, a.picker.Value()
	a.mu.Unlock()
	return a.SubmitReview(ctx, id, rating, comment)
}

// SubmitReview posts a review. A missing rating is rejected before any
// request is made. On success the open detail view's reviews are reloaded.
func (a *App) SubmitReview(ctx context.Context, propertyID int64, rating int, comment string) error {
	sub := review.Submission{PropertyID: propertyID, Rating: rating, Comment: comment}
	if !review.ValidRating(rating) {
		return a.invalid(MsgSelectRating)
	}
	if err := sub.Validate(); err != nil {
		return a.invalid(err.Error())
	}

	if err := a.client.SubmitReview(ctx, sub); err != nil {
		return err
	}
	a.notify(notify.Success, MsgReviewPublished)
	a.page.CloseModal(page.ReviewModal)

	a.mu.Lock()
	a.picker.Reset()
	a.reviewTarget = 0
	open := a.detail != nil && a.detail.prop.ID == propertyID
	a.mu.Unlock()

	if open && a.page.ModalOpen(page.PropertyDetailModal) {
		a.refreshReviews(ctx, propertyID)
	}
	return nil
}

// LoadPropertyReviews fetches a listing's reviews and renders the summary.
// On failure the markup is the error placeholder.
func (a *App) LoadPropertyReviews(ctx context.Context, propertyID int64) (template.HTML, *review.Summary, error) {
	sum, err := a.client.PropertyReviews(ctx, propertyID)
	if err != nil {
		return a.render.Placeholder(view.ReviewsFailed), nil, err
	}
	return a.render.ReviewsSection(sum), sum, nil
}

// refreshReviews loads reviews into the open detail view, dropping the
// result if a newer reviews request started meanwhile.
func (a *App) refreshReviews(ctx context.Context, propertyID int64) {
	token := a.supersede.Begin(reviewsTarget)
	markup, sum, err := a.LoadPropertyReviews(ctx, propertyID)
	if !a.supersede.IsCurrent(reviewsTarget, token) {
		return
	}

	g := page.Grid{State: page.GridContent, Markup: string(markup)}
	switch {
	case err != nil:
		g.State = page.GridError
	case len(sum.Reviews) == 0:
		g.State = page.GridEmpty
	default:
		g.Count = len(sum.Reviews)
	}
	a.page.SetGrid(page.ReviewsSection, g)

	a.mu.Lock()
	if a.detail != nil && a.detail.prop.ID == propertyID {
		a.detail.reviews = string(markup)
		a.detail.summary = sum
	}
	a.mu.Unlock()
	a.renderDetail()
}
