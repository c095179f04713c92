package app

import (
	"context"
	"html/template"
	"log/slog"

	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/property"
	"github.com/evcraddock/nearby/internal/review"
	"github.com/evcraddock/nearby/internal/view"
)

// ShowSection switches the visible section and loads its data.
func (a *App) ShowSection(ctx context.Context, s page.Section) error {
	a.switchSection(s)

	var err error
	switch s {
	case page.Properties:
		_, err = a.LoadProperties(ctx, property.Filters{})
	case page.Favorites:
		_, err = a.LoadFavorites(ctx)
	case page.MyProperties:
		_, err = a.LoadMyProperties(ctx)
	case page.Chat:
		_, err = a.ListRooms(ctx)
	}
	return err
}

func (a *App) switchSection(s page.Section) {
	a.page.ShowSection(s)
	a.session.SetSection(s)
}

// LoadProperties fetches listings matching f into the properties grid.
func (a *App) LoadProperties(ctx context.Context, f property.Filters) ([]*property.Property, error) {
	a.page.SetGrid(page.PropertiesGrid, loadingGrid())
	props, err := a.client.ListProperties(ctx, f)
	if err != nil {
		a.page.SetGrid(page.PropertiesGrid, a.errorGrid(view.PropertiesFailed))
		return nil, err
	}
	a.page.SetGrid(page.PropertiesGrid, a.propertyGrid(props))
	return props, nil
}

// ApplyFilters loads listings for the filter bar. priceRange is "min-max".
func (a *App) ApplyFilters(ctx context.Context, f property.Filters, priceRange string) ([]*property.Property, error) {
	f, err := f.WithPriceRange(priceRange)
	if err != nil {
		return nil, a.invalid(err.Error())
	}
	return a.LoadProperties(ctx, f)
}

// HeroSearch shows the listings section filtered by a free-text term.
func (a *App) HeroSearch(ctx context.Context, term string) ([]*property.Property, error) {
	a.switchSection(page.Properties)
	return a.LoadProperties(ctx, property.Filters{Search: term})
}

// LoadFavorites fetches the student's saved listings into the favorites grid.
func (a *App) LoadFavorites(ctx context.Context) ([]*property.Property, error) {
	a.page.SetGrid(page.FavoritesGrid, loadingGrid())
	props, err := a.client.Favorites(ctx)
	if err != nil {
		a.page.SetGrid(page.FavoritesGrid, a.errorGrid(view.FavoritesFailed))
		return nil, err
	}
	a.page.SetGrid(page.FavoritesGrid, a.propertyGrid(props))
	return props, nil
}

// LoadMyProperties fetches the owner's listings into their grid.
func (a *App) LoadMyProperties(ctx context.Context) ([]*property.Property, error) {
	a.page.SetGrid(page.MyPropertiesGrid, loadingGrid())
	props, err := a.client.MyProperties(ctx)
	if err != nil {
		a.page.SetGrid(page.MyPropertiesGrid, a.errorGrid(view.PropertiesFailed))
		return nil, err
	}
	a.page.SetGrid(page.MyPropertiesGrid, a.propertyGrid(props))
	return props, nil
}

// ToggleFavorite saves a listing for the logged-in student.
func (a *App) ToggleFavorite(ctx context.Context, propertyID int64) error {
	if err := a.requireLogin(MsgFavoriteLogin, false); err != nil {
		return err
	}
	if err := a.client.AddFavorite(ctx, propertyID); err != nil {
		return err
	}
	a.notify(notify.Success, MsgFavoriteAdded)
	return nil
}

// CreateProperty publishes a listing for the logged-in owner and shows
// their listings.
func (a *App) CreateProperty(ctx context.Context, form property.CreateForm) (*property.Property, error) {
	if !a.session.User().IsOwner() {
		a.notify(notify.Error, MsgOwnersOnly)
		return nil, notify.Reported(ErrOwnerRequired)
	}
	if err := form.Validate(); err != nil {
		return nil, a.invalid(err.Error())
	}

	p, err := a.client.CreateProperty(ctx, form)
	if err != nil {
		return nil, err
	}
	a.notify(notify.Success, MsgPublished)
	a.page.CloseModal(page.CreatePropertyModal)
	if err := a.ShowSection(ctx, page.MyProperties); err != nil {
		slog.Debug("loading my properties after publish", "error", err)
	}
	return p, nil
}

// ShowPropertyDetail opens the detail dialog for a listing and loads its
// reviews. A response that arrives after a newer request for another
// listing is discarded with ErrSuperseded.
func (a *App) ShowPropertyDetail(ctx context.Context, id int64) (*property.Property, error) {
	token := a.supersede.Begin(detailTarget)
	p, err := a.client.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.supersede.IsCurrent(detailTarget, token) {
		return nil, ErrSuperseded
	}

	a.mu.Lock()
	a.detail = &openDetail{prop: p, carousel: view.NewCarousel(len(p.Images))}
	a.mu.Unlock()

	a.renderDetail()
	a.page.OpenModal(page.PropertyDetailModal)
	a.page.SetGrid(page.ReviewsSection, loadingGrid())
	a.refreshReviews(ctx, id)
	return p, nil
}

// CloseDetail closes the detail dialog.
func (a *App) CloseDetail() {
	a.mu.Lock()
	a.detail = nil
	a.mu.Unlock()
	a.page.CloseModal(page.PropertyDetailModal)
}

// MoveCarousel advances the open listing's carousel by delta slides.
func (a *App) MoveCarousel(delta int) int {
	return a.withCarousel(func(c *view.Carousel) { c.Move(delta) })
}

// GoToSlide jumps the open listing's carousel to slide i.
func (a *App) GoToSlide(i int) int {
	return a.withCarousel(func(c *view.Carousel) { c.GoTo(i) })
}

func (a *App) withCarousel(fn func(*view.Carousel)) int {
	a.mu.Lock()
	d := a.detail
	if d == nil {
		a.mu.Unlock()
		return 0
	}
	fn(d.carousel)
	idx := d.carousel.Index()
	a.mu.Unlock()

	a.renderDetail()
	return idx
}

// OpenDetail returns the listing in the detail dialog and its active slide.
func (a *App) OpenDetail() (*property.Property, int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detail == nil {
		return nil, 0, false
	}
	return a.detail.prop, a.detail.carousel.Index(), true
}

// DetailReviews returns the review summary loaded for the open listing, nil
// until it arrives or when loading failed.
func (a *App) DetailReviews() *review.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detail == nil {
		return nil
	}
	return a.detail.summary
}

func (a *App) renderDetail() {
	a.mu.Lock()
	d := a.detail
	if d == nil {
		a.mu.Unlock()
		return
	}
	p, slide, reviews := d.prop, d.carousel.Index(), d.reviews
	a.mu.Unlock()

	markup := a.render.PropertyDetail(p, view.DetailOptions{
		Viewer:  a.session.User(),
		Slide:   slide,
		Reviews: template.HTML(reviews),
	})
	a.page.SetDetail(p.Title, string(markup))
}

func loadingGrid() page.Grid {
	return page.Grid{State: page.GridLoading, Markup: string(view.Spinner)}
}

func (a *App) errorGrid(text string) page.Grid {
	return page.Grid{State: page.GridError, Markup: string(a.render.Placeholder(text))}
}

func (a *App) propertyGrid(props []*property.Property) page.Grid {
	g := page.Grid{State: page.GridContent, Markup: string(a.render.PropertyGrid(props)), Count: len(props)}
	if len(props) == 0 {
		g.State = page.GridEmpty
	}
	return g
}
