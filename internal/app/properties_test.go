package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/property"
	"github.com/evcraddock/nearby/internal/view"
)

func TestLoadPropertiesEmptyShowsNoResults(t *testing.T) {
	env := newTestEnv(t)
	env.api.JSON("GET /api/properties", http.StatusOK, map[string]interface{}{"properties": []interface{}{}})

	props, err := env.app.LoadProperties(context.Background(), property.Filters{PropertyType: "apartment", MinPrice: "500000"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(props) != 0 {
		t.Errorf("properties = %d, want 0", len(props))
	}

	env.api.expectRequests(t, "GET /api/properties?property_type=apartment&min_price=500000")
	g := env.page.Grid(page.PropertiesGrid)
	if g.State != page.GridEmpty {
		t.Errorf("state = %v, want %v", g.State, page.GridEmpty)
	}
	if !strings.Contains(g.Markup, view.NoProperties) || strings.Contains(g.Markup, view.PropertiesFailed) {
		t.Errorf("grid should show only the empty placeholder:\n%s", g.Markup)
	}
	if got := env.rec.All(); len(got) != 0 {
		t.Errorf("notifications = %+v, want none", got)
	}
}

func TestLoadPropertiesRendersCards(t *testing.T) {
	env := newTestEnv(t)
	env.api.JSON("GET /api/properties", http.StatusOK, map[string]interface{}{"properties": []map[string]interface{}{
		{"id": 1, "title": "Apto centro", "price": 1200000, "property_type": "apartment", "images": `["/uploads/1.jpg"]`},
		{"id": 2, "title": "Casa", "price": "900000", "property_type": "house", "images": nil},
	}})

	props, err := env.app.LoadProperties(context.Background(), property.Filters{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(props) != 2 {
		t.Fatalf("properties = %d, want 2", len(props))
	}

	g := env.page.Grid(page.PropertiesGrid)
	if g.State != page.GridContent || g.Count != 2 {
		t.Errorf("grid state = %v count = %d", g.State, g.Count)
	}
	for _, want := range []string{"$1.200.000/mes", env.api.URL + "/uploads/1.jpg", view.PlaceholderImage} {
		if !strings.Contains(g.Markup, want) {
			t.Errorf("grid missing %q", want)
		}
	}
}

func TestLoadPropertiesErrorShowsErrorPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	env.api.JSON("GET /api/properties", http.StatusInternalServerError, map[string]string{"error": "db down"})

	_, err := env.app.LoadProperties(context.Background(), property.Filters{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !notify.WasReported(err) {
		t.Error("error should be marked as reported")
	}

	g := env.page.Grid(page.PropertiesGrid)
	if g.State != page.GridError || !strings.Contains(g.Markup, view.PropertiesFailed) {
		t.Errorf("grid = %v:\n%s", g.State, g.Markup)
	}
	if n := env.rec.Count(notify.Error); n != 1 {
		t.Errorf("errors = %d, want 1", n)
	}
}

func TestApplyFiltersPriceRange(t *testing.T) {
	env := newTestEnv(t)
	env.api.JSON("GET /api/properties", http.StatusOK, map[string]interface{}{"properties": []interface{}{}})

	if _, err := env.app.ApplyFilters(context.Background(), property.Filters{Bedrooms: "2", Search: "laureles"}, "500000-1000000"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	env.api.expectRequests(t, "GET /api/properties?bedrooms=2&min_price=500000&max_price=1000000&search=laureles")

	if _, err := env.app.ApplyFilters(context.Background(), property.Filters{}, "cheap"); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	if n := len(env.api.Requests()); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestHeroSearch(t *testing.T) {
	env := newTestEnv(t)
	env.api.JSON("GET /api/properties", http.StatusOK, map[string]interface{}{"properties": []interface{}{}})

	if _, err := env.app.HeroSearch(context.Background(), "cerca U"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := env.page.Section(); got != page.Properties {
		t.Errorf("section = %v, want %v", got, page.Properties)
	}
	env.api.expectRequests(t, "GET /api/properties?search=cerca+U")
}

func TestShowSectionLoadsData(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, owner)
	env.api.JSON("GET /api/users/favorites", http.StatusInternalServerError, map[string]string{})
	env.api.JSON("GET /api/properties/owner/my-properties", http.StatusOK, map[string]interface{}{"properties": []interface{}{}})
	env.api.JSON("GET /api/chat/rooms", http.StatusOK, map[string]interface{}{"rooms": []interface{}{}})
	ctx := context.Background()

	if err := env.app.ShowSection(ctx, page.Favorites); err == nil {
		t.Error("favorites: expected error")
	}
	if markup := env.page.Grid(page.FavoritesGrid).Markup; !strings.Contains(markup, view.FavoritesFailed) {
		t.Errorf("favorites grid:\n%s", markup)
	}

	if err := env.app.ShowSection(ctx, page.MyProperties); err != nil {
		t.Fatalf("my properties: %v", err)
	}
	if got := env.page.Grid(page.MyPropertiesGrid).State; got != page.GridEmpty {
		t.Errorf("my properties state = %v, want %v", got, page.GridEmpty)
	}

	if err := env.app.ShowSection(ctx, page.Chat); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if markup := env.page.Grid(page.ChatRoomsList).Markup; !strings.Contains(markup, view.NoRooms) {
		t.Errorf("rooms list:\n%s", markup)
	}

	if err := env.app.ShowSection(ctx, page.Home); err != nil {
		t.Fatalf("home: %v", err)
	}
	if got := env.page.Section(); got != page.Home {
		t.Errorf("section = %v, want %v", got, page.Home)
	}
	if n := len(env.api.Requests()); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestToggleFavoriteRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	if err := env.app.ToggleFavorite(context.Background(), 4); !errors.Is(err, ErrLoginRequired) {
		t.Errorf("err = %v, want ErrLoginRequired", err)
	}
	env.api.expectRequests(t)
	want := notify.Notification{Kind: notify.Warning, Message: MsgFavoriteLogin}
	if last, _ := env.rec.Last(); last != want {
		t.Errorf("last notification = %+v, want %+v", last, want)
	}
}

func TestToggleFavorite(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, student)
	env.api.JSON("POST /api/users/favorites", http.StatusCreated, map[string]string{"message": "ok"})

	if err := env.app.ToggleFavorite(context.Background(), 4); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if last, _ := env.rec.Last(); last.Message != MsgFavoriteAdded {
		t.Errorf("last notification = %q, want %q", last.Message, MsgFavoriteAdded)
	}
}

func TestCreatePropertyOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, student)

	if _, err := env.app.CreateProperty(context.Background(), property.CreateForm{Title: "x"}); !errors.Is(err, ErrOwnerRequired) {
		t.Errorf("err = %v, want ErrOwnerRequired", err)
	}
	env.api.expectRequests(t)
	want := notify.Notification{Kind: notify.Error, Message: MsgOwnersOnly}
	if last, _ := env.rec.Last(); last != want {
		t.Errorf("last notification = %+v, want %+v", last, want)
	}
}

func TestCreatePropertyPublishes(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, owner)
	env.api.Mux.HandleFunc("POST /api/properties", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("amenities"); got != `["WiFi","Lavadora"]` {
			t.Errorf("amenities = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"property": map[string]interface{}{"id": 10, "title": "Estudio"}})
	})
	env.api.JSON("GET /api/properties/owner/my-properties", http.StatusOK, map[string]interface{}{"properties": []map[string]interface{}{{"id": 10, "title": "Estudio"}}})
	env.page.OpenModal(page.CreatePropertyModal)

	p, err := env.app.CreateProperty(context.Background(), property.CreateForm{
		Title: "Estudio", Address: "Cra 70", Price: "700000", PropertyType: "studio", Amenities: "WiFi, Lavadora",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 10 {
		t.Errorf("ID = %d, want 10", p.ID)
	}
	if env.page.ModalOpen(page.CreatePropertyModal) {
		t.Error("create modal still open")
	}
	if got := env.page.Section(); got != page.MyProperties {
		t.Errorf("section = %v, want %v", got, page.MyProperties)
	}
	if n := env.page.Grid(page.MyPropertiesGrid).Count; n != 1 {
		t.Errorf("my properties = %d, want 1", n)
	}
}

func TestCreatePropertyValidation(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, owner)

	if _, err := env.app.CreateProperty(context.Background(), property.CreateForm{Title: "Sin dirección"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	env.api.expectRequests(t)
}

func detailHandler(env *testEnv) {
	env.api.Mux.HandleFunc("GET /api/properties/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		n, _ := strconv.Atoi(id)
		writeJSON(w, http.StatusOK, map[string]interface{}{"property": map[string]interface{}{
			"id": n, "title": "Propiedad " + id, "images": []string{"/a.jpg", "/b.jpg", "/c.jpg"},
		}})
	})
	env.api.JSON("GET /api/reviews/property/{id}", http.StatusOK, map[string]interface{}{
		"reviews": []map[string]interface{}{{"user_name": "Ana", "rating": 5, "comment": "Excelente"}}, "average_rating": 5, "total_reviews": 1,
	})
}

func TestShowPropertyDetail(t *testing.T) {
	env := newTestEnv(t)
	detailHandler(env)

	p, err := env.app.ShowPropertyDetail(context.Background(), 3)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if p.ID != 3 {
		t.Errorf("ID = %d, want 3", p.ID)
	}
	if !env.page.ModalOpen(page.PropertyDetailModal) {
		t.Error("detail modal not open")
	}

	title, content := env.page.Detail()
	if title != "Propiedad 3" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(content, "carousel-container") || !strings.Contains(content, "Excelente") {
		t.Errorf("detail content missing carousel or reviews:\n%s", content)
	}

	g := env.page.Grid(page.ReviewsSection)
	if g.State != page.GridContent || g.Count != 1 {
		t.Errorf("reviews state = %v count = %d", g.State, g.Count)
	}
}

func TestCarouselNavigation(t *testing.T) {
	env := newTestEnv(t)
	detailHandler(env)
	if _, err := env.app.ShowPropertyDetail(context.Background(), 3); err != nil {
		t.Fatalf("detail: %v", err)
	}

	steps := []struct {
		name string
		got  int
		want int
	}{
		{"back from first wraps", env.app.MoveCarousel(-1), 2},
		{"forward from last wraps", env.app.MoveCarousel(1), 0},
		{"go to slide", env.app.GoToSlide(1), 1},
		{"out of range ignored", env.app.GoToSlide(7), 1},
	}
	for _, s := range steps {
		if s.got != s.want {
			t.Errorf("%s: index = %d, want %d", s.name, s.got, s.want)
		}
	}

	_, content := env.page.Detail()
	if n := strings.Count(content, "carousel-indicator active"); n != 1 {
		t.Errorf("active indicators = %d, want 1", n)
	}
	if !strings.Contains(content, `carousel-indicator active" data-slide="1"`) {
		t.Error("slide 1 indicator not active")
	}

	env.app.CloseDetail()
	if env.page.ModalOpen(page.PropertyDetailModal) {
		t.Error("detail modal still open")
	}
	if got := env.app.MoveCarousel(1); got != 0 {
		t.Errorf("move without detail = %d, want 0", got)
	}
}

func TestShowPropertyDetailDiscardsSupersededResponse(t *testing.T) {
	env := newTestEnv(t)
	release := make(chan struct{})
	arrived := make(chan struct{})
	env.api.Mux.HandleFunc("GET /api/properties/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "1" {
			close(arrived)
			<-release
		}
		n, _ := strconv.Atoi(id)
		writeJSON(w, http.StatusOK, map[string]interface{}{"property": map[string]interface{}{"id": n, "title": "Propiedad " + id}})
	})
	env.api.JSON("GET /api/reviews/property/{id}", http.StatusOK, map[string]interface{}{"reviews": []interface{}{}})

	slow := make(chan error, 1)
	go func() {
		_, err := env.app.ShowPropertyDetail(context.Background(), 1)
		slow <- err
	}()

	select {
	case <-arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never arrived")
	}
	if _, err := env.app.ShowPropertyDetail(context.Background(), 2); err != nil {
		t.Fatalf("second detail: %v", err)
	}
	close(release)

	select {
	case err := <-slow:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("first detail err = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first request never finished")
	}

	if title, _ := env.page.Detail(); title != "Propiedad 2" {
		t.Errorf("title = %q, want %q", title, "Propiedad 2")
	}
	p, _, ok := env.app.OpenDetail()
	if !ok || p.ID != 2 {
		t.Errorf("open detail = %+v, %v; want property 2", p, ok)
	}
	if reqs := env.api.Requests(); len(reqs) == 0 || reqs[0] != "GET /api/properties/1" {
		t.Errorf("first request = %v, want GET /api/properties/1", reqs)
	}
}
