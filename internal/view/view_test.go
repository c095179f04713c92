package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/nearby/internal/chat"
	"github.com/evcraddock/nearby/internal/property"
	"github.com/evcraddock/nearby/internal/review"
	"github.com/evcraddock/nearby/internal/user"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New("http://localhost:3000", "")
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	r.SetLocation(time.UTC)
	return r
}

func intPtr(v int) *int { return &v }

func numPtr(v float64) *property.Number {
	n := property.Number(v)
	return &n
}

func TestNewInvalidLocale(t *testing.T) {
	if _, err := New("", "not a locale!"); err == nil {
		t.Fatal("expected error for invalid locale")
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		locale   string
		price    property.Number
		expected string
	}{
		{"colombia millions", "es-CO", 1200000, "$1.200.000/mes"},
		{"colombia zero", "es-CO", 0, "$0/mes"},
		{"english", "en", 1200000, "$1,200,000/mes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New("", tt.locale)
			if err != nil {
				t.Fatal(err)
			}
			if got := r.Price(tt.price); got != tt.expected {
				t.Errorf("Price(%v) = %q, want %q", tt.price, got, tt.expected)
			}
		})
	}
}

func TestImageURL(t *testing.T) {
	r := newTestRenderer(t)
	tests := []struct {
		in, want string
	}{
		{"", PlaceholderImage},
		{"/uploads/a.jpg", "http://localhost:3000/uploads/a.jpg"},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
	}
	for _, tt := range tests {
		if got := r.ImageURL(tt.in); got != tt.want {
			t.Errorf("ImageURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPropertyGridEmpty(t *testing.T) {
	r := newTestRenderer(t)
	got := string(r.PropertyGrid(nil))
	if !strings.Contains(got, NoProperties) {
		t.Errorf("empty grid = %q, want no-results placeholder", got)
	}
	if strings.Contains(got, PropertiesFailed) {
		t.Error("empty grid should not show the error placeholder")
	}
}

func TestPropertyCardSuppressesMissingFacts(t *testing.T) {
	r := newTestRenderer(t)
	p := &property.Property{ID: 1, Title: "Apto", Address: "Calle 1", Price: 800000, PropertyType: property.Apartment, Bedrooms: intPtr(0)}

	got := string(r.PropertyCard(p))
	for _, class := range []string{"feature-bedrooms", "feature-bathrooms", "feature-area"} {
		if strings.Contains(got, class) {
			t.Errorf("card should not contain %s: %s", class, got)
		}
	}
	if !strings.Contains(got, "Apartamento") {
		t.Error("card should contain the type label")
	}
	if !strings.Contains(got, PlaceholderImage) {
		t.Error("card without images should use the placeholder")
	}
	if !strings.Contains(got, "Calle 1") {
		t.Error("card should fall back to the address for location")
	}
}

func TestPropertyCardShowsFacts(t *testing.T) {
	r := newTestRenderer(t)
	p := &property.Property{
		ID: 2, Title: "Casa", Neighborhood: "Laureles", PropertyType: property.House,
		Bedrooms: intPtr(3), Bathrooms: intPtr(2), AreaSqm: numPtr(85.5),
		Images: property.StringList{"/uploads/c.jpg"},
	}

	got := string(r.PropertyCard(p))
	for _, want := range []string{"feature-bedrooms\">3<", "feature-bathrooms\">2<", "85.5m²", "Laureles", "http://localhost:3000/uploads/c.jpg"} {
		if !strings.Contains(got, want) {
			t.Errorf("card missing %q: %s", want, got)
		}
	}
}

func TestPropertyCardEscapesTitle(t *testing.T) {
	r := newTestRenderer(t)
	got := string(r.PropertyCard(&property.Property{Title: "<script>x</script>"}))
	if strings.Contains(got, "<script>") {
		t.Errorf("title not escaped: %s", got)
	}
}

func TestRenderAcceptsBothListShapes(t *testing.T) {
	r := newTestRenderer(t)
	for _, raw := range []string{
		`{"id":1,"images":["/a.jpg","/b.jpg"],"amenities":["WiFi"]}`,
		`{"id":1,"images":"[\"/a.jpg\",\"/b.jpg\"]","amenities":"[\"WiFi\"]"}`,
	} {
		var p property.Property
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		got := string(r.PropertyDetail(&p, DetailOptions{}))
		if !strings.Contains(got, "carousel-container") {
			t.Errorf("two images should render a carousel: %s", raw)
		}
		if !strings.Contains(got, "WiFi") {
			t.Errorf("amenities missing: %s", raw)
		}
	}
}

func TestPropertyDetailSingleImage(t *testing.T) {
	r := newTestRenderer(t)
	p := &property.Property{ID: 4, Images: property.StringList{"/only.jpg"}}

	got := string(r.PropertyDetail(p, DetailOptions{}))
	if strings.Contains(got, "carousel") {
		t.Error("single image should not render a carousel")
	}
	if !strings.Contains(got, "http://localhost:3000/only.jpg") {
		t.Error("single image missing")
	}
	if !strings.Contains(got, NoDescription) || !strings.Contains(got, NotAvailable) {
		t.Error("missing description and phone should use defaults")
	}
	if !strings.Contains(got, string(Spinner)) {
		t.Error("reviews region should start with a spinner")
	}
}

func TestPropertyDetailCarouselIndicators(t *testing.T) {
	r := newTestRenderer(t)
	p := &property.Property{ID: 5, Images: property.StringList{"/1.jpg", "/2.jpg", "/3.jpg"}}

	got := string(r.PropertyDetail(p, DetailOptions{Slide: 2}))
	if n := strings.Count(got, `carousel-indicator active`); n != 1 {
		t.Fatalf("active indicators = %d, want 1", n)
	}
	if !strings.Contains(got, `carousel-indicator active" data-slide="2"`) {
		t.Errorf("indicator 2 should be active: %s", got)
	}
}

func TestPropertyDetailStudentActions(t *testing.T) {
	r := newTestRenderer(t)
	p := &property.Property{ID: 6, OwnerID: 9}

	student := string(r.PropertyDetail(p, DetailOptions{Viewer: &user.User{UserType: user.Student}}))
	if !strings.Contains(student, `data-action="chat"`) {
		t.Error("students should see the chat action")
	}

	for _, viewer := range []*user.User{nil, {UserType: user.Owner}} {
		got := string(r.PropertyDetail(p, DetailOptions{Viewer: viewer}))
		if strings.Contains(got, "student-actions") {
			t.Errorf("viewer %+v should not see student actions", viewer)
		}
	}
}

func TestReviewsSection(t *testing.T) {
	r := newTestRenderer(t)

	if got := string(r.ReviewsSection(&review.Summary{})); !strings.Contains(got, NoReviews) {
		t.Errorf("empty reviews = %q", got)
	}

	sum := &review.Summary{
		Reviews: []*review.Review{
			{UserName: "Ana", Rating: 4, Comment: "Muy bien", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
			{UserName: "Luis", Rating: 3},
		},
		AverageRating: 3.5,
		TotalReviews:  2,
	}
	got := string(r.ReviewsSection(sum))
	for _, want := range []string{"★★★★☆", "3.5 de 5 (2 reseñas)", "Ana", "Muy bien", "1/5/2024", "★★★☆☆"} {
		if !strings.Contains(got, want) {
			t.Errorf("reviews missing %q: %s", want, got)
		}
	}
	if strings.Count(got, "review-comment") != 1 {
		t.Error("reviews without comment should omit the comment block")
	}
}

func TestRoomList(t *testing.T) {
	r := newTestRenderer(t)
	rooms := []*chat.Room{{ID: 1, PropertyTitle: "Apto", OwnerName: "Olga", StudentName: "Sam"}}

	if got := string(r.RoomList(rooms, user.Student)); !strings.Contains(got, "Olga") || !strings.Contains(got, NoMessages) {
		t.Errorf("student view = %s", got)
	}
	if got := string(r.RoomList(rooms, user.Owner)); !strings.Contains(got, "Sam") {
		t.Errorf("owner view = %s", got)
	}
	if got := string(r.RoomList(nil, user.Owner)); !strings.Contains(got, NoRooms) {
		t.Errorf("empty = %s", got)
	}
}

func TestChatMessage(t *testing.T) {
	r := newTestRenderer(t)
	m := &chat.Message{SenderName: "Olga", Message: "hola", CreatedAt: time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC)}

	received := string(r.ChatMessage(m, false))
	if !strings.Contains(received, `class="sender"`) || !strings.Contains(received, "09:05") {
		t.Errorf("received = %s", received)
	}
	sent := string(r.ChatMessage(m, true))
	if strings.Contains(sent, `class="sender"`) {
		t.Errorf("sent messages should not show the sender: %s", sent)
	}
}

func TestWritePropertyTable(t *testing.T) {
	r := newTestRenderer(t)

	var empty bytes.Buffer
	if err := r.WritePropertyTable(&empty, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(empty.String(), NoProperties) {
		t.Errorf("empty table = %q", empty.String())
	}

	var buf bytes.Buffer
	props := []*property.Property{{ID: 1, Title: "Apto", Price: 900000, PropertyType: property.Studio, Bedrooms: intPtr(1)}}
	if err := r.WritePropertyTable(&buf, props); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Apto", "Estudio", "$900.000/mes", "Total: 1 propiedades"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWritePropertyDetail(t *testing.T) {
	r := newTestRenderer(t)
	p := &property.Property{ID: 3, Title: "Casa", Images: property.StringList{"/a.jpg", "/b.jpg"}}

	var buf bytes.Buffer
	if err := r.WritePropertyDetail(&buf, p, &user.User{UserType: user.Student}, 1); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "● http://localhost:3000/b.jpg") {
		t.Errorf("active slide not marked:\n%s", out)
	}
	if strings.Contains(out, "Habitaciones") {
		t.Error("missing bedrooms should be omitted")
	}
	if !strings.Contains(out, "nearby contact 3") {
		t.Error("students should see action hints")
	}
}

func TestMessageLine(t *testing.T) {
	r := newTestRenderer(t)
	m := &chat.Message{SenderName: "Olga", Message: "hola", CreatedAt: time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)}
	if got := r.MessageLine(m, false); got != "[18:30] Olga: hola" {
		t.Errorf("MessageLine = %q", got)
	}
	if got := r.MessageLine(m, true); got != "[18:30] Tú: hola" {
		t.Errorf("MessageLine sent = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hola", 10, "hola"},
		{"exact", "hola", 4, "hola"},
		{"long", "habitación amplia", 8, "habit..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.max); got != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}
