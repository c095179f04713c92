package view

import (
	"html/template"
	"strconv"

	"github.com/evcraddock/nearby/internal/chat"
	"github.com/evcraddock/nearby/internal/property"
	"github.com/evcraddock/nearby/internal/review"
	"github.com/evcraddock/nearby/internal/user"
)

// Placeholder texts shown in place of a grid or list.
const (
	NoProperties     = "No se encontraron propiedades"
	PropertiesFailed = "Error al cargar propiedades"
	FavoritesFailed  = "Error al cargar favoritos"
	NoRooms          = "No hay conversaciones"
	NoMessages       = "Sin mensajes"
	NoReviews        = "No hay reseñas aún"
	ReviewsFailed    = "Error al cargar reseñas"
	NoDescription    = "Sin descripción"
	NotAvailable     = "No disponible"
)

// Spinner is the loading indicator markup.
const Spinner template.HTML = `<div class="spinner"></div>`

const templates = `
{{define "placeholder"}}<p class="placeholder">{{.}}</p>{{end}}

{{define "card"}}<div class="property-card" data-property-id="{{.ID}}">
<img src="{{.Image}}" alt="{{.Title}}" class="property-image">
<div class="property-info">
<h3 class="property-title">{{.Title}}</h3>
<p class="property-location">{{.Location}}</p>
<div class="property-features">
<span class="feature-badge feature-type">{{.TypeLabel}}</span>
{{- if .Bedrooms}}<span class="feature-badge feature-bedrooms">{{.Bedrooms}}</span>{{end}}
{{- if .Bathrooms}}<span class="feature-badge feature-bathrooms">{{.Bathrooms}}</span>{{end}}
{{- if .Area}}<span class="feature-badge feature-area">{{.Area}}</span>{{end}}
</div>
<p class="property-price">{{.Price}}</p>
</div>
</div>{{end}}

{{define "grid"}}{{range .}}{{template "card" .}}{{end}}{{end}}

{{define "detail"}}<div class="property-detail" data-property-id="{{.ID}}">
{{- if .Carousel}}
<div class="image-carousel">
<div class="carousel-container" id="carousel-{{.ID}}" data-index="{{.Slide}}">
{{- range $i, $img := .Images}}<div class="carousel-slide{{if eq $i $.Slide}} active{{end}}"><img src="{{$img}}"></div>{{end}}
</div>
<button class="carousel-btn prev" data-move="-1">❮</button>
<button class="carousel-btn next" data-move="1">❯</button>
<div class="carousel-indicators">
{{- range $i, $on := .Indicators}}<div class="carousel-indicator{{if $on}} active{{end}}" data-slide="{{$i}}"></div>{{end}}
</div>
</div>
{{- else}}
<img src="{{.Cover}}" class="property-detail-image">
{{- end}}
<div class="property-details-column">
<h3>{{.Title}}</h3>
<p class="property-address">{{.Address}}</p>
<h2 class="property-price">{{.Price}}</h2>
<div class="property-facts">
<div class="fact"><div class="fact-label">Tipo</div><div class="fact-value">{{.TypeLabel}}</div></div>
{{- if .Bedrooms}}<div class="fact"><div class="fact-label">Habitaciones</div><div class="fact-value">{{.Bedrooms}}</div></div>{{end}}
{{- if .Bathrooms}}<div class="fact"><div class="fact-label">Baños</div><div class="fact-value">{{.Bathrooms}}</div></div>{{end}}
{{- if .Area}}<div class="fact"><div class="fact-label">Área</div><div class="fact-value">{{.Area}}</div></div>{{end}}
</div>
<h4>Descripción</h4>
<p class="property-description">{{.Description}}</p>
{{- if .Amenities}}
<h4>Amenidades</h4>
<div class="amenities">{{range .Amenities}}<span class="feature-badge">{{.}}</span>{{end}}</div>
{{- end}}
<h4>Contacto</h4>
<div class="contact">
<p><strong>Propietario:</strong> {{.OwnerName}}</p>
<p><strong>Teléfono:</strong> {{.OwnerPhone}}</p>
<p><strong>Email:</strong> {{.OwnerEmail}}</p>
</div>
</div>
{{- if .StudentActions}}
<div class="student-actions">
<button class="btn btn-primary" data-action="favorite" data-property-id="{{.ID}}">Guardar</button>
<button class="btn btn-secondary" data-action="chat" data-property-id="{{.ID}}" data-owner-id="{{.OwnerID}}">Chatear</button>
</div>
<button class="btn btn-outline" data-action="review" data-property-id="{{.ID}}">Dejar Reseña</button>
{{- end}}
<div id="reviewsSection">{{.Reviews}}</div>
</div>{{end}}

{{define "reviews"}}<div class="reviews-summary">
<h4>Calificación Promedio</h4>
<div class="stars">{{.Stars}}</div>
<p>{{.Average}} de 5 ({{.Total}} reseñas)</p>
</div>
<h4>Reseñas</h4>
{{- range .Reviews}}
<div class="review-card">
<div class="review-header">
<div>
<div class="review-author">{{.Author}}</div>
<div class="review-rating">{{.Stars}}</div>
</div>
<div class="review-date">{{.Date}}</div>
</div>
{{- if .Comment}}
<div class="review-comment">{{.Comment}}</div>
{{- end}}
</div>
{{- end}}{{end}}

{{define "rooms"}}{{range .}}<div class="chat-room-item" data-room-id="{{.ID}}">
<h5>{{.Title}}</h5>
<p><strong>{{.Other}}</strong></p>
<p>{{.Preview}}</p>
</div>{{end}}{{end}}

{{define "message"}}<div class="message {{if .Sent}}sent{{else}}received{{end}}">
{{- if not .Sent}}<div class="sender">{{.Sender}}</div>{{end}}
<div class="message-text">{{.Text}}</div>
<div class="timestamp">{{.Time}}</div>
</div>{{end}}
`

type cardData struct {
	ID        int64
	Title     string
	Location  string
	Image     string
	TypeLabel string
	Bedrooms  string
	Bathrooms string
	Area      string
	Price     string
}

func (r *Renderer) card(p *property.Property) cardData {
	d := cardData{
		ID:        p.ID,
		Title:     p.Title,
		Location:  p.Location(),
		Image:     r.CoverImage(p),
		TypeLabel: p.PropertyType.Label(),
		Price:     r.Price(p.Price),
	}
	d.Bedrooms, d.Bathrooms, d.Area = facts(p)
	return d
}

// facts returns the optional bedroom, bathroom and area texts; a missing or
// zero value yields an empty string so its fragment is left out.
func facts(p *property.Property) (beds, baths, area string) {
	if p.HasBedrooms() {
		beds = strconv.Itoa(*p.Bedrooms)
	}
	if p.HasBathrooms() {
		baths = strconv.Itoa(*p.Bathrooms)
	}
	if p.HasArea() {
		area = formatArea(p.AreaSqm)
	}
	return beds, baths, area
}

// Placeholder renders a centered notice such as an empty or failed grid.
func (r *Renderer) Placeholder(text string) template.HTML {
	return render(r, "placeholder", text)
}

// PropertyCard renders one listing card.
func (r *Renderer) PropertyCard(p *property.Property) template.HTML {
	return render(r, "card", r.card(p))
}

// PropertyGrid renders a grid of cards, or the no-results placeholder when
// props is empty.
func (r *Renderer) PropertyGrid(props []*property.Property) template.HTML {
	if len(props) == 0 {
		return r.Placeholder(NoProperties)
	}
	cards := make([]cardData, 0, len(props))
	for _, p := range props {
		cards = append(cards, r.card(p))
	}
	return render(r, "grid", cards)
}

// DetailOptions controls the parts of the detail view that depend on the
// viewer and on interaction state.
type DetailOptions struct {
	Viewer  *user.User
	Slide   int
	Reviews template.HTML
}

type detailData struct {
	cardData
	Address        string
	Description    string
	Amenities      []string
	Images         []string
	Cover          string
	Carousel       bool
	Slide          int
	Indicators     []bool
	OwnerID        int64
	OwnerName      string
	OwnerPhone     string
	OwnerEmail     string
	StudentActions bool
	Reviews        template.HTML
}

// PropertyDetail renders the full listing: a carousel when there is more than
// one image, facts, amenities, the owner contact block and, for students, the
// favorite/chat/review actions. The reviews region starts with opts.Reviews,
// or a spinner when empty.
func (r *Renderer) PropertyDetail(p *property.Property, opts DetailOptions) template.HTML {
	d := detailData{
		cardData:       r.card(p),
		Address:        p.Address,
		Description:    p.Description,
		Amenities:      p.Amenities,
		Cover:          r.CoverImage(p),
		Carousel:       len(p.Images) > 1,
		OwnerID:        p.OwnerID,
		OwnerName:      p.OwnerName,
		OwnerPhone:     p.OwnerPhone,
		OwnerEmail:     p.OwnerEmail,
		StudentActions: opts.Viewer.IsStudent(),
		Reviews:        opts.Reviews,
	}
	if d.Description == "" {
		d.Description = NoDescription
	}
	if d.OwnerPhone == "" {
		d.OwnerPhone = NotAvailable
	}
	if d.Reviews == "" {
		d.Reviews = Spinner
	}
	if d.Carousel {
		c := NewCarousel(len(p.Images))
		c.GoTo(opts.Slide)
		d.Slide = c.Index()
		d.Indicators = c.Indicators()
		for _, img := range p.Images {
			d.Images = append(d.Images, r.ImageURL(img))
		}
	}
	return render(r, "detail", d)
}

type reviewData struct {
	Author  string
	Stars   string
	Date    string
	Comment string
}

type reviewsData struct {
	Stars   string
	Average string
	Total   int64
	Reviews []reviewData
}

// ReviewsSection renders the average rating and each review, or the
// no-reviews placeholder.
func (r *Renderer) ReviewsSection(sum *review.Summary) template.HTML {
	if sum == nil || len(sum.Reviews) == 0 {
		return r.Placeholder(NoReviews)
	}
	avg := float64(sum.AverageRating)
	d := reviewsData{
		Stars:   review.AverageStars(avg),
		Average: review.FormatAverage(avg),
		Total:   sum.TotalReviews.Int64(),
	}
	for _, rv := range sum.Reviews {
		d.Reviews = append(d.Reviews, reviewData{
			Author:  rv.UserName,
			Stars:   review.Stars(rv.Rating),
			Date:    r.Date(rv.CreatedAt),
			Comment: rv.Comment,
		})
	}
	return render(r, "reviews", d)
}

type roomData struct {
	ID      int64
	Title   string
	Other   string
	Preview string
}

// RoomList renders the conversation list. Each entry names the participant
// who is not the viewer.
func (r *Renderer) RoomList(rooms []*chat.Room, viewer user.Type) template.HTML {
	if len(rooms) == 0 {
		return r.Placeholder(NoRooms)
	}
	items := make([]roomData, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, roomData{
			ID:      room.ID,
			Title:   room.PropertyTitle,
			Other:   room.OtherParticipant(viewer),
			Preview: preview(room),
		})
	}
	return render(r, "rooms", items)
}

func preview(room *chat.Room) string {
	if room.LastMessage == "" {
		return NoMessages
	}
	return room.LastMessage
}

type messageData struct {
	Sent   bool
	Sender string
	Text   string
	Time   string
}

// ChatMessage renders one transcript entry. History and live messages both
// go through here.
func (r *Renderer) ChatMessage(m *chat.Message, sent bool) template.HTML {
	return render(r, "message", messageData{
		Sent:   sent,
		Sender: m.SenderName,
		Text:   m.Message,
		Time:   r.TimeOfDay(m.CreatedAt),
	})
}
