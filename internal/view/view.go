// Package view turns marketplace records into markup fragments and terminal
// text. Rendering is pure: nothing here performs I/O beyond the writer passed in.
package view

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/evcraddock/nearby/internal/property"
)

// DefaultLocale is the locale prices and dates are formatted for.
const DefaultLocale = "es-CO"

// PlaceholderImage is shown when a listing has no images.
const PlaceholderImage = "images/property1.png"

// Renderer holds the settings shared by every fragment: the server origin
// image paths are resolved against, the number locale and the display zone.
type Renderer struct {
	origin  string
	printer *message.Printer
	loc     *time.Location
	tmpl    *template.Template
}

// New creates a renderer. origin is the API URL without its /api suffix.
func New(origin, locale string) (*Renderer, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}

	tmpl, err := template.New("").Parse(templates)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Renderer{
		origin:  strings.TrimRight(origin, "/"),
		printer: message.NewPrinter(tag),
		loc:     time.Local,
		tmpl:    tmpl,
	}, nil
}

// SetLocation changes the zone timestamps are shown in.
func (r *Renderer) SetLocation(loc *time.Location) {
	if loc != nil {
		r.loc = loc
	}
}

// Price renders a monthly rent such as "$1.200.000/mes".
func (r *Renderer) Price(n property.Number) string {
	return "$" + r.Number(float64(n)) + "/mes"
}

// Number formats n with the locale's thousands separators.
func (r *Renderer) Number(n float64) string {
	if n == math.Trunc(n) {
		return r.printer.Sprintf("%d", int64(n))
	}
	return r.printer.Sprintf("%.2f", n)
}

// ImageURL resolves an uploaded image path against the server origin.
// Absolute URLs are returned unchanged; an empty path yields the placeholder.
func (r *Renderer) ImageURL(path string) string {
	switch {
	case path == "":
		return PlaceholderImage
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	default:
		return r.origin + path
	}
}

// CoverImage returns the URL of the first image, or the placeholder.
func (r *Renderer) CoverImage(p *property.Property) string {
	if len(p.Images) == 0 {
		return PlaceholderImage
	}
	return r.ImageURL(p.Images[0])
}

// TimeOfDay renders a chat timestamp as HH:MM in the display zone.
func (r *Renderer) TimeOfDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.loc).Format("15:04")
}

// Date renders a review date as day/month/year.
func (r *Renderer) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.loc).Format("2/1/2006")
}

func formatArea(n *property.Number) string {
	return strconv.FormatFloat(float64(*n), 'f', -1, 64) + "m²"
}

func render(r *Renderer, name string, data interface{}) template.HTML {
	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return template.HTML(template.HTMLEscapeString(fmt.Sprintf("render %s: %v", name, err)))
	}
	return template.HTML(b.String())
}
