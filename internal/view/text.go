package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/evcraddock/nearby/internal/chat"
	"github.com/evcraddock/nearby/internal/property"
	"github.com/evcraddock/nearby/internal/review"
	"github.com/evcraddock/nearby/internal/user"
)

// WritePropertyTable prints listings as an aligned table.
func (r *Renderer) WritePropertyTable(w io.Writer, props []*property.Property) error {
	if len(props) == 0 {
		_, err := fmt.Fprintln(w, NoProperties)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTITLE\tLOCATION\tTYPE\tPRICE\tBED\tBATH\tAREA"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t-----\t--------\t----\t-----\t---\t----\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		beds, baths, area := facts(p)
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, truncate(p.Title, 36), truncate(p.Location(), 24), p.PropertyType.Label(),
			r.Price(p.Price), dash(beds), dash(baths), dash(area)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d propiedades\n", len(props))
	return err
}

// WritePropertyDetail prints one listing. Optional facts are left out when
// missing; the image list marks the active carousel slide.
func (r *Renderer) WritePropertyDetail(w io.Writer, p *property.Property, viewer *user.User, slide int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Propiedad #%d: %s\n", p.ID, p.Title)
	fmt.Fprintf(&b, "  Dirección:     %s\n", p.Address)
	if p.Neighborhood != "" {
		fmt.Fprintf(&b, "  Barrio:        %s\n", p.Neighborhood)
	}
	fmt.Fprintf(&b, "  Precio:        %s\n", r.Price(p.Price))
	fmt.Fprintf(&b, "  Tipo:          %s\n", p.PropertyType.Label())
	beds, baths, area := facts(p)
	if beds != "" {
		fmt.Fprintf(&b, "  Habitaciones:  %s\n", beds)
	}
	if baths != "" {
		fmt.Fprintf(&b, "  Baños:         %s\n", baths)
	}
	if area != "" {
		fmt.Fprintf(&b, "  Área:          %s\n", area)
	}

	desc := p.Description
	if desc == "" {
		desc = NoDescription
	}
	fmt.Fprintf(&b, "\n  %s\n", desc)

	if len(p.Amenities) > 0 {
		fmt.Fprintf(&b, "\n  Amenidades: %s\n", strings.Join(p.Amenities, ", "))
	}

	if len(p.Images) > 0 {
		c := NewCarousel(len(p.Images))
		c.GoTo(slide)
		b.WriteString("\n  Imágenes:\n")
		for i, img := range p.Images {
			marker := " "
			if i == c.Index() {
				marker = "●"
			}
			fmt.Fprintf(&b, "   %s %s\n", marker, r.ImageURL(img))
		}
	}

	phone := p.OwnerPhone
	if phone == "" {
		phone = NotAvailable
	}
	fmt.Fprintf(&b, "\n  Propietario:   %s\n", p.OwnerName)
	fmt.Fprintf(&b, "  Teléfono:      %s\n", phone)
	fmt.Fprintf(&b, "  Email:         %s\n", p.OwnerEmail)

	if viewer.IsStudent() {
		fmt.Fprintf(&b, "\n  nearby favorite %d | nearby contact %d | nearby review %d\n", p.ID, p.ID, p.ID)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteReviews prints a review summary.
func (r *Renderer) WriteReviews(w io.Writer, sum *review.Summary) error {
	if sum == nil || len(sum.Reviews) == 0 {
		_, err := fmt.Fprintln(w, NoReviews)
		return err
	}

	avg := float64(sum.AverageRating)
	var b strings.Builder
	fmt.Fprintf(&b, "Calificación Promedio: %s\n", review.AverageStars(avg))
	fmt.Fprintf(&b, "%s de 5 (%d reseñas)\n\n", review.FormatAverage(avg), sum.TotalReviews.Int64())
	for _, rv := range sum.Reviews {
		fmt.Fprintf(&b, "[%s] %s %s\n", r.Date(rv.CreatedAt), rv.UserName, review.Stars(rv.Rating))
		if rv.Comment != "" {
			fmt.Fprintf(&b, "  %s\n", rv.Comment)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRooms prints the conversation list.
func (r *Renderer) WriteRooms(w io.Writer, rooms []*chat.Room, viewer user.Type) error {
	if len(rooms) == 0 {
		_, err := fmt.Fprintln(w, NoRooms)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tPROPERTY\tWITH\tLAST MESSAGE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, room := range rooms {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			room.ID, truncate(room.PropertyTitle, 32), room.OtherParticipant(viewer), truncate(preview(room), 40)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// MessageLine renders a transcript entry as one line of terminal text.
func (r *Renderer) MessageLine(m *chat.Message, sent bool) string {
	sender := m.SenderName
	if sent {
		sender = "Tú"
	}
	return fmt.Sprintf("[%s] %s: %s", r.TimeOfDay(m.CreatedAt), sender, m.Message)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
