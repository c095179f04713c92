// Package review provides property reviews, their summary and the star
// rating picker used when writing one.
package review

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/evcraddock/nearby/internal/property"
)

// MaxRating is the number of stars in a rating.
const MaxRating = 5

// Review is a student's rating and comment on a property.
type Review struct {
	ID        int64     `json:"id,omitempty"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the response from GET /reviews/property/{id}. The average is
// computed by the server.
type Summary struct {
	Reviews       []*Review       `json:"reviews"`
	AverageRating property.Number `json:"average_rating"`
	TotalReviews  property.Number `json:"total_reviews"`
}

// Submission is the body posted to /reviews.
type Submission struct {
	PropertyID int64  `json:"property_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// ValidRating returns true if r is a whole star count between 1 and MaxRating.
func ValidRating(r int) bool {
	return r >= 1 && r <= MaxRating
}

// Validate checks a submission before it is sent.
func (s Submission) Validate() error {
	if s.PropertyID <= 0 {
		return fmt.Errorf("invalid property ID: %d", s.PropertyID)
	}
	if !ValidRating(s.Rating) {
		return fmt.Errorf("rating must be 1-%d, got %d", MaxRating, s.Rating)
	}
	return nil
}

// Stars returns a five-glyph representation of a whole rating.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > MaxRating {
		rating = MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", MaxRating-rating)
}

// AverageStars rounds an average rating to the nearest whole star.
func AverageStars(avg float64) string {
	return Stars(int(math.Round(avg)))
}

// FormatAverage renders an average with one decimal place.
func FormatAverage(avg float64) string {
	return fmt.Sprintf("%.1f", avg)
}
