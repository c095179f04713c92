package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/property"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printProperties writes a listing result in the selected format. The HTML
// form is the markup the grid currently shows.
func printProperties(w io.Writer, e *env, grid page.GridID, props []*property.Property) error {
	switch {
	case isJSON():
		if props == nil {
			props = []*property.Property{}
		}
		return printJSON(w, props)
	case isHTML():
		return printMarkup(w, e.app.Page().Grid(grid).Markup)
	default:
		return e.app.Renderer().WritePropertyTable(w, props)
	}
}

// parseID parses a positive numeric identifier argument.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, s)
	}
	return id, nil
}

// tokenExpiry reads the exp claim of a bearer token without verifying its
// signature; the client never holds the signing key.
func tokenExpiry(token string) (time.Time, bool, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("parsing token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, false, nil
	}
	return exp.Time, true, nil
}
