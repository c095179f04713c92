package property

import (
	"fmt"
	"net/url"
	"strings"
)

// Filters narrows the public listing search. Empty fields are omitted.
type Filters struct {
	PropertyType string
	Bedrooms     string
	MinPrice     string
	MaxPrice     string
	Search       string
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f == Filters{}
}

// Query encodes the filters as a query string, keeping a stable key order:
// property_type, bedrooms, min_price, max_price, search.
func (f Filters) Query() string {
	var params []string
	add := func(key, value string) {
		value = strings.TrimSpace(value)
		if value != "" {
			params = append(params, key+"="+url.QueryEscape(value))
		}
	}
	add("property_type", f.PropertyType)
	add("bedrooms", f.Bedrooms)
	add("min_price", f.MinPrice)
	add("max_price", f.MaxPrice)
	add("search", f.Search)
	return strings.Join(params, "&")
}

// WithPriceRange sets MinPrice and MaxPrice from a "min-max" range such as
// "500000-1000000". Either side may be empty ("1500000-").
func (f Filters) WithPriceRange(r string) (Filters, error) {
	r = strings.TrimSpace(r)
	if r == "" {
		return f, nil
	}
	lo, hi, ok := strings.Cut(r, "-")
	if !ok {
		return f, fmt.Errorf("invalid price range %q (want min-max)", r)
	}
	f.MinPrice = strings.TrimSpace(lo)
	f.MaxPrice = strings.TrimSpace(hi)
	return f, nil
}

// CreateForm holds the fields an owner submits to publish a listing.
// Amenities is the comma-separated text typed by the owner; Images are
// local file paths uploaded with the form.
type CreateForm struct {
	Title        string
	Description  string
	Address      string
	Neighborhood string
	Price        string
	PropertyType string
	Bedrooms     string
	Bathrooms    string
	AreaSqm      string
	Amenities    string
	Images       []string
}

// AmenityList splits the comma-separated amenities, trimming each entry and
// dropping empty ones.
func (f CreateForm) AmenityList() []string {
	out := []string{}
	if strings.TrimSpace(f.Amenities) == "" {
		return out
	}
	for _, a := range strings.Split(f.Amenities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks the required fields before anything is uploaded.
func (f CreateForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(f.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if strings.TrimSpace(f.Price) == "" {
		return fmt.Errorf("price is required")
	}
	if !Type(f.PropertyType).IsValid() {
		return fmt.Errorf("invalid property type %q (apartment, house, room, studio)", f.PropertyType)
	}
	return nil
}
