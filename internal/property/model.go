// Package property provides the rental listing record and its query filters.
package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is the kind of rental unit.
type Type string

const (
	Apartment Type = "apartment"
	House     Type = "house"
	Room      Type = "room"
	Studio    Type = "studio"
)

// ValidTypes is the set of listing types the marketplace accepts.
var ValidTypes = []Type{Apartment, House, Room, Studio}

// IsValid checks if a property type is recognized.
func (t Type) IsValid() bool {
	for _, v := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the property type.
func (t Type) Label() string {
	switch t {
	case Apartment:
		return "Apartamento"
	case House:
		return "Casa"
	case Room:
		return "Habitación"
	case Studio:
		return "Estudio"
	default:
		return string(t)
	}
}

// Property is a rental listing as returned by the API.
type Property struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Address      string     `json:"address"`
	Neighborhood string     `json:"neighborhood,omitempty"`
	Price        Number     `json:"price"`
	PropertyType Type       `json:"property_type"`
	Bedrooms     *int       `json:"bedrooms,omitempty"`
	Bathrooms    *int       `json:"bathrooms,omitempty"`
	AreaSqm      *Number    `json:"area_sqm,omitempty"`
	Images       StringList `json:"images"`
	Amenities    StringList `json:"amenities"`
	Description  string     `json:"description,omitempty"`
	OwnerID      int64      `json:"owner_id"`
	OwnerName    string     `json:"owner_name,omitempty"`
	OwnerPhone   string     `json:"owner_phone,omitempty"`
	OwnerEmail   string     `json:"owner_email,omitempty"`
}

// HasBedrooms reports whether a bedroom count should be shown.
func (p *Property) HasBedrooms() bool { return p.Bedrooms != nil && *p.Bedrooms > 0 }

// HasBathrooms reports whether a bathroom count should be shown.
func (p *Property) HasBathrooms() bool { return p.Bathrooms != nil && *p.Bathrooms > 0 }

// HasArea reports whether the floor area should be shown.
func (p *Property) HasArea() bool { return p.AreaSqm != nil && *p.AreaSqm > 0 }

// Location returns the neighborhood, falling back to the street address.
func (p *Property) Location() string {
	if p.Neighborhood != "" {
		return p.Neighborhood
	}
	return p.Address
}

// StringList is a list of strings that the API sends either as a JSON array
// or as a JSON-encoded string holding that array. Anything else decodes to an
// empty list, so unmarshaling never fails.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = ParseStringList(json.RawMessage(data))
	return nil
}

// MarshalJSON always emits a JSON array.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// ParseStringList normalizes the dual representation of list fields.
// It accepts a []string, a JSON-encoded string, raw JSON (array or string) or nil.
func ParseStringList(v interface{}) StringList {
	switch x := v.(type) {
	case nil:
		return StringList{}
	case StringList:
		return append(StringList{}, x...)
	case []string:
		return append(StringList{}, x...)
	case []interface{}:
		out := StringList{}
		for _, item := range x {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return StringList{}
		}
		return parseRawList([]byte(s), false)
	case json.RawMessage:
		return parseRawList(x, true)
	case []byte:
		return parseRawList(x, true)
	default:
		return StringList{}
	}
}

// parseRawList decodes raw JSON into a list. When allowNested is true a JSON
// string is decoded a second time.
func parseRawList(data []byte, allowNested bool) StringList {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return StringList{}
	}

	var items []interface{}
	if err := json.Unmarshal(data, &items); err == nil {
		return ParseStringList(items)
	}

	if !allowNested {
		return StringList{}
	}

	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return StringList{}
	}
	return ParseStringList(inner)
}

// Number is a numeric field the API may send as a JSON number or as a
// numeric string (DECIMAL columns). Empty or unparseable values decode to 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// Int64 truncates the number to a whole value.
func (n Number) Int64() int64 { return int64(n) }
