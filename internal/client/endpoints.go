package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/evcraddock/nearby/internal/chat"
	"github.com/evcraddock/nearby/internal/property"
	"github.com/evcraddock/nearby/internal/review"
	"github.com/evcraddock/nearby/internal/user"
)

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /auth/register. StudentID is only sent
// for students.
type Registration struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Phone     string    `json:"phone,omitempty"`
	UserType  user.Type `json:"user_type"`
	StudentID string    `json:"student_id,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	if reg.UserType != user.Student {
		reg.StudentID = ""
	}
	var resp AuthResponse
	if err := c.post(ctx, "/auth/register", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListProperties returns public listings matching filters.
func (c *Client) ListProperties(ctx context.Context, filters property.Filters) ([]*property.Property, error) {
	path := "/properties"
	if q := filters.Query(); q != "" {
		path += "?" + q
	}

	var resp struct {
		Properties []*property.Property `json:"properties"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

// GetProperty returns one listing.
func (c *Client) GetProperty(ctx context.Context, id int64) (*property.Property, error) {
	var resp struct {
		Property *property.Property `json:"property"`
	}
	if err := c.get(ctx, fmt.Sprintf("/properties/%d", id), &resp); err != nil {
		return nil, err
	}
	if resp.Property == nil {
		return nil, c.fail(&APIError{Status: http.StatusNotFound, Message: fmt.Sprintf("property %d not found", id)})
	}
	return resp.Property, nil
}

// MyProperties returns the listings published by the logged-in owner.
func (c *Client) MyProperties(ctx context.Context) ([]*property.Property, error) {
	var resp struct {
		Properties []*property.Property `json:"properties"`
	}
	if err := c.get(ctx, "/properties/owner/my-properties", &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

// CreateProperty publishes a listing. Amenities are sent as a JSON-encoded
// list and each image path is uploaded as an "images" file.
func (c *Client) CreateProperty(ctx context.Context, form property.CreateForm) (*property.Property, error) {
	amenities, err := json.Marshal(form.AmenityList())
	if err != nil {
		return nil, fmt.Errorf("marshaling amenities: %w", err)
	}

	body := &Multipart{}
	body.Field("title", form.Title).
		Field("description", form.Description).
		Field("address", form.Address).
		Field("neighborhood", form.Neighborhood).
		Field("price", form.Price).
		Field("property_type", form.PropertyType).
		Field("bedrooms", form.Bedrooms).
		Field("bathrooms", form.Bathrooms).
		Field("area_sqm", form.AreaSqm).
		Field("amenities", string(amenities))
	for _, img := range form.Images {
		body.File("images", img)
	}

	var resp struct {
		Property *property.Property `json:"property"`
	}
	if err := c.decode(ctx, "/properties", http.MethodPost, body, true, &resp); err != nil {
		return nil, err
	}
	return resp.Property, nil
}

// Favorites returns the student's saved listings.
func (c *Client) Favorites(ctx context.Context) ([]*property.Property, error) {
	var resp struct {
		Favorites []*property.Property `json:"favorites"`
	}
	if err := c.get(ctx, "/users/favorites", &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// AddFavorite saves a listing for the student.
func (c *Client) AddFavorite(ctx context.Context, propertyID int64) error {
	body := map[string]int64{"property_id": propertyID}
	return c.post(ctx, "/users/favorites", body, nil)
}

// ChatRooms returns the user's conversations.
func (c *Client) ChatRooms(ctx context.Context) ([]*chat.Room, error) {
	var resp struct {
		Rooms []*chat.Room `json:"rooms"`
	}
	if err := c.get(ctx, "/chat/rooms", &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// CreateChatRoom creates, or fetches the existing, room for a property.
func (c *Client) CreateChatRoom(ctx context.Context, propertyID int64) (*chat.Room, error) {
	body := map[string]int64{"property_id": propertyID}
	var resp struct {
		Room *chat.Room `json:"room"`
	}
	if err := c.post(ctx, "/chat/rooms", body, &resp); err != nil {
		return nil, err
	}
	if resp.Room == nil {
		return nil, c.fail(&APIError{Message: "chat room missing from response"})
	}
	return resp.Room, nil
}

// RoomMessages returns a room's message history, oldest first.
func (c *Client) RoomMessages(ctx context.Context, roomID int64) ([]*chat.Message, error) {
	var resp struct {
		Messages []*chat.Message `json:"messages"`
	}
	if err := c.get(ctx, fmt.Sprintf("/chat/rooms/%d/messages", roomID), &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SubmitReview posts a review.
func (c *Client) SubmitReview(ctx context.Context, sub review.Submission) error {
	return c.post(ctx, "/reviews", sub, nil)
}

// PropertyReviews returns a property's reviews with the server-computed average.
func (c *Client) PropertyReviews(ctx context.Context, propertyID int64) (*review.Summary, error) {
	var resp review.Summary
	if err := c.get(ctx, fmt.Sprintf("/reviews/property/%d", propertyID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
