// Package client is the gateway for every call to the marketplace REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evcraddock/nearby/internal/logging"
	"github.com/evcraddock/nearby/internal/notify"
)

// DefaultBaseURL is the API root used when nothing is configured.
const DefaultBaseURL = "http://localhost:3000/api"

// fallbackMessage is shown when a failed response carries no error field.
const fallbackMessage = "Request failed"

// TokenSource supplies the bearer token for each request; empty means guest.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// APIError is a failed API call.
type APIError struct {
	Status  int // 0 for transport failures
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client is an HTTP client for the marketplace API. Calls are fire-once:
// no retry and no backoff; cancellation comes from the caller's context.
type Client struct {
	baseURL    string
	tokens     TokenSource
	notifier   notify.Notifier
	httpClient *http.Client
}

// New creates a new API client. A nil notifier discards notifications.
func New(baseURL string, tokens TokenSource, notifier notify.Notifier) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		notifier:   notifier,
		httpClient: &http.Client{Transport: logging.NewTransport(nil)},
	}
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Origin returns the server root that uploaded image paths are relative to:
// the base URL without its trailing /api.
func (c *Client) Origin() string {
	return strings.TrimSuffix(c.baseURL, "/api")
}

// Call performs one API request and returns the raw JSON result.
//
// With isForm the body must be a *Multipart and is sent as multipart/form-data;
// otherwise a non-nil body is sent as JSON. A non-2xx response or transport
// failure is shown to the user once and returned marked as reported.
func (c *Client) Call(ctx context.Context, path, method string, body interface{}, isForm bool) (json.RawMessage, error) {
	if method == "" {
		method = http.MethodGet
	}

	req, err := c.newRequest(ctx, path, method, body, isForm)
	if err != nil {
		return nil, c.fail(&APIError{Message: err.Error()})
	}

	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(&APIError{Message: fmt.Sprintf("request failed: %v", err)})
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&APIError{Status: resp.StatusCode, Message: fmt.Sprintf("reading response: %v", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(&APIError{Status: resp.StatusCode, Message: errorMessage(respBody)})
	}

	respBody = bytes.TrimSpace(respBody)
	if len(respBody) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(respBody) {
		return nil, c.fail(&APIError{Status: resp.StatusCode, Message: "decoding response: invalid JSON"})
	}
	return json.RawMessage(respBody), nil
}

func (c *Client) newRequest(ctx context.Context, path, method string, body interface{}, isForm bool) (*http.Request, error) {
	url := c.baseURL + path

	if body == nil {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		return req, nil
	}

	if isForm {
		form, ok := body.(*Multipart)
		if !ok {
			return nil, fmt.Errorf("form body must be *client.Multipart, got %T", body)
		}
		data, contentType, err := form.Encode()
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// fail shows err to the user and marks it as reported.
func (c *Client) fail(err *APIError) error {
	slog.Debug("api error", "status", err.Status, "message", err.Message)
	c.notifier.Notify(notify.Error, err.Message)
	return notify.Reported(err)
}

// errorMessage extracts the server's error field, falling back to a generic message.
func errorMessage(body []byte) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Error != "" {
			return errResp.Error
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}
	return fallbackMessage
}

// get performs a GET and decodes the response into result.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.decode(ctx, path, http.MethodGet, nil, false, result)
}

// post performs a JSON POST and decodes the response into result (may be nil).
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.decode(ctx, path, http.MethodPost, body, false, result)
}

func (c *Client) decode(ctx context.Context, path, method string, body interface{}, isForm bool, result interface{}) error {
	raw, err := c.Call(ctx, path, method, body, isForm)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return c.fail(&APIError{Message: fmt.Sprintf("decoding response: %v", err)})
	}
	return nil
}
