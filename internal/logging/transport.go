package logging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id used to correlate client and server logs.
const RequestIDHeader = "X-Request-ID"

// Transport is an http.RoundTripper that tags outbound requests with a
// request id and logs them.
type Transport struct {
	Next http.RoundTripper
}

// NewTransport wraps next (http.DefaultTransport when nil).
func NewTransport(next http.RoundTripper) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{Next: next}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := t.Next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		slog.Log(req.Context(), slog.LevelError, "request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", duration.String(),
			"request_id", id,
			"error", err,
		)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 500 {
		level = slog.LevelError
	} else if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}

	slog.Log(req.Context(), level, "request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", duration.String(),
		"request_id", id,
	)
	return resp, nil
}
