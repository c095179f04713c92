// Package notify delivers transient user-facing notifications and marks
// errors that have already been shown to the user.
package notify

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Kind is the severity of a notification.
type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

// Notification is a single transient message.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Func adapts a plain function to a Notifier.
type Func func(kind Kind, message string)

// Notify calls f.
func (f Func) Notify(kind Kind, message string) { f(kind, message) }

// Discard drops every notification.
var Discard Notifier = Func(func(Kind, string) {})

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FB7185")).Bold(true)
)

// Style returns the color style for a kind.
func Style(kind Kind) lipgloss.Style {
	switch kind {
	case Success:
		return successStyle
	case Warning:
		return warningStyle
	case Error:
		return errorStyle
	default:
		return infoStyle
	}
}

// Symbol returns the glyph shown in front of a notification.
func Symbol(kind Kind) string {
	switch kind {
	case Success:
		return "✓"
	case Warning:
		return "!"
	case Error:
		return "✗"
	default:
		return "•"
	}
}

// Console writes notifications as single colored lines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console notifier writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Notify implements Notifier.
func (c *Console) Notify(kind Kind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line := Style(kind).Render(Symbol(kind) + " " + message)
	if _, err := fmt.Fprintln(c.w, line); err != nil {
		return
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(kind Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Kind: kind, Message: message})
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// Multi fans a notification out to several notifiers.
func Multi(ns ...Notifier) Notifier {
	return Func(func(kind Kind, message string) {
		for _, n := range ns {
			n.Notify(kind, message)
		}
	})
}

// reportedError marks an error the user has already been told about.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported wraps err to record that a notification was already shown for it.
func Reported(err error) error {
	if err == nil || WasReported(err) {
		return err
	}
	return &reportedError{err: err}
}

// WasReported reports whether err (or anything it wraps) was already shown.
func WasReported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}
