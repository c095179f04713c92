// Package tui is the interactive chat screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evcraddock/nearby/internal/app"
	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/view"
)

// Chat is the part of the application the screen drives.
type Chat interface {
	Keystroke(key, composer string) error
	Page() *page.Page
	Renderer() *view.Renderer
}

var _ Chat = (*app.App)(nil)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F472B6"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A1A1AA"))
	sentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#93C5FD"))
	receivedStyle = lipgloss.NewStyle()
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717A")).Italic(true)
	borderStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(lipgloss.Color("#3F3F46"))
)

const (
	typingText   = "escribiendo..."
	chromeHeight = 5
	tickInterval = time.Second
)

// refreshMsg signals that the page changed.
type refreshMsg struct{}

// tickMsg expires notifications that outlived their TTL.
type tickMsg time.Time

// Model is the bubbletea model of the chat screen.
type Model struct {
	chat     Chat
	input    textinput.Model
	viewport viewport.Model
	width    int
}

// New creates the chat screen for c.
func New(c Chat) Model {
	ti := textinput.New()
	ti.Placeholder = "Escribe un mensaje..."
	ti.CharLimit = 1000
	ti.Width = 60
	ti.Focus()

	m := Model{
		chat:     c,
		input:    ti,
		viewport: viewport.New(80, 20),
		width:    80,
	}
	m.syncTranscript()
	return m
}

// Run shows the chat screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, c Chat) error {
	p := tea.NewProgram(New(c), tea.WithAltScreen(), tea.WithContext(ctx))
	// Changes may come from inside Update (a failed send notifies), so the
	// refresh must not wait for the event loop.
	c.Page().OnChange(func() { go p.Send(refreshMsg{}) })
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.syncTranscript()
		return m, nil

	case refreshMsg:
		m.syncTranscript()
		return m, nil

	case tickMsg:
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		// Failures are already on screen as notifications; keep the draft.
		if err := m.chat.Keystroke(app.KeyEnter, m.input.Value()); err == nil {
			m.input.Reset()
		}
		m.syncTranscript()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		_ = m.chat.Keystroke(msg.String(), m.input.Value())
	}
	return m, cmd
}

func (m *Model) syncTranscript() {
	cv := m.chat.Page().Chat()
	r := m.chat.Renderer()

	if len(cv.Transcript) == 0 {
		m.viewport.SetContent(mutedStyle.Render(view.NoMessages))
		return
	}

	lines := make([]string, 0, len(cv.Transcript))
	for _, e := range cv.Transcript {
		line := r.MessageLine(&e.Message, e.Sent)
		if e.Sent {
			lines = append(lines, sentStyle.Render(line))
		} else {
			lines = append(lines, receivedStyle.Render(line))
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if cv.AtBottom {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	cv := m.chat.Page().Chat()

	title := cv.Title
	if title == "" {
		title = "Chat"
	}
	header := headerStyle.Render(title)
	if cv.OtherUser != "" {
		header += "  " + subtitleStyle.Render("Chat con "+cv.OtherUser)
	}

	status := ""
	if cv.TypingVisible {
		status = mutedStyle.Render(fmt.Sprintf(" %s %s", cv.OtherUser, typingText))
	}

	footer := m.input.View()
	if !cv.ComposerVisible {
		footer = mutedStyle.Render("Selecciona una conversación")
	}

	parts := []string{header}
	for _, t := range m.chat.Page().Notifications() {
		parts = append(parts, notify.Style(t.Kind).Render(notify.Symbol(t.Kind)+" "+t.Message))
	}
	parts = append(parts, m.viewport.View(), status, borderStyle.Width(m.width).Render(footer))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
