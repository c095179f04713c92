// Package page models what the marketplace UI shows at any moment: the
// active section, which role-gated regions are visible, open modals, list
// grids, the chat transcript and transient notifications. Feature handlers
// mutate it; the CLI and the chat screen read it.
package page

import (
	"fmt"
	"sync"
	"time"

	"github.com/evcraddock/nearby/internal/chat"
	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/user"
)

// Section is a top-level view.
type Section string

const (
	Home         Section = "home"
	Properties   Section = "properties"
	Favorites    Section = "favorites"
	MyProperties Section = "my-properties"
	Chat         Section = "chat"
)

// Sections lists every section in navigation order.
var Sections = []Section{Home, Properties, Favorites, MyProperties, Chat}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// Region is a group of elements gated by authentication state.
type Region string

const (
	GuestOnly Region = "guest-only"
	AuthOnly  Region = "auth-only"
	OwnerOnly Region = "owner-only"
)

// Modal identifies a dialog.
type Modal string

const (
	LoginModal          Modal = "loginModal"
	RegisterModal       Modal = "registerModal"
	PropertyDetailModal Modal = "propertyDetailModal"
	CreatePropertyModal Modal = "createPropertyModal"
	ReviewModal         Modal = "reviewModal"
)

// GridID identifies a list container.
type GridID string

const (
	PropertiesGrid   GridID = "propertiesGrid"
	FavoritesGrid    GridID = "favoritesGrid"
	MyPropertiesGrid GridID = "myPropertiesGrid"
	ChatRoomsList    GridID = "chatRoomsList"
	ReviewsSection   GridID = "reviewsSection"
)

// GridState is what a grid currently displays.
type GridState string

const (
	GridIdle    GridState = ""
	GridLoading GridState = "loading"
	GridContent GridState = "content"
	GridEmpty   GridState = "empty"
	GridError   GridState = "error"
)

// Grid is a list container and its rendered markup.
type Grid struct {
	State  GridState
	Markup string
	Count  int
}

// TranscriptEntry is one rendered chat line.
type TranscriptEntry struct {
	Message chat.Message
	Sent    bool
	Markup  string
}

// NotificationTTL is how long a notification stays on screen.
const NotificationTTL = 3 * time.Second

// Toast is a notification with its display deadline.
type Toast struct {
	notify.Notification
	Expires time.Time
}

// ChatView is the state of the chat pane.
type ChatView struct {
	Title           string
	OtherUser       string
	ComposerVisible bool
	Transcript      []TranscriptEntry
	AtBottom        bool
	TypingVisible   bool
}

// Page is the shared UI state. It is safe for concurrent use.
type Page struct {
	mu sync.Mutex

	section       Section
	hidden        map[Region]bool
	modals        map[Modal]bool
	grids         map[GridID]Grid
	detailTitle   string
	detailContent string
	chat          ChatView
	toasts        []Toast

	now       func() time.Time
	listeners []func()
}

// New creates a page showing the home section to a guest.
func New() *Page {
	p := &Page{
		section: Home,
		hidden:  make(map[Region]bool),
		modals:  make(map[Modal]bool),
		grids:   make(map[GridID]Grid),
		now:     time.Now,
	}
	p.applyVisibility(nil)
	return p
}

// SetClock overrides the time source used for notification expiry.
func (p *Page) SetClock(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

// OnChange registers fn to run after every mutation.
func (p *Page) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// update runs fn under the lock, then notifies listeners outside it.
func (p *Page) update(fn func()) {
	p.mu.Lock()
	fn()
	listeners := append([]func(){}, p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}

// ApplyVisibility shows or hides the role-gated regions for u (nil = guest).
func (p *Page) ApplyVisibility(u *user.User) {
	p.update(func() { p.applyVisibility(u) })
}

func (p *Page) applyVisibility(u *user.User) {
	if u == nil {
		p.hidden[GuestOnly] = false
		p.hidden[AuthOnly] = true
		p.hidden[OwnerOnly] = true
		return
	}
	p.hidden[GuestOnly] = true
	p.hidden[AuthOnly] = false
	p.hidden[OwnerOnly] = !u.IsOwner()
}

// Visible reports whether a region is shown.
func (p *Page) Visible(r Region) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.hidden[r]
}

// ShowSection makes s the only visible section.
func (p *Page) ShowSection(s Section) {
	p.update(func() { p.section = s })
}

// Section returns the visible section.
func (p *Page) Section() Section {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.section
}

// OpenModal opens a dialog.
func (p *Page) OpenModal(m Modal) {
	p.update(func() { p.modals[m] = true })
}

// CloseModal closes a dialog.
func (p *Page) CloseModal(m Modal) {
	p.update(func() { p.modals[m] = false })
}

// ModalOpen reports whether a dialog is open.
func (p *Page) ModalOpen(m Modal) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modals[m]
}

// SetGrid replaces a grid's state and markup.
func (p *Page) SetGrid(id GridID, g Grid) {
	p.update(func() { p.grids[id] = g })
}

// Grid returns a grid's current state.
func (p *Page) Grid(id GridID) Grid {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.grids[id]
}

// SetDetail fills the property detail dialog.
func (p *Page) SetDetail(title, content string) {
	p.update(func() {
		p.detailTitle = title
		p.detailContent = content
	})
}

// Detail returns the property detail dialog's title and content.
func (p *Page) Detail() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detailTitle, p.detailContent
}

// OpenChat shows the header and composer for a room and clears the transcript.
func (p *Page) OpenChat(title, otherUser string) {
	p.update(func() {
		p.chat = ChatView{
			Title:           title,
			OtherUser:       otherUser,
			ComposerVisible: true,
			AtBottom:        true,
		}
	})
}

// CloseChat hides the chat pane contents.
func (p *Page) CloseChat() {
	p.update(func() { p.chat = ChatView{} })
}

// ClearTranscript removes all chat lines.
func (p *Page) ClearTranscript() {
	p.update(func() { p.chat.Transcript = nil })
}

// AppendTranscript adds a chat line and scrolls to the bottom.
func (p *Page) AppendTranscript(e TranscriptEntry) {
	p.update(func() {
		p.chat.Transcript = append(p.chat.Transcript, e)
		p.chat.AtBottom = true
	})
}

// SetTyping shows or hides the typing indicator.
func (p *Page) SetTyping(visible bool) {
	p.update(func() { p.chat.TypingVisible = visible })
}

// Chat returns a copy of the chat pane state.
func (p *Page) Chat() ChatView {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.chat
	c.Transcript = append([]TranscriptEntry(nil), p.chat.Transcript...)
	return c
}

// Notify implements notify.Notifier; the message expires after NotificationTTL.
func (p *Page) Notify(kind notify.Kind, message string) {
	p.update(func() {
		p.toasts = append(p.toasts, Toast{
			Notification: notify.Notification{Kind: kind, Message: message},
			Expires:      p.now().Add(NotificationTTL),
		})
	})
}

// Notifications returns the notifications still on screen, pruning expired ones.
func (p *Page) Notifications() []Toast {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	live := p.toasts[:0]
	for _, t := range p.toasts {
		if now.Before(t.Expires) {
			live = append(live, t)
		}
	}
	p.toasts = live
	return append([]Toast(nil), live...)
}
