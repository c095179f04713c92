// Package app is the application context: it owns the session, the API
// gateway, the realtime channel, the page model and the current chat room,
// and implements every user-facing flow on top of them.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/evcraddock/nearby/internal/chat"
	"github.com/evcraddock/nearby/internal/client"
	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/property"
	"github.com/evcraddock/nearby/internal/realtime"
	"github.com/evcraddock/nearby/internal/review"
	"github.com/evcraddock/nearby/internal/session"
	"github.com/evcraddock/nearby/internal/view"
)

var (
	// ErrLoginRequired is returned when a guest attempts a gated action.
	ErrLoginRequired = errors.New("login required")
	// ErrOwnerRequired is returned when a non-owner tries to publish.
	ErrOwnerRequired = errors.New("owner account required")
	// ErrInvalid is returned when client-side validation rejects input.
	ErrInvalid = errors.New("invalid input")
	// ErrSuperseded is returned when a newer request for the same view
	// replaced this one before it completed.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// User-facing messages.
const (
	MsgWelcomeBack      = "¡Bienvenido de nuevo!"
	MsgAccountCreated   = "¡Cuenta creada exitosamente!"
	MsgLoggedOut        = "Sesión cerrada"
	MsgFavoriteLogin    = "Debes iniciar sesión para guardar favoritos"
	MsgFavoriteAdded    = "Agregado a favoritos"
	MsgOwnersOnly       = "Solo los propietarios pueden publicar propiedades"
	MsgPublished        = "Propiedad publicada exitosamente"
	MsgNewMessage       = "Nuevo mensaje recibido"
	MsgNotConnected     = "No estás conectado al chat"
	MsgChatLogin        = "Debes iniciar sesión para chatear"
	MsgReviewLogin      = "Debes iniciar sesión para dejar una reseña"
	MsgSelectRating     = "Por favor selecciona una calificación"
	MsgReviewPublished  = "Reseña publicada exitosamente"
	MsgConnectionLost   = "Se perdió la conexión con el chat"
	MsgChatError        = "Error en el chat"
	defaultRoomTitle    = "Propiedad"
	defaultRoomOther    = "Propietario"
	detailTarget        = "detail"
	reviewsTarget       = "reviews"
	DefaultTypingWindow = 2 * time.Second
)

// Options wires an App to its collaborators.
type Options struct {
	Session  *session.Store
	Client   *client.Client
	Renderer *view.Renderer
	Page     *page.Page
	// Notifier receives every notification. Defaults to Page.
	Notifier notify.Notifier

	// SocketURL enables the realtime channel. Empty disables it.
	SocketURL         string
	ReconnectAttempts int

	// TypingWindow is how long the typing indicator stays visible.
	TypingWindow time.Duration
	// TypingInterval is the minimum gap between outbound typing pings.
	TypingInterval time.Duration

	Now func() time.Time
}

// openDetail is the property shown in the detail dialog.
type openDetail struct {
	prop     *property.Property
	carousel *view.Carousel
	reviews  string
	summary  *review.Summary
}

// App is the application context. It is safe for concurrent use: the
// realtime reader and the UI both call into it.
type App struct {
	session  *session.Store
	client   *client.Client
	render   *view.Renderer
	page     *page.Page
	notifier notify.Notifier

	socketURL         string
	reconnectAttempts int
	typingWindow      time.Duration
	now               func() time.Time

	supersede view.Supersede

	mu            sync.Mutex
	channel       *realtime.Channel
	room          *chat.Current
	typingTimer   *time.Timer
	typingGen     uint64
	typingLimiter *rate.Limiter
	picker        review.StarPicker
	reviewTarget  int64
	detail        *openDetail
}

// New creates an App. Session login and logout refresh the page's
// role-gated regions.
func New(opts Options) *App {
	if opts.Page == nil {
		opts.Page = page.New()
	}
	if opts.Notifier == nil {
		opts.Notifier = opts.Page
	}
	if opts.TypingWindow <= 0 {
		opts.TypingWindow = DefaultTypingWindow
	}
	if opts.TypingInterval <= 0 {
		opts.TypingInterval = DefaultTypingWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	a := &App{
		session:           opts.Session,
		client:            opts.Client,
		render:            opts.Renderer,
		page:              opts.Page,
		notifier:          opts.Notifier,
		socketURL:         opts.SocketURL,
		reconnectAttempts: opts.ReconnectAttempts,
		typingWindow:      opts.TypingWindow,
		now:               opts.Now,
		typingLimiter:     rate.NewLimiter(rate.Every(opts.TypingInterval), 1),
	}
	a.session.OnChange(a.page.ApplyVisibility)
	return a
}

// Page returns the page model.
func (a *App) Page() *page.Page { return a.page }

// Session returns the session store.
func (a *App) Session() *session.Store { return a.session }

// Renderer returns the view renderer.
func (a *App) Renderer() *view.Renderer { return a.render }

// Channel returns the realtime channel, nil before it is initialized.
func (a *App) Channel() *realtime.Channel {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.channel
}

func (a *App) notify(kind notify.Kind, message string) {
	a.notifier.Notify(kind, message)
}

// requireLogin notifies and opens the login dialog when no user is logged in.
func (a *App) requireLogin(message string, prompt bool) error {
	if a.session.Authenticated() {
		return nil
	}
	a.notify(notify.Warning, message)
	if prompt {
		a.page.OpenModal(page.LoginModal)
	}
	return notify.Reported(ErrLoginRequired)
}

// invalid reports a validation failure as a warning; no request is made.
func (a *App) invalid(message string) error {
	a.notify(notify.Warning, message)
	return notify.Reported(fmt.Errorf("%w: %s", ErrInvalid, message))
}
