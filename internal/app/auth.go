package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evcraddock/nearby/internal/client"
	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/realtime"
	"github.com/evcraddock/nearby/internal/user"
)

// Start restores a stored session, refreshes visibility and, when logged in,
// opens the realtime channel.
func (a *App) Start(ctx context.Context) error {
	if err := a.session.Load(); err != nil {
		return err
	}
	a.page.ApplyVisibility(a.session.User())
	if a.session.Authenticated() {
		a.initSocket(ctx)
	}
	return nil
}

// Login authenticates with email and password and shows the listings.
func (a *App) Login(ctx context.Context, email, password string) error {
	resp, err := a.client.Login(ctx, client.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	return a.establish(ctx, resp, page.LoginModal, MsgWelcomeBack)
}

// Register creates an account and logs into it.
func (a *App) Register(ctx context.Context, reg client.Registration) error {
	if !reg.UserType.IsValid() {
		return a.invalid(fmt.Sprintf("Tipo de usuario inválido: %q", reg.UserType))
	}
	resp, err := a.client.Register(ctx, reg)
	if err != nil {
		return err
	}
	return a.establish(ctx, resp, page.RegisterModal, MsgAccountCreated)
}

func (a *App) establish(ctx context.Context, resp *client.AuthResponse, modal page.Modal, message string) error {
	if err := a.session.Login(resp.Token, resp.User); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	a.initSocket(ctx)
	a.page.CloseModal(modal)
	a.notify(notify.Success, message)
	if err := a.ShowSection(ctx, page.Properties); err != nil {
		slog.Debug("loading properties after login", "error", err)
	}
	return nil
}

// Logout closes the realtime channel, clears the session and returns home.
func (a *App) Logout() error {
	a.mu.Lock()
	ch := a.channel
	a.channel = nil
	a.room = nil
	a.detail = nil
	a.stopTypingLocked()
	a.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil {
			slog.Debug("closing chat channel", "error", err)
		}
	}

	err := a.session.Logout()
	a.page.CloseChat()
	a.page.ShowSection(page.Home)
	a.notify(notify.Info, MsgLoggedOut)
	return err
}

// Close releases the realtime channel without touching the session.
func (a *App) Close() error {
	a.mu.Lock()
	ch := a.channel
	a.channel = nil
	a.stopTypingLocked()
	a.mu.Unlock()

	if ch == nil {
		return nil
	}
	return ch.Close()
}

// User returns the logged-in user, nil for guests.
func (a *App) User() *user.User {
	return a.session.User()
}

// initSocket opens the session's realtime channel if it is enabled and not
// already open. Failures are logged; chat falls back to "not connected".
func (a *App) initSocket(ctx context.Context) {
	if a.socketURL == "" {
		return
	}
	token := a.session.Token()
	if token == "" {
		return
	}

	a.mu.Lock()
	ch := a.channel
	if ch == nil {
		ch = realtime.New(realtime.Options{
			URL:               a.socketURL,
			Token:             token,
			ReconnectAttempts: a.reconnectAttempts,
		}, realtime.DispatchFunc(a.Dispatch))
		a.channel = ch
	}
	a.mu.Unlock()

	if err := ch.Connect(ctx); err != nil {
		slog.Warn("connecting to chat", "error", err)
	}
}
