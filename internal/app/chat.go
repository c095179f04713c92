package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/evcraddock/nearby/internal/chat"
	"github.com/evcraddock/nearby/internal/notify"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/realtime"
	"github.com/evcraddock/nearby/internal/user"
)

// KeyEnter is the composer key that sends the message.
const KeyEnter = "enter"

// ListRooms fetches the user's conversations into the room list.
func (a *App) ListRooms(ctx context.Context) ([]*chat.Room, error) {
	rooms, err := a.client.ChatRooms(ctx)
	if err != nil {
		return nil, err
	}

	var viewer user.Type
	if u := a.session.User(); u != nil {
		viewer = u.UserType
	}
	g := page.Grid{State: page.GridContent, Markup: string(a.render.RoomList(rooms, viewer)), Count: len(rooms)}
	if len(rooms) == 0 {
		g.State = page.GridEmpty
	}
	a.page.SetGrid(page.ChatRoomsList, g)
	return rooms, nil
}

// OpenRoom makes id the current room, shows the composer, joins the room on
// the realtime channel and loads its history through the same append path
// used for live messages. A failed history fetch leaves the room open.
func (a *App) OpenRoom(ctx context.Context, id int64, title, otherUser string) error {
	a.mu.Lock()
	a.room = &chat.Current{ID: id, Title: title, OtherUser: otherUser}
	a.stopTypingLocked()
	ch := a.channel
	a.mu.Unlock()

	a.page.OpenChat(title, otherUser)
	if ch != nil {
		if err := ch.JoinRoom(id); err != nil && !errors.Is(err, realtime.ErrNotConnected) {
			slog.Warn("joining room", "room", id, "error", err)
		}
	}

	// The gateway already notified a failed fetch; the room stays open.
	msgs, err := a.client.RoomMessages(ctx, id)
	if err != nil {
		slog.Warn("loading room history", "room", id, "error", err)
		return nil
	}
	if !a.isCurrentRoom(id) {
		return ErrSuperseded
	}

	a.page.ClearTranscript()
	for _, m := range msgs {
		a.AppendMessage(m)
	}
	return nil
}

// CurrentRoom returns the open room, nil when none.
func (a *App) CurrentRoom() *chat.Current {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.room == nil {
		return nil
	}
	cp := *a.room
	return &cp
}

func (a *App) isCurrentRoom(id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.room != nil && a.room.ID == id
}

// AppendMessage renders a message into the transcript and scrolls to the
// bottom. Messages sent by the local user are marked as sent.
func (a *App) AppendMessage(m *chat.Message) {
	msg := *m
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = a.now()
	}
	sent := false
	if u := a.session.User(); u != nil {
		sent = msg.SenderID == u.ID
	}
	a.page.AppendTranscript(page.TranscriptEntry{
		Message: msg,
		Sent:    sent,
		Markup:  string(a.render.ChatMessage(&msg, sent)),
	})
}

// SendMessage posts text to the current room. Blank text or no open room is
// a no-op; a missing connection notifies the user.
func (a *App) SendMessage(text string) error {
	text = strings.TrimSpace(text)
	a.mu.Lock()
	room := a.room
	ch := a.channel
	a.mu.Unlock()

	if text == "" || room == nil {
		return nil
	}
	if ch == nil {
		a.notify(notify.Error, MsgNotConnected)
		return notify.Reported(realtime.ErrNotConnected)
	}
	if err := ch.SendMessage(room.ID, text); err != nil {
		a.notify(notify.Error, MsgNotConnected)
		return notify.Reported(err)
	}
	return nil
}

// Keystroke handles a key in the composer: enter sends composer, anything
// else emits a typing ping, at most one per typing interval.
func (a *App) Keystroke(key, composer string) error {
	if key == KeyEnter {
		return a.SendMessage(composer)
	}

	a.mu.Lock()
	room := a.room
	ch := a.channel
	a.mu.Unlock()
	if room == nil || ch == nil || !ch.Connected() {
		return nil
	}
	if !a.typingLimiter.Allow() {
		return nil
	}
	if err := ch.Typing(room.ID); err != nil && !errors.Is(err, realtime.ErrNotConnected) {
		slog.Debug("sending typing ping", "error", err)
	}
	return nil
}

// StartChatWithOwner creates or fetches the room for a listing, switches to
// the chat section and opens it.
func (a *App) StartChatWithOwner(ctx context.Context, propertyID, ownerID int64) (*chat.Room, error) {
	if err := a.requireLogin(MsgChatLogin, true); err != nil {
		return nil, err
	}

	room, err := a.client.CreateChatRoom(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	slog.Debug("chat room ready", "room", room.ID, "property", propertyID, "owner", ownerID)

	a.switchSection(page.Chat)
	if _, err := a.ListRooms(ctx); err != nil {
		slog.Debug("listing rooms", "error", err)
	}

	title := room.PropertyTitle
	if title == "" {
		title = defaultRoomTitle
	}
	var viewer user.Type
	if u := a.session.User(); u != nil {
		viewer = u.UserType
	}
	other := room.OtherParticipant(viewer)
	if other == "" {
		other = defaultRoomOther
	}

	if err := a.OpenRoom(ctx, room.ID, title, other); err != nil {
		return room, err
	}
	return room, nil
}

// Dispatch handles one inbound realtime event.
func (a *App) Dispatch(ev realtime.Event) {
	switch e := ev.(type) {
	case realtime.NewMessage:
		if a.isCurrentRoom(e.Message.RoomID) {
			a.AppendMessage(&e.Message)
			return
		}
		a.notify(notify.Info, MsgNewMessage)
	case realtime.UserTyping:
		a.userTyping(e)
	case realtime.ServerError:
		msg := e.Message
		if msg == "" {
			msg = MsgChatError
		}
		a.notify(notify.Error, msg)
	case realtime.ConnectionLost:
		a.notify(notify.Warning, MsgConnectionLost)
	default:
		slog.Warn("unhandled realtime event", "event", ev)
	}
}

// userTyping shows the typing indicator for the open room. A single timer
// keyed by room hides it TypingWindow after the latest event.
func (a *App) userTyping(e realtime.UserTyping) {
	if u := a.session.User(); u != nil && e.UserID == u.ID {
		return
	}

	a.mu.Lock()
	if a.room == nil || (e.RoomID != 0 && e.RoomID != a.room.ID) {
		a.mu.Unlock()
		return
	}
	roomID := a.room.ID
	if a.typingTimer != nil {
		a.typingTimer.Stop()
	}
	a.typingGen++
	gen := a.typingGen
	a.typingTimer = time.AfterFunc(a.typingWindow, func() { a.hideTyping(roomID, gen) })
	a.mu.Unlock()

	a.page.SetTyping(true)
}

func (a *App) hideTyping(roomID int64, gen uint64) {
	a.mu.Lock()
	stale := gen != a.typingGen || a.room == nil || a.room.ID != roomID
	if !stale {
		a.typingTimer = nil
	}
	a.mu.Unlock()

	if !stale {
		a.page.SetTyping(false)
	}
}

// stopTypingLocked cancels the typing timer. a.mu must be held.
func (a *App) stopTypingLocked() {
	if a.typingTimer != nil {
		a.typingTimer.Stop()
		a.typingTimer = nil
	}
	a.typingGen++
}
