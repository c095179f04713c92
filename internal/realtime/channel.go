// Package realtime maintains the authenticated websocket used for live chat
// delivery and typing indicators.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrNotConnected is returned by outbound operations while no connection is open.
	ErrNotConnected = errors.New("realtime: not connected")
	// ErrNoToken is returned by Connect when there is no session token.
	ErrNoToken = errors.New("realtime: no session token")
	// ErrClosed is returned by Connect after Close.
	ErrClosed = errors.New("realtime: channel closed")
)

// State is the connection state of a Channel.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Defaults for Options fields left zero.
const (
	DefaultReconnectAttempts = 3
	DefaultBackoff           = time.Second
	DefaultPingInterval      = 30 * time.Second
	writeTimeout             = 10 * time.Second
	handshakeTimeout         = 15 * time.Second
)

// Options configures a Channel.
type Options struct {
	URL   string
	Token string
	// ReconnectAttempts bounds reconnection after a dropped connection.
	// Negative disables reconnecting.
	ReconnectAttempts int
	// Backoff is the linear step between attempts: attempt n waits n*Backoff.
	Backoff      time.Duration
	PingInterval time.Duration
}

// Channel is the single realtime connection of a session. One reader
// goroutine owns the connection and performs any reconnects, so at most one
// connection is open at a time.
type Channel struct {
	opts     Options
	dispatch Dispatcher
	dialer   *websocket.Dialer

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	room   int64
	closed bool

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// New creates a disconnected channel delivering inbound events to d.
func New(opts Options, d Dispatcher) *Channel {
	if opts.ReconnectAttempts == 0 {
		opts.ReconnectAttempts = DefaultReconnectAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if d == nil {
		d = DispatchFunc(func(Event) {})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Channel{
		opts:     opts,
		dispatch: d,
		dialer:   &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether a connection is open.
func (c *Channel) Connected() bool {
	return c.State() == Connected
}

// Connect opens the connection, authenticating with the session token.
// It is a no-op while a connection is open or being established.
func (c *Channel) Connect(ctx context.Context) error {
	if c.opts.Token == "" {
		return ErrNoToken
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != Disconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = Connecting
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(Disconnected)
		return err
	}
	if !c.attach(conn) {
		return ErrClosed
	}

	c.wg.Add(1)
	go c.run(conn)
	return nil
}

// JoinRoom subscribes to a room's events. The room is joined again after a
// reconnect.
func (c *Channel) JoinRoom(roomID int64) error {
	c.mu.Lock()
	c.room = roomID
	c.mu.Unlock()
	return c.send(EventJoinRoom, roomID)
}

// SendMessage posts a chat line to a room.
func (c *Channel) SendMessage(roomID int64, text string) error {
	return c.send(EventSendMessage, struct {
		RoomID  int64  `json:"room_id"`
		Message string `json:"message"`
	}{roomID, text})
}

// Typing tells the room the local user is typing.
func (c *Channel) Typing(roomID int64) error {
	return c.send(EventTyping, struct {
		RoomID   int64 `json:"room_id"`
		IsTyping bool  `json:"isTyping"`
	}{roomID, true})
}

// Close tears the connection down and stops any reconnect in progress.
// It waits for the reader goroutine to exit.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.state = Disconnected
	c.mu.Unlock()

	c.cancel()

	var err error
	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = conn.Close()
	}
	c.wg.Wait()
	return err
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing socket URL: %w", err)
	}
	q := u.Query()
	q.Set("token", c.opts.Token)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.opts.Token)

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Debug("closing handshake body", "error", cerr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// attach makes conn the active connection unless the channel was closed.
func (c *Channel) attach(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		if err := conn.Close(); err != nil {
			slog.Debug("closing late connection", "error", err)
		}
		return false
	}
	c.conn = conn
	c.state = Connected
	slog.Debug("chat connected", "url", c.opts.URL)
	return true
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Channel) send(event string, data interface{}) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == Connected
	c.mu.Unlock()
	if conn == nil || !connected {
		return ErrNotConnected
	}

	b, err := encode(event, data)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("sending %s: %w", event, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("sending %s: %w", event, err)
	}
	return nil
}

// run owns the connection: it reads until the connection fails, then
// reconnects or gives up.
func (c *Channel) run(conn *websocket.Conn) {
	defer c.wg.Done()
	for {
		err := c.readLoop(conn)
		if c.isClosed() {
			return
		}
		slog.Warn("chat connection lost", "error", err)

		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.state = Connecting
		c.mu.Unlock()
		if cerr := conn.Close(); cerr != nil {
			slog.Debug("closing dropped connection", "error", cerr)
		}

		conn = c.reconnect()
		if conn == nil {
			if c.isClosed() {
				return
			}
			c.setState(Disconnected)
			c.dispatch.Dispatch(ConnectionLost{Err: err})
			return
		}
	}
}

func (c *Channel) reconnect() *websocket.Conn {
	for attempt := 1; attempt <= c.opts.ReconnectAttempts; attempt++ {
		delay := time.Duration(attempt) * c.opts.Backoff
		select {
		case <-c.ctx.Done():
			return nil
		case <-time.After(delay):
		}

		conn, err := c.dial(c.ctx)
		if err != nil {
			slog.Warn("chat reconnect failed", "attempt", attempt, "error", err)
			continue
		}
		if !c.attach(conn) {
			return nil
		}

		c.mu.Lock()
		room := c.room
		c.mu.Unlock()
		if room != 0 {
			if err := c.send(EventJoinRoom, room); err != nil {
				slog.Warn("rejoining room", "room", room, "error", err)
			}
		}
		return conn
	}
	return nil
}

func (c *Channel) readLoop(conn *websocket.Conn) error {
	pongWait := 2 * c.opts.PingInterval
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	go c.pingLoop(conn, stop)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return err
		}

		ev, err := Decode(data)
		if err != nil {
			slog.Warn("ignoring malformed frame", "error", err)
			continue
		}
		if ev == nil {
			slog.Debug("ignoring unknown frame", "frame", string(data))
			continue
		}
		c.dispatch.Dispatch(ev)
	}
}

func (c *Channel) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
