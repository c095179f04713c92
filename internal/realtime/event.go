package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/evcraddock/nearby/internal/chat"
)

// Event names on the wire.
const (
	EventNewMessage  = "new_message"
	EventUserTyping  = "user_typing"
	EventError       = "error"
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
)

// frame is the JSON text frame exchanged with the chat server.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is an inbound event. The concrete types are NewMessage, UserTyping,
// ServerError and ConnectionLost.
type Event interface {
	event()
}

// NewMessage is a chat line delivered live.
type NewMessage struct {
	Message chat.Message
}

// UserTyping reports that a participant is typing.
type UserTyping struct {
	RoomID int64 `json:"room_id,omitempty"`
	UserID int64 `json:"userId"`
}

// ServerError is an error reported by the chat server. It never affects the
// connection.
type ServerError struct {
	Message string `json:"message"`
}

// ConnectionLost is delivered once when the connection is lost and every
// reconnect attempt failed.
type ConnectionLost struct {
	Err error
}

func (NewMessage) event()     {}
func (UserTyping) event()     {}
func (ServerError) event()    {}
func (ConnectionLost) event() {}

// Dispatcher receives inbound events. Dispatch is called from the channel's
// reader goroutine, one event at a time.
type Dispatcher interface {
	Dispatch(Event)
}

// DispatchFunc adapts a function to a Dispatcher.
type DispatchFunc func(Event)

// Dispatch calls f.
func (f DispatchFunc) Dispatch(e Event) { f(e) }

// Decode parses a text frame. Unknown events return a nil Event.
func Decode(data []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}

	switch f.Event {
	case EventNewMessage:
		var m chat.Message
		if err := json.Unmarshal(f.Data, &m); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f.Event, err)
		}
		return NewMessage{Message: m}, nil
	case EventUserTyping:
		var t UserTyping
		if len(f.Data) > 0 {
			if err := json.Unmarshal(f.Data, &t); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", f.Event, err)
			}
		}
		return t, nil
	case EventError:
		var e ServerError
		if len(f.Data) > 0 && json.Unmarshal(f.Data, &e) != nil {
			// Some servers send the message as a bare string.
			var s string
			if json.Unmarshal(f.Data, &s) == nil {
				e.Message = s
			}
		}
		return e, nil
	default:
		return nil, nil
	}
}

func encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", event, err)
	}
	b, err := json.Marshal(frame{Event: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", event, err)
	}
	return b, nil
}
