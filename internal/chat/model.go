// Package chat provides the chat room and message records exchanged with the
// marketplace chat service.
package chat

import (
	"time"

	"github.com/evcraddock/nearby/internal/user"
)

// Room is a conversation about one property between a student and its owner.
type Room struct {
	ID            int64  `json:"id"`
	PropertyID    int64  `json:"property_id,omitempty"`
	PropertyTitle string `json:"property_title"`
	StudentID     int64  `json:"student_id,omitempty"`
	StudentName   string `json:"student_name"`
	OwnerID       int64  `json:"owner_id,omitempty"`
	OwnerName     string `json:"owner_name"`
	LastMessage   string `json:"last_message,omitempty"`
}

// OtherParticipant returns the name of the participant who is not the viewer:
// students see the owner, owners see the student.
func (r *Room) OtherParticipant(viewer user.Type) string {
	if viewer == user.Student {
		return r.OwnerName
	}
	return r.StudentName
}

// Message is a single chat line, historical or live.
type Message struct {
	ID         int64     `json:"id,omitempty"`
	RoomID     int64     `json:"room_id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// Current identifies the room open in the chat view.
type Current struct {
	ID        int64
	Title     string
	OtherUser string
}
