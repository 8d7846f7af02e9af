package domain

import (
	"time"

	"github.com/google/uuid"
)

// Room types.
const (
	RoomTypePrivate = "private"
	RoomTypeProject = "project"
	RoomTypeGlobal  = "global"
)

// Room is a chat channel. Private rooms pair exactly two participants and
// are created lazily on first contact; requesting the room for an existing
// pair returns the same room.
type Room struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Type         string    `json:"room_type"`
	ProjectID    *int64    `json:"project_id,omitempty"`
	Participants []Sender  `json:"participants,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	// Joined fields from the room list endpoint
	UnreadCount int      `json:"unread_count,omitempty"`
	LastMessage *Message `json:"last_message,omitempty"`
}

// OtherParticipant returns the participant that is not selfID. Only
// meaningful for private rooms.
func (r *Room) OtherParticipant(selfID int64) (Sender, bool) {
	for _, p := range r.Participants {
		if p.ID != selfID {
			return p, true
		}
	}
	return Sender{}, false
}
