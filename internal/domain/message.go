package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message types as sent by the backend.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// Sender is the embedded author block on a wire message.
type Sender struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
}

// DisplayName prefers the full name, falling back to the username.
func (s Sender) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Username
}

// Message is a single chat message. Server-assigned id, immutable once
// created.
type Message struct {
	ID             uuid.UUID  `json:"id"`
	RoomID         uuid.UUID  `json:"room_id"`
	Sender         Sender     `json:"sender"`
	Type           string     `json:"message_type"`
	Content        string     `json:"content"`
	AttachmentURL  string     `json:"attachment_url,omitempty"`
	AttachmentName string     `json:"attachment_name,omitempty"`
	ReplyTo        *uuid.UUID `json:"reply_to,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	IsDeleted      bool       `json:"is_deleted,omitempty"`
}
