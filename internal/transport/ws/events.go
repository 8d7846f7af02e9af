package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/domain"
)

// Event types - Server → Client
const (
	EventTypeChatMessage = "chat_message"
	// Older backends emit new_message on the notification channel with the
	// same payload; it is treated as an alias.
	EventTypeNewMessage     = "new_message"
	EventTypeMessageDeleted = "message_deleted"
	EventTypeTyping         = "typing"
	EventTypeReadReceipt    = "read_receipt"
	EventTypeUserJoined     = "user_joined"
	EventTypeUserLeft       = "user_left"
	EventTypeConnected      = "connection_established"
	EventTypeError          = "error"
)

// Event is the envelope for everything crossing the wire: {type, room_id,
// message}. The message key is polymorphic (a full message object on
// chat_message events, a plain string on error events) so it stays raw
// until the type is known.
type Event struct {
	Type    string          `json:"type"`
	RoomID  uuid.UUID       `json:"room_id,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`

	// Presence / typing / read-receipt fields
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	IsTyping bool   `json:"is_typing,omitempty"`

	MessageID string `json:"message_id,omitempty"`
}

// ChatMessage decodes the payload of a chat_message event. When the
// envelope carries a room id and the payload does not, the envelope's
// wins; the global channel addresses messages that way.
func (e *Event) ChatMessage() (*domain.Message, error) {
	var msg domain.Message
	if err := json.Unmarshal(e.Message, &msg); err != nil {
		return nil, err
	}
	if msg.RoomID == uuid.Nil {
		msg.RoomID = e.RoomID
	}
	return &msg, nil
}

// ErrorText decodes the payload of an error event.
func (e *Event) ErrorText() string {
	var s string
	if err := json.Unmarshal(e.Message, &s); err != nil {
		return string(e.Message)
	}
	return s
}

// sendFrame is the Client → Server shape for outbound messages.
type sendFrame struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}
