package domain

import (
	"time"

	"github.com/google/uuid"
)

// Toast is a transient notification for a message that arrived in a
// non-active room. It is never persisted and disappears after its TTL.
type Toast struct {
	ID         uuid.UUID
	RoomID     uuid.UUID
	SenderName string
	Preview    string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
