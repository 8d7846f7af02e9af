package service

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/domain"
)

// DefaultToastTTL is how long a toast stays visible.
const DefaultToastTTL = 5 * time.Second

const previewRunes = 60

// ToastQueue holds the transient notifications for messages arriving in
// non-active rooms. Entries expire on their own after the TTL: Active
// never returns an expired toast, and a timer prunes them from memory even
// if nobody looks.
type ToastQueue struct {
	mu     sync.Mutex
	ttl    time.Duration
	toasts []domain.Toast
}

func NewToastQueue(ttl time.Duration) *ToastQueue {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &ToastQueue{ttl: ttl}
}

// Push enqueues a toast for a message. The preview is the content cut to
// 60 runes.
func (q *ToastQueue) Push(roomID uuid.UUID, senderName, content string) domain.Toast {
	now := time.Now()
	t := domain.Toast{
		ID:         uuid.New(),
		RoomID:     roomID,
		SenderName: senderName,
		Preview:    truncatePreview(content),
		CreatedAt:  now,
		ExpiresAt:  now.Add(q.ttl),
	}

	q.mu.Lock()
	q.toasts = append(q.toasts, t)
	q.mu.Unlock()

	time.AfterFunc(q.ttl, func() { q.prune(time.Now()) })
	return t
}

// Active returns the toasts that have not yet expired, oldest first.
func (q *ToastQueue) Active() []domain.Toast {
	now := time.Now()
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Toast, 0, len(q.toasts))
	for _, t := range q.toasts {
		if now.Before(t.ExpiresAt) {
			out = append(out, t)
		}
	}
	return out
}

func (q *ToastQueue) prune(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.toasts[:0]
	for _, t := range q.toasts {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	q.toasts = kept
}

func truncatePreview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewRunes])
}
