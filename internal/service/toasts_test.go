package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastQueue_PushAndExpire(t *testing.T) {
	q := NewToastQueue(30 * time.Millisecond)
	roomID := uuid.New()

	q.Push(roomID, "ana", "hello there")

	active := q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, roomID, active[0].RoomID)
	assert.Equal(t, "ana", active[0].SenderName)
	assert.Equal(t, "hello there", active[0].Preview)

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, q.Active(), "toast must disappear after its ttl")
}

func TestToastQueue_IndependentExpiry(t *testing.T) {
	q := NewToastQueue(80 * time.Millisecond)
	roomID := uuid.New()

	q.Push(roomID, "ana", "first")
	time.Sleep(50 * time.Millisecond)
	q.Push(roomID, "bob", "second")

	// The first is near expiry, the second fresh.
	time.Sleep(50 * time.Millisecond)
	active := q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Preview)
}

func TestToastQueue_PreviewTruncatedTo60Runes(t *testing.T) {
	q := NewToastQueue(time.Minute)

	long := strings.Repeat("ю", 100)
	toast := q.Push(uuid.New(), "ana", long)

	assert.Equal(t, strings.Repeat("ю", 60), toast.Preview)
}

func TestToastQueue_ShortContentKeptWhole(t *testing.T) {
	q := NewToastQueue(time.Minute)
	toast := q.Push(uuid.New(), "ana", "short")
	assert.Equal(t, "short", toast.Preview)
}
