package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/domain"
)

type ChatRepo struct {
	c *Client
}

func NewChatRepo(c *Client) *ChatRepo {
	return &ChatRepo{c: c}
}

// GetOrCreatePrivate returns the direct-message room with another user.
// The backend creates it on first contact; asking again for the same pair
// answers with the existing room.
func (r *ChatRepo) GetOrCreatePrivate(ctx context.Context, otherUserID int64) (*domain.Room, error) {
	var room domain.Room
	input := map[string]int64{"user_id": otherUserID}
	if err := r.c.do(ctx, http.MethodPost, "/api/v1/chat/rooms/private/", input, &room); err != nil {
		return nil, fmt.Errorf("get or create private room: %w", err)
	}
	return &room, nil
}

// List returns the rooms the caller participates in, most recently
// active first.
func (r *ChatRepo) List(ctx context.Context) ([]domain.Room, error) {
	return getList[domain.Room](ctx, r.c, "/api/v1/chat/rooms/")
}

// ListMessages returns a room's persisted history, oldest first. A nil
// before cursor starts from the newest messages.
func (r *ChatRepo) ListMessages(ctx context.Context, roomID uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	path := "/api/v1/chat/rooms/" + roomID.String() + "/messages/?limit=" + strconv.Itoa(limit)
	if before != nil {
		path += "&before=" + before.String()
	}
	return getList[domain.Message](ctx, r.c, path)
}

// MarkRead marks everything in a room as read for the caller.
func (r *ChatRepo) MarkRead(ctx context.Context, roomID uuid.UUID) error {
	return r.c.do(ctx, http.MethodPost, "/api/v1/chat/rooms/"+roomID.String()+"/mark-read/", nil, nil)
}

// UnreadCounts returns the server-side unread counter per room, used to
// seed the session's counters on startup.
func (r *ChatRepo) UnreadCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	var body struct {
		ByRoom map[string]struct {
			UnreadCount int `json:"unread_count"`
		} `json:"by_room"`
	}
	if err := r.c.do(ctx, http.MethodGet, "/api/v1/chat/unread/", nil, &body); err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(body.ByRoom))
	for key, entry := range body.ByRoom {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		counts[id] = entry.UnreadCount
	}
	return counts, nil
}
