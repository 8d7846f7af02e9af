package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/domain"
	"github.com/vedran77/gtflow/internal/repository"
)

var (
	ErrNoActiveRoom  = errors.New("no active room")
	ErrSessionClosed = errors.New("chat session is closed")
)

const historyPageSize = 50

// RoomConn is a live connection scoped to a single room. It is the
// outbound send path; inbound messages come back through IngestRoom.
type RoomConn interface {
	Send(ctx context.Context, content string) error
	Close() error
}

// RoomDialer opens room-scoped connections (optional dependency, set after
// construction like the transport wiring it implements).
type RoomDialer interface {
	DialRoom(ctx context.Context, room *domain.Room) (RoomConn, error)
}

// Session is the chat-session context object. It owns every piece of
// per-room state the client keeps: message caches, unread counters,
// last message per sender, the sender-to-room table and the toast queue.
// Created after login, torn down on logout via Close; switching away from
// the chat view keeps the caches so coming back needs no refetch.
//
// All three ingestion paths (global listener, room listener, history
// fetch) funnel through the same per-room Cache merge, so overlapping
// delivery is harmless in any order.
type Session struct {
	selfID  int64
	rooms   repository.RoomRepository
	history repository.HistoryRepository
	dialer  RoomDialer

	mu        sync.Mutex
	caches    map[uuid.UUID]*Cache
	unread    map[uuid.UUID]int
	lastFrom  map[int64]domain.Message
	roomOf    map[int64]uuid.UUID
	roomsByID map[uuid.UUID]*domain.Room
	fetched   map[uuid.UUID]bool
	active    uuid.UUID
	conn      RoomConn
	closed    bool

	toasts *ToastQueue
}

func NewSession(selfID int64, rooms repository.RoomRepository, history repository.HistoryRepository) *Session {
	return &Session{
		selfID:    selfID,
		rooms:     rooms,
		history:   history,
		caches:    make(map[uuid.UUID]*Cache),
		unread:    make(map[uuid.UUID]int),
		lastFrom:  make(map[int64]domain.Message),
		roomOf:    make(map[int64]uuid.UUID),
		roomsByID: make(map[uuid.UUID]*domain.Room),
		fetched:   make(map[uuid.UUID]bool),
		toasts:    NewToastQueue(DefaultToastTTL),
	}
}

// SetDialer sets the room-connection dialer (optional dependency).
func (s *Session) SetDialer(d RoomDialer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialer = d
}

// SelfID returns the authenticated user's id.
func (s *Session) SelfID() int64 {
	return s.selfID
}

// SeedUnread primes the counters from the server's persisted values,
// called once right after login. Counters for rooms the session already
// tracks are left alone.
func (s *Session) SeedUnread(counts map[uuid.UUID]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for roomID, n := range counts {
		if _, tracked := s.unread[roomID]; !tracked {
			s.unread[roomID] = n
		}
	}
}

// IngestGlobal handles a message delivered on the session-wide listener.
// The message is always merged into its room's cache; bookkeeping (last
// message per sender, unread counter, toast) applies only when the sender
// is someone else, and the counter/toast only when the room is not the
// active one.
func (s *Session) IngestGlobal(msg domain.Message) {
	s.mu.Lock()
	inserted := s.cacheFor(msg.RoomID).Merge(msg)

	if msg.Sender.ID == s.selfID {
		s.mu.Unlock()
		return
	}

	s.lastFrom[msg.Sender.ID] = msg
	s.roomOf[msg.Sender.ID] = msg.RoomID

	notify := inserted && msg.RoomID != s.active
	if notify {
		s.unread[msg.RoomID]++
	}
	s.mu.Unlock()

	if notify {
		s.toasts.Push(msg.RoomID, msg.Sender.DisplayName(), msg.Content)
	}
}

// IngestRoom handles a message delivered on the room-scoped listener. A
// message already seen via the global listener is a no-op.
func (s *Session) IngestRoom(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheFor(msg.RoomID).Merge(msg)
}

// OpenConversation looks up (or lazily creates) the private room with the
// given user and activates it.
func (s *Session) OpenConversation(ctx context.Context, otherUserID int64) (*domain.Room, error) {
	room, err := s.rooms.GetOrCreatePrivate(ctx, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("opening conversation: %w", err)
	}

	s.mu.Lock()
	s.roomsByID[room.ID] = room
	if other, ok := room.OtherParticipant(s.selfID); ok {
		s.roomOf[other.ID] = room.ID
	}
	s.mu.Unlock()

	if err := s.Activate(ctx, room.ID); err != nil {
		return nil, err
	}
	return room, nil
}

// Activate makes a room the active one: its unread counter is reset in
// the same step as the switch, the previous room listener is torn down,
// a new one is dialed, and history is fetched once per room per session.
func (s *Session) Activate(ctx context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	prev := s.conn
	s.conn = nil
	s.active = roomID
	s.unread[roomID] = 0
	needHistory := !s.fetched[roomID]
	s.fetched[roomID] = true
	room := s.roomsByID[roomID]
	dialer := s.dialer
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	if dialer != nil {
		if room == nil {
			room = &domain.Room{ID: roomID}
		}
		conn, err := dialer.DialRoom(ctx, room)
		if err != nil {
			// The fetch never ran; let the next activation try again.
			if needHistory {
				s.mu.Lock()
				s.fetched[roomID] = false
				s.mu.Unlock()
			}
			return fmt.Errorf("connecting to room %s: %w", roomID, err)
		}
		s.mu.Lock()
		// The user may have switched again while we were dialing.
		if s.active != roomID || s.closed {
			s.mu.Unlock()
			conn.Close()
		} else {
			s.conn = conn
			s.mu.Unlock()
		}
	}

	if needHistory {
		if err := s.fetchHistory(ctx, roomID); err != nil {
			// Allow a retry on the next activation.
			s.mu.Lock()
			s.fetched[roomID] = false
			s.mu.Unlock()
			return err
		}
	}

	if err := s.rooms.MarkRead(ctx, roomID); err != nil {
		log.Printf("session: mark read %s: %v", roomID, err)
	}

	return nil
}

// Deactivate closes the chat view: the room listener is torn down but all
// caches and counters survive for the next visit.
func (s *Session) Deactivate() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.active = uuid.Nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Send transmits a message over the active room's connection. The local
// cache is updated only when the server echoes the message back; there
// is no optimistic insert.
func (s *Session) Send(ctx context.Context, content string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNoActiveRoom
	}
	return conn.Send(ctx, content)
}

// Messages returns the ordered messages cached for a room.
func (s *Session) Messages(roomID uuid.UUID) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[roomID]
	if !ok {
		return nil
	}
	return c.Messages()
}

// Unread returns a room's unread counter.
func (s *Session) Unread(roomID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[roomID]
}

// ActiveRoom returns the id of the currently open room, uuid.Nil if none.
func (s *Session) ActiveRoom() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Toasts returns the currently visible toasts.
func (s *Session) Toasts() []domain.Toast {
	return s.toasts.Active()
}

// RoomFor returns the room id last seen for a sender, if any.
func (s *Session) RoomFor(senderID int64) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.roomOf[senderID]
	return id, ok
}

// Conversations returns the last message received from each other user,
// newest first. This is the ordering and preview source for a
// conversation list.
func (s *Session) Conversations() []domain.Message {
	s.mu.Lock()
	out := make([]domain.Message, 0, len(s.lastFrom))
	for _, m := range s.lastFrom {
		out = append(out, m)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Close tears the session down on logout. Caches are discarded with it.
func (s *Session) Close() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.active = uuid.Nil
	s.closed = true
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// fetchHistory loads persisted messages and union-merges them with
// whatever live delivery already put in the cache. A late response for a
// room the user has since left still lands in the right cache; the merge
// is keyed by room id and idempotent, so it stays harmless.
func (s *Session) fetchHistory(ctx context.Context, roomID uuid.UUID) error {
	msgs, err := s.history.ListMessages(ctx, roomID, nil, historyPageSize)
	if err != nil {
		return fmt.Errorf("fetching history for %s: %w", roomID, err)
	}

	s.mu.Lock()
	s.cacheFor(roomID).MergeAll(msgs)
	s.mu.Unlock()
	return nil
}

// cacheFor must be called with s.mu held.
func (s *Session) cacheFor(roomID uuid.UUID) *Cache {
	c, ok := s.caches[roomID]
	if !ok {
		c = NewCache()
		s.caches[roomID] = c
	}
	return c
}
