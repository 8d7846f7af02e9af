package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/vedran77/gtflow/internal/domain"
)

type recordingSink struct {
	global chan domain.Message
	room   chan domain.Message
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		global: make(chan domain.Message, 8),
		room:   make(chan domain.Message, 8),
	}
}

func (s *recordingSink) IngestGlobal(msg domain.Message) { s.global <- msg }
func (s *recordingSink) IngestRoom(msg domain.Message)   { s.room <- msg }

func waitFor(t *testing.T, ch chan domain.Message) domain.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
		return domain.Message{}
	}
}

func chatEvent(roomID, msgID uuid.UUID, content string) Event {
	payload := `{
		"id": "` + msgID.String() + `",
		"sender": {"id": 2, "username": "ana"},
		"message_type": "text",
		"content": "` + content + `",
		"created_at": "2025-06-01T12:00:00Z"
	}`
	return Event{
		Type:    EventTypeChatMessage,
		RoomID:  roomID,
		Message: []byte(payload),
	}
}

func TestDial_AttachesTokenQuery(t *testing.T) {
	gotToken := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken <- r.URL.Query().Get("token")
		c, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		c.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	conn, err := Dial(context.Background(), srv.URL+"/ws/notifications/", "tok-123")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "tok-123", <-gotToken)
}

func TestGlobalListener_DeliversChatMessages(t *testing.T) {
	roomID, msgID := uuid.New(), uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/notifications/", r.URL.Path)
		c, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, wsjson.Write(ctx, c, chatEvent(roomID, msgID, "ping")))
		// Non-chat events must be ignored, not crash the pump.
		require.NoError(t, wsjson.Write(ctx, c, Event{Type: EventTypeTyping, RoomID: roomID, UserID: 2, IsTyping: true}))
		require.NoError(t, wsjson.Write(ctx, c, chatEvent(roomID, uuid.New(), "pong")))
	}))
	defer srv.Close()

	sink := newRecordingSink()
	listener := NewGlobalListener(srv.URL, "tok", sink)
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Close()

	first := waitFor(t, sink.global)
	assert.Equal(t, msgID, first.ID)
	assert.Equal(t, roomID, first.RoomID)

	second := waitFor(t, sink.global)
	assert.Equal(t, "pong", second.Content)
}

func TestGlobalListener_AcceptsNewMessageAlias(t *testing.T) {
	roomID, msgID := uuid.New(), uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)

		event := chatEvent(roomID, msgID, "legacy shape")
		event.Type = EventTypeNewMessage
		require.NoError(t, wsjson.Write(context.Background(), c, event))
	}))
	defer srv.Close()

	sink := newRecordingSink()
	listener := NewGlobalListener(srv.URL, "tok", sink)
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Close()

	msg := waitFor(t, sink.global)
	assert.Equal(t, msgID, msg.ID)
	assert.Equal(t, roomID, msg.RoomID)
}

func TestDialer_RoomPathUsesSlug(t *testing.T) {
	gotPath := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath <- r.URL.Path
		c, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		c.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	sink := newRecordingSink()
	dialer := NewDialer(srv.URL, "tok", sink)

	room := &domain.Room{ID: uuid.New(), Slug: "dm-ana-bob"}
	conn, err := dialer.DialRoom(context.Background(), room)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "/ws/chat/dm-ana-bob/", <-gotPath)
}

func TestDialer_FallsBackToRoomID(t *testing.T) {
	gotPath := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath <- r.URL.Path
		c, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		c.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	sink := newRecordingSink()
	room := &domain.Room{ID: uuid.New()}
	conn, err := NewDialer(srv.URL, "tok", sink).DialRoom(context.Background(), room)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "/ws/chat/"+room.ID.String()+"/", <-gotPath)
}

func TestRoomListener_SendAndReceive(t *testing.T) {
	roomID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)

		ctx := context.Background()
		var frame struct {
			Type        string `json:"type"`
			Content     string `json:"content"`
			MessageType string `json:"message_type"`
		}
		require.NoError(t, wsjson.Read(ctx, c, &frame))
		assert.Equal(t, EventTypeChatMessage, frame.Type)
		assert.Equal(t, "hello room", frame.Content)
		assert.Equal(t, domain.MessageTypeText, frame.MessageType)

		// Echo it back the way the server would, with an assigned id.
		require.NoError(t, wsjson.Write(ctx, c, chatEvent(roomID, uuid.New(), "hello room")))
	}))
	defer srv.Close()

	sink := newRecordingSink()
	room := &domain.Room{ID: roomID, Slug: "dm"}
	conn, err := NewDialer(srv.URL, "tok", sink).DialRoom(context.Background(), room)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(context.Background(), "hello room"))

	echoed := waitFor(t, sink.room)
	assert.Equal(t, "hello room", echoed.Content)
	assert.Equal(t, roomID, echoed.RoomID)
}
