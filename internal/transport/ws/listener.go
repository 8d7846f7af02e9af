package ws

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/vedran77/gtflow/internal/domain"
	"github.com/vedran77/gtflow/internal/service"
)

// Sink receives chat messages lifted off the wire. Both listeners feed
// the same sink so de-duplication happens in one place.
type Sink interface {
	IngestGlobal(msg domain.Message)
	IngestRoom(msg domain.Message)
}

// GlobalListener is the one session-wide subscription: it connects to the
// per-user notification channel and stays up for the life of the session,
// no matter which room is open. On a drop it makes a single reconnect
// attempt; after that the session has to be reopened to listen again.
type GlobalListener struct {
	baseURL string
	token   string
	sink    Sink

	mu      sync.Mutex
	conn    *Conn
	closed  bool
	retried bool
}

func NewGlobalListener(baseURL, token string, sink Sink) *GlobalListener {
	return &GlobalListener{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		sink:    sink,
	}
}

// Start dials the notification channel and pumps events in the
// background until Close.
func (g *GlobalListener) Start(ctx context.Context) error {
	conn, err := Dial(ctx, g.baseURL+"/ws/notifications/", g.token)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.conn = conn
	g.mu.Unlock()

	go g.pump(conn)
	return nil
}

func (g *GlobalListener) Close() {
	g.mu.Lock()
	g.closed = true
	conn := g.conn
	g.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (g *GlobalListener) pump(conn *Conn) {
	err := conn.ReadPump(context.Background(), g.handle)

	g.mu.Lock()
	closed, retried := g.closed, g.retried
	g.retried = true
	g.mu.Unlock()

	if closed || retried {
		return
	}

	log.Printf("ws: global listener dropped (%v), reconnecting once", err)
	next, dialErr := Dial(context.Background(), g.baseURL+"/ws/notifications/", g.token)
	if dialErr != nil {
		log.Printf("ws: global listener reconnect failed: %v", dialErr)
		return
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		next.Close()
		return
	}
	g.conn = next
	g.mu.Unlock()

	go g.pump(next)
}

func (g *GlobalListener) handle(event Event) {
	switch event.Type {
	case EventTypeChatMessage, EventTypeNewMessage:
		msg, err := event.ChatMessage()
		if err != nil {
			log.Printf("ws: bad chat_message on global channel: %v", err)
			return
		}
		g.sink.IngestGlobal(*msg)
	case EventTypeError:
		log.Printf("ws: server error: %s", event.ErrorText())
	}
	// typing / presence / read receipts are room-channel concerns
}

// RoomListener is the connection scoped to the currently open room. It
// delivers low-latency messages while the room is active and carries the
// outbound sends; it is torn down whenever the active room changes.
type RoomListener struct {
	conn *Conn
	sink Sink
}

// Dialer opens room listeners; it implements service.RoomDialer.
type Dialer struct {
	baseURL string
	token   string
	sink    Sink
}

func NewDialer(baseURL, token string, sink Sink) *Dialer {
	return &Dialer{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		sink:    sink,
	}
}

func (d *Dialer) DialRoom(ctx context.Context, room *domain.Room) (service.RoomConn, error) {
	slug := room.Slug
	if slug == "" {
		slug = room.ID.String()
	}

	conn, err := Dial(ctx, d.baseURL+"/ws/chat/"+slug+"/", d.token)
	if err != nil {
		return nil, err
	}

	l := &RoomListener{conn: conn, sink: d.sink}
	go func() {
		// The pump dies with the connection; room teardown closes it.
		_ = conn.ReadPump(context.Background(), l.handle)
	}()
	return l, nil
}

// Send transmits a text message over the room connection. The cache is
// only updated when the server echoes the message back with its assigned
// id and timestamp.
func (l *RoomListener) Send(ctx context.Context, content string) error {
	return l.conn.Send(ctx, sendFrame{
		Type:        EventTypeChatMessage,
		Content:     content,
		MessageType: domain.MessageTypeText,
	})
}

func (l *RoomListener) Close() error {
	return l.conn.Close()
}

func (l *RoomListener) handle(event Event) {
	switch event.Type {
	case EventTypeChatMessage, EventTypeNewMessage:
		msg, err := event.ChatMessage()
		if err != nil {
			log.Printf("ws: bad chat_message on room channel: %v", err)
			return
		}
		l.sink.IngestRoom(*msg)
	case EventTypeError:
		log.Printf("ws: server error: %s", event.ErrorText())
	}
}
