package ws

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	dialWait       = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
)

// Conn is a single client WebSocket connection. The read pump delivers
// decoded events to the handler until the connection dies; writes are
// serialized because the underlying connection allows one writer at a
// time.
type Conn struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to endpoint, attaching the access token as a ?token=
// query param (WebSocket upgrades can't carry headers from a browser, so
// the server reads it from the URL).
func Dial(ctx context.Context, endpoint, token string) (*Conn, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	dialCtx, cancel := context.WithTimeout(ctx, dialWait)
	defer cancel()

	c, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(maxMessageSize)

	conn := &Conn{
		conn: c,
		done: make(chan struct{}),
	}
	go conn.pingLoop()
	return conn, nil
}

// ReadPump decodes events and hands them to onEvent until the connection
// drops, then returns the terminal error. Run it in its own goroutine.
func (c *Conn) ReadPump(ctx context.Context, onEvent func(Event)) error {
	defer c.Close()

	for {
		var event Event
		if err := wsjson.Read(ctx, c.conn, &event); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: connection closed: %v", err)
			}
			return err
		}
		onEvent(event)
	}
}

// Send writes one JSON frame with a write deadline.
func (c *Conn) Send(ctx context.Context, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsjson.Write(writeCtx, c.conn, v)
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close(websocket.StatusNormalClosure, "")
	})
	return nil
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
