package change

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/compose"
)

// Snapshot is the full document sent to a client when it connects. Seq is
// the last batch the document includes.
type Snapshot struct {
	Seq uint64 `json:"seq"`
	SVG string `json:"svg"`
}

// WebSocket broadcasts batches to connected clients. It is an
// http.Handler: mount it on the path clients dial.
//
// The sink keeps a Replica of everything it has sent, so a client joining
// late first receives a snapshot envelope and then every later batch.
type WebSocket struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	mirror  *Replica
	closed  bool
}

type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) write(pm *websocket.PreparedMessage, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WritePreparedMessage(pm)
}

// WebSocketOption configures a WebSocket sink.
type WebSocketOption func(*WebSocket)

// WithWriteTimeout bounds each write to a client. Default: 5s.
func WithWriteTimeout(d time.Duration) WebSocketOption {
	return func(s *WebSocket) { s.writeTimeout = d }
}

// WithCheckOrigin sets the upgrader's origin check. By default only
// same-origin requests are accepted.
func WithCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(s *WebSocket) { s.upgrader.CheckOrigin = fn }
}

// NewWebSocket creates a WebSocket sink with no clients.
func NewWebSocket(opts ...WebSocketOption) *WebSocket {
	s := &WebSocket{
		writeTimeout: 5 * time.Second,
		clients:      make(map[*wsClient]struct{}),
		mirror:       NewReplica(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP upgrades the request and registers the connection.
func (s *WebSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		compose.Logger().Warn("change: websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &wsClient{conn: conn}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	snap := Snapshot{Seq: s.mirror.Seq(), SVG: s.mirror.SVG()}
	pm, err := prepare("snapshot", snap)
	if err == nil {
		err = c.write(pm, time.Now().Add(s.writeTimeout))
	}
	if err != nil {
		s.mu.Unlock()
		compose.Logger().Warn("change: websocket snapshot failed", "remote", r.RemoteAddr, "error", err)
		conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	// Clients only listen; reading detects the close.
	go func() {
		defer s.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Send applies the batch to the mirror and writes it to every client. A
// client that cannot be written to is disconnected; that does not fail
// the batch.
func (s *WebSocket) Send(ctx context.Context, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if err := s.mirror.Send(ctx, batch); err != nil {
		return err
	}
	if len(s.clients) == 0 {
		return nil
	}
	pm, err := prepare("batch", batch)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(s.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	for c := range s.clients {
		if err := c.write(pm, deadline); err != nil {
			compose.Logger().Warn("change: websocket client dropped", "remote", c.conn.RemoteAddr().String(), "error", err)
			delete(s.clients, c)
			c.conn.Close()
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (s *WebSocket) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every client. Later sends fail with ErrSinkClosed.
func (s *WebSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	for c := range s.clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
		delete(s.clients, c)
	}
	return nil
}

func (s *WebSocket) drop(c *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		c.conn.Close()
	}
}

func prepare(typ string, data any) (*websocket.PreparedMessage, error) {
	b, err := json.Marshal(envelope{Type: typ, Data: data})
	if err != nil {
		return nil, err
	}
	return websocket.NewPreparedMessage(websocket.TextMessage, b)
}
