package change

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var env wsEnvelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestWebSocketSnapshotThenBatches(t *testing.T) {
	s := NewWebSocket()
	srv := httptest.NewServer(s)
	defer srv.Close()
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Send(ctx, Batch{Seq: 1, Records: []Record{
		{Kind: ElementCreated, Element: 1, Tag: "svg"},
	}}))

	conn := dial(t, srv)
	env := read(t, conn)
	require.Equal(t, "snapshot", env.Type)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, uint64(1), snap.Seq)
	assert.Equal(t, "<svg/>", snap.SVG)

	require.Eventually(t, func() bool { return s.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Send(ctx, Batch{Seq: 2, Records: []Record{
		{Kind: AttributeUpdated, Element: 1, Key: "width", Value: "10"},
	}}))
	env = read(t, conn)
	require.Equal(t, "batch", env.Type)
	var b Batch
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, uint64(2), b.Seq)
	assert.Equal(t, "width", b.Records[0].Key)
}

func TestWebSocketRejectsInvalidBatch(t *testing.T) {
	s := NewWebSocket()
	defer s.Close()
	err := s.Send(context.Background(), Batch{Seq: 1, Records: []Record{
		{Kind: ElementAppended, Element: 2, Parent: 1},
	}})
	assert.ErrorIs(t, err, ErrOrdering)
}

func TestWebSocketClose(t *testing.T) {
	s := NewWebSocket()
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	read(t, conn)
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close())
	assert.Zero(t, s.Clients())
	assert.ErrorIs(t, s.Send(context.Background(), Batch{Seq: 1}), ErrSinkClosed)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "the server closes the connection")
}
