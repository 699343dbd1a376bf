package api

import (
	"context"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/everforgeworks/study-ascension/internal/game"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub starts the hub and an HTTP server and connects one socket.
func dialHub(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()
	srv := newTestServer(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.hub.Run(ctx)
		close(done)
	}()

	ts := httptest.NewServer(srv.Routes())
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
		ts.Close()
	})
	return srv, conn
}

// readUntil reads messages until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) (Message, []string) {
	t.Helper()
	var seen []string
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var m Message
		require.NoError(t, conn.ReadJSON(&m))
		seen = append(seen, m.Type)
		if m.Type == msgType {
			return m, seen
		}
	}
}

func TestHub_IntentOverSocket(t *testing.T) {
	_, conn := dialHub(t)

	require.NoError(t, conn.WriteJSON(Intent{Type: IntentClick}))
	m, seen := readUntil(t, conn, TypeResult)
	assert.NotEqual(t, "system", m.Sender, "answers carry the client id")

	payload, ok := m.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, IntentClick, payload["intent"])
	assert.Equal(t, "1", payload["value"])

	// The click unlocked achievements, which are broadcast as notifications.
	// Broadcasts and replies may interleave in either order.
	if !slices.Contains(seen, TypeNotification) {
		readUntil(t, conn, TypeNotification)
	}
}

func TestHub_ErrorsGoBackToTheSender(t *testing.T) {
	_, conn := dialHub(t)

	require.NoError(t, conn.WriteJSON(Intent{Type: IntentBuy, Key: "student"}))
	m, _ := readUntil(t, conn, TypeError)

	payload, ok := m.Payload.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 402, payload["status"])
	assert.Equal(t, IntentBuy, payload["intent"])

	require.NoError(t, conn.WriteJSON(Intent{Type: "teleport"}))
	m, _ = readUntil(t, conn, TypeError)
	assert.EqualValues(t, 400, m.Payload.(map[string]any)["status"])
}

func TestHub_Pulse(t *testing.T) {
	srv, conn := dialHub(t)

	// A round trip guarantees the client is registered before the pulse.
	require.NoError(t, conn.WriteJSON(Intent{Type: IntentState}))
	readUntil(t, conn, TypeResult)

	srv.hub.Pulse(srv.engine.View())
	m, _ := readUntil(t, conn, TypeStatePulse)
	assert.Equal(t, "system", m.Sender)
	payload, ok := m.Payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, payload, "wallet")
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(discard())

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 2*sendBuffer; i++ {
			hub.Notify(game.Notification{Key: "MSG_TEST"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}
