package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum-dashboard/internal/interaction"
)

func serveHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.HandleWSRequest(conn, r.URL.Query().Get("last_ts"))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEnvelopes reads one frame and splits coalesced envelopes.
func readEnvelopes(t *testing.T, conn *websocket.Conn) []envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var out []envelope
	for _, line := range bytes.Split(msg, []byte{'\n'}) {
		var env envelope
		require.NoError(t, json.Unmarshal(line, &env))
		out = append(out, env)
	}
	return out
}

func TestHub_InitialStateOnConnect(t *testing.T) {
	h := NewHub(nil)
	h.Broadcaster.Broadcast("slot:currentPrice", []byte(`{"value":"9,138.9"}`), true)

	conn := serveHub(t, h)
	envs := readEnvelopes(t, conn)
	require.NotEmpty(t, envs)
	assert.Equal(t, "slot:currentPrice", envs[0].Channel)
	assert.True(t, envs[0].Initial)
}

func TestHub_ForwardsUIEvents(t *testing.T) {
	h := NewHub(nil)
	got := make(chan interaction.Event, 1)
	h.OnEvent = func(ev interaction.Event) { got <- ev }

	conn := serveHub(t, h)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"click","target":"nav-models","href":"#models"}`)))

	select {
	case ev := <-got:
		assert.Equal(t, interaction.Event{Type: "click", Target: "nav-models", Href: "#models"}, ev)
	case <-time.After(5 * time.Second):
		t.Fatal("event not forwarded")
	}
}

func TestHub_PingPong(t *testing.T) {
	h := NewHub(nil)
	conn := serveHub(t, h)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"ping":123}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var pong struct {
		Type string `json:"type"`
		Ping int64  `json:"ping"`
	}
	require.NoError(t, json.Unmarshal(msg, &pong))
	assert.Equal(t, "pong", pong.Type)
	assert.Equal(t, int64(123), pong.Ping)
}

func TestHub_ClientRemovedOnClose(t *testing.T) {
	h := NewHub(nil)
	conn := serveHub(t, h)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_BuildMetrics(t *testing.T) {
	h := NewHub(nil)
	now := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	msg := h.BuildMetrics(now.Add(-time.Minute), now)
	assert.True(t, msg.MarketOpen)
	assert.Equal(t, "LSE open, closes 16:30", msg.MarketStatus)
	assert.Positive(t, msg.Metrics.Goroutines)
}
