package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

type frame struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil, nil)
	router := gin.New()
	router.GET("/stream", hub.HandleConnection)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	welcome := read(t, conn)
	require.Equal(t, TypeWelcome, welcome.Type)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f frame
	require.NoError(t, sonic.Unmarshal(data, &f))
	return f
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, server := newTestServer(t)
	a := dial(t, server)
	b := dial(t, server)
	assert.Equal(t, 2, hub.Clients())

	hub.SetStatus("Saving...")

	for _, conn := range []*websocket.Conn{a, b} {
		f := read(t, conn)
		assert.Equal(t, TypeStatus, f.Type)
		assert.Equal(t, "Saving...", f.Payload["text"])
	}
}

func TestReplayToLateClient(t *testing.T) {
	hub, server := newTestServer(t)

	hub.SetButtonStates(types.ButtonStates{Save: true, Delete: true})
	hub.SetStatus("Unsaved changes")
	hub.ShowNotice("transient", types.NoticeInfo, time.Second)

	conn := dial(t, server)

	f := read(t, conn)
	assert.Equal(t, TypeStatus, f.Type)
	f = read(t, conn)
	assert.Equal(t, TypeButtons, f.Type)
	assert.Equal(t, true, f.Payload["save"])
	assert.Equal(t, false, f.Payload["send"])

	// Transient notices are not replayed
	hub.SetLoading(true, "Loading...")
	f = read(t, conn)
	assert.Equal(t, TypeLoading, f.Type)
}

func TestPersistentNoticeIsReplayed(t *testing.T) {
	hub, server := newTestServer(t)

	hub.ShowNotice("Storage unavailable", types.NoticeError, types.Persistent)
	conn := dial(t, server)

	f := read(t, conn)
	assert.Equal(t, TypeNotice, f.Type)
	assert.Equal(t, "Storage unavailable", f.Payload["message"])
	assert.Equal(t, float64(0), f.Payload["duration_ms"])
}

func TestShowEditorDropsStaleText(t *testing.T) {
	hub, server := newTestServer(t)

	content := "{}"
	hub.SetEditorText("old")
	hub.ShowEditor(&types.Entry{Path: "/a.json", Name: "a.json", Type: types.EntryFile, Content: &content})
	conn := dial(t, server)

	f := read(t, conn)
	assert.Equal(t, TypeEditor, f.Type)
	entry := f.Payload["entry"].(map[string]interface{})
	assert.Equal(t, "/a.json", entry["path"])

	hub.SetStatus("next")
	assert.Equal(t, TypeStatus, read(t, conn).Type)
}

func TestAgentConfigAndTranscript(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server)

	hub.ShowAgentConfig(nil, errors.New("missing configurations"))
	f := read(t, conn)
	assert.Equal(t, TypeAgentConfig, f.Type)
	assert.Equal(t, "missing configurations", f.Payload["error"])

	hub.ShowTranscript("/chats/c.json", []types.Message{{Role: "user", Content: "hi"}})
	f = read(t, conn)
	assert.Equal(t, TypeTranscript, f.Type)
	assert.Equal(t, "/chats/c.json", f.Payload["path"])
	assert.Len(t, f.Payload["messages"], 1)
}

func TestPingPong(t *testing.T) {
	_, server := newTestServer(t)
	conn := dial(t, server)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, TypePong, read(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)))
	f := read(t, conn)
	assert.Equal(t, TypeError, f.Type)
	assert.Equal(t, "unknown message type", f.Payload["message"])
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server)
	require.Equal(t, 1, hub.Clients())

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Broadcasting with no clients is harmless
	hub.SetStatus("idle")
}

func TestCloseRejectsNewClients(t *testing.T) {
	hub, server := newTestServer(t)
	hub.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

// stalledClient returns a client whose queue nobody drains
func stalledClient(t *testing.T, queue int) *client {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	return &client{id: "stalled", conn: <-conns, send: make(chan []byte, queue)}
}

func TestSlowClientIsDisconnected(t *testing.T) {
	hub, server := newTestServer(t)
	slow := stalledClient(t, 1)
	hub.mu.Lock()
	hub.clients[slow.id] = slow
	hub.mu.Unlock()

	hub.SetStatus("Saving...")
	hub.SetStatus("Saved")

	assert.Equal(t, 0, hub.Clients())
	_, ok := <-slow.send
	assert.True(t, ok, "queued messages are still delivered")
	_, ok = <-slow.send
	assert.False(t, ok, "the queue is closed after eviction")

	// a reconnecting client is brought up to date
	conn := dial(t, server)
	f := read(t, conn)
	assert.Equal(t, TypeStatus, f.Type)
	assert.Equal(t, "Saved", f.Payload["text"])
}
