package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Message types pushed to clients
const (
	TypeWelcome     = "system"
	TypeTree        = "tree"
	TypeLoading     = "loading"
	TypeNotice      = "notice"
	TypeEditor      = "editor"
	TypeEditorText  = "editor_text"
	TypeStatus      = "status"
	TypeButtons     = "buttons"
	TypeAgentConfig = "agent_config"
	TypeTranscript  = "transcript"
	TypePong        = "pong"
	TypeError       = "error"
)

// replayOrder is the order cached view state is sent to a new client
var replayOrder = []string{
	TypeTree, TypeLoading, TypeEditor, TypeEditorText, TypeStatus,
	TypeButtons, TypeAgentConfig, TypeTranscript, TypeNotice,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Recorder observes WebSocket traffic
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

type nopRecorder struct{}

func (nopRecorder) IncWSConnections()              {}
func (nopRecorder) DecWSConnections()              {}
func (nopRecorder) RecordWSMessage(string, string) {}

// Hub fans controller output out to every connected client.
// It implements workspace.View and session.Renderer.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	last    map[string][]byte
	closed  bool

	wg      sync.WaitGroup
	logger  *logging.Logger
	metrics Recorder
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	gone bool // guarded by Hub.mu
}

// NewHub creates an empty hub
func NewHub(logger *logging.Logger, metrics Recorder) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Hub{
		clients: make(map[string]*client),
		last:    make(map[string][]byte),
		logger:  logger.Named("ws"),
		metrics: metrics,
	}
}

// HandleConnection upgrades the request and streams view updates until the client leaves
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer+len(replayOrder)),
	}
	if !h.register(cl) {
		conn.Close()
		return
	}

	h.wg.Add(1)
	go h.writePump(cl)
	h.readPump(cl)
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their writers to exit
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		h.unregister(cl)
	}
	h.wg.Wait()
}

func (h *Hub) register(cl *client) bool {
	welcome, _ := encode(TypeWelcome, map[string]string{
		"message":   "Connected to workspace",
		"client_id": cl.id,
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl.id] = cl
	cl.send <- welcome
	for _, typ := range replayOrder {
		if msg, ok := h.last[typ]; ok {
			cl.send <- msg
		}
	}

	h.metrics.IncWSConnections()
	h.logger.Debug("Client connected", zap.String("client_id", cl.id))
	return true
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	removed := h.removeLocked(cl)
	h.mu.Unlock()

	if removed {
		h.logger.Debug("Client disconnected", zap.String("client_id", cl.id))
	}
}

// removeLocked forgets cl and closes its queue. h.mu must be held.
func (h *Hub) removeLocked(cl *client) bool {
	if cl.gone {
		return false
	}
	cl.gone = true
	delete(h.clients, cl.id)
	close(cl.send)
	h.metrics.DecWSConnections()
	return true
}

// evictLocked disconnects a client whose queue is full. Its view state is
// stale from here on, so it has to reconnect and take the replay.
// h.mu must be held.
func (h *Hub) evictLocked(cl *client, typ string) {
	if !h.removeLocked(cl) {
		return
	}
	h.logger.Warn("Client send buffer full, disconnecting",
		zap.String("client_id", cl.id),
		zap.String("type", typ))
	cl.conn.Close()
}

func (h *Hub) readPump(cl *client) {
	defer func() {
		h.unregister(cl)
		cl.conn.Close()
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.direct(cl, TypeError, map[string]string{"message": "malformed message"})
			continue
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case "ping":
			h.direct(cl, TypePong, nil)
		default:
			h.direct(cl, TypeError, map[string]string{"message": "unknown message type"})
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
		h.wg.Done()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encode(typ string, payload interface{}) ([]byte, error) {
	return sonic.Marshal(types.WSMessage{Type: typ, Payload: payload})
}

// direct queues a message for one client without caching it
func (h *Hub) direct(cl *client, typ string, payload interface{}) {
	data, err := encode(typ, payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl.id]; !ok {
		return
	}
	select {
	case cl.send <- data:
		h.metrics.RecordWSMessage("out", typ)
	default:
		h.evictLocked(cl, typ)
	}
}

// broadcast queues a message for every client; cache keeps it for replay
func (h *Hub) broadcast(typ string, payload interface{}, cache bool) {
	data, err := encode(typ, payload)
	if err != nil {
		h.logger.Error("Failed to encode view message", zap.String("type", typ), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if cache {
		h.last[typ] = data
	}
	for _, cl := range h.clients {
		select {
		case cl.send <- data:
			h.metrics.RecordWSMessage("out", typ)
		default:
			h.evictLocked(cl, typ)
		}
	}
}
