package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/stockdash/internal/dashboard"
	"github.com/seenimoa/stockdash/internal/report"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; restrict in production
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outbound messages buffered per client before it counts as stalled.
	sendBuffer = 16
)

// Message types. Inbound: symbol, period, toggle_summary, refresh, ping.
// Outbound: render, error, pong, flushed.
const (
	MsgSymbol        = "symbol"
	MsgPeriod        = "period"
	MsgToggleSummary = "toggle_summary"
	MsgRefresh       = "refresh"
	MsgPing          = "ping"

	MsgRender  = "render"
	MsgError   = "error"
	MsgPong    = "pong"
	MsgFlushed = "flushed"
)

// WSRequest is a message received from the browser.
type WSRequest struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// handleWebSocket upgrades the connection and re-renders the dashboard
// fragment on every input the browser sends. The connection shares the
// caller's cookie session, or gets a new one.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, sid, created := s.sessions.lookup(s.sessionID(r))

	var header http.Header
	if created {
		header = http.Header{"Set-Cookie": {s.sessionCookie(sid).String()}}
	}
	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newWSClient(s.wsHub)
	s.wsHub.Register(client)

	// Start reader and writer goroutines
	go wsWritePump(conn, client)
	go s.wsReadPump(conn, client, sess)
}

// wsReadPump reads browser inputs, applies them to the session and
// replies with a freshly rendered fragment. Inputs on one connection are
// handled in order.
func (s *Server) wsReadPump(conn *websocket.Conn, client *WSClient, sess *session) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", "error", err)
			}
			return
		}

		var req WSRequest
		if err := json.Unmarshal(message, &req); err != nil {
			client.push(WSMessage{Type: MsgError, Data: "invalid message"})
			continue
		}

		reply := s.handleWSRequest(ctx, sess, req)
		if !client.push(reply) {
			return
		}
	}
}

// handleWSRequest applies one input and returns the reply to send.
func (s *Server) handleWSRequest(ctx context.Context, sess *session, req WSRequest) WSMessage {
	var inputErr error
	var st dashboard.SessionState

	switch req.Type {
	case MsgPing:
		return WSMessage{Type: MsgPong}
	case MsgSymbol:
		st = sess.update(func(st *dashboard.SessionState) { st.SetSymbol(req.Value) })
	case MsgPeriod:
		st = sess.update(func(st *dashboard.SessionState) { inputErr = st.SetPeriod(req.Value) })
	case MsgToggleSummary:
		st = sess.update(func(st *dashboard.SessionState) { st.ToggleSummary() })
	case MsgRefresh:
		st = sess.update(nil)
	default:
		return WSMessage{Type: MsgError, Data: fmt.Sprintf("unknown message type %q", req.Type)}
	}
	if inputErr != nil {
		return WSMessage{Type: MsgError, Data: inputErr.Error()}
	}

	page := s.renderer.Render(ctx, &st)
	frag, err := report.GenerateFragment(page, s.pageCfg)
	if err != nil {
		s.log.Error("render fragment", "symbol", st.Symbol, "error", err)
		return WSMessage{Type: MsgError, Data: "failed to render dashboard"}
	}
	return WSMessage{Type: MsgRender, Data: frag}
}

// wsWritePump pumps messages from the client queue to the connection.
func wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(msg)
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-client.done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSHub tracks live connections for broadcasts.
type WSHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub       *WSHub
	send      chan WSMessage
	done      chan struct{}
	closeOnce sync.Once
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{clients: make(map[*WSClient]struct{})}
}

func newWSClient(hub *WSHub) *WSClient {
	return &WSClient{
		hub:  hub,
		send: make(chan WSMessage, sendBuffer),
		done: make(chan struct{}),
	}
}

// push queues msg without blocking. It returns false when the client is
// closed or stalled; a stalled client is disconnected.
func (c *WSClient) push(msg WSMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.hub.Unregister(c)
		return false
	}
}

func (c *WSClient) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.push(msg)
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes it.
func (h *WSHub) Unregister(client *WSClient) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	client.close()
}

// CloseAll disconnects every client.
func (h *WSHub) CloseAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}
