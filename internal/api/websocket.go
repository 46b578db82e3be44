package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"feeding-frenzy/internal/game"
	"feeding-frenzy/internal/tracking"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal caps concurrent WebSocket clients
	MaxWSConnectionsTotal = 100

	// MaxWSConnectionsPerIP caps concurrent WebSocket clients per source IP
	MaxWSConnectionsPerIP = 10

	// StateBroadcastInterval paces game:state pushes (10 Hz)
	StateBroadcastInterval = 100 * time.Millisecond

	maxWSMessageBytes = 4096
	clientSendBuffer  = 32
	wsWriteWait       = time.Second
	wsPongWait        = 30 * time.Second
	wsPingPeriod      = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no Origin
		if origin == "" || IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// envelope is the wire shape of every server push.
type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// clientMessage is anything a client may send. Type selects the fields used:
// "input" (x, y, eating), "tracking" (nose_x, nose_y, lip_gap, lost) or "ultimate".
type clientMessage struct {
	Type string `json:"type"`
	inputRequest
	tracking.Raw
}

// wsClient owns one connection. Only its write pump writes to conn.
type wsClient struct {
	hub  *WebSocketHub
	conn *websocket.Conn
	ip   string
	send chan []byte
}

// WebSocketHub fans game state and events out to clients and routes their
// commands to the engine. A client that cannot keep up is disconnected.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}
	stopOnce   sync.Once

	engine    EngineInterface
	tracker   *tracking.Mapper
	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub. Client input is routed to engine, tracking
// samples through tracker.
func NewWebSocketHub(engine EngineInterface, tracker *tracking.Mapper) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*wsClient]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
		engine:     engine,
		tracker:    tracker,
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run owns the client set. It returns after Stop.
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("📱 Client connected from %s (%d total)", c.ip, count)
			UpdateWSConnections(count)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					log.Printf("⚠️ Dropping slow WebSocket client %s", c.ip)
					h.drop(c)
				}
			}
			count := len(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(count)
			IncrementWSMessages()
		}
	}
}

// drop removes c and closes its queue, which ends its write pump.
// Callers hold h.mu.
func (h *WebSocketHub) drop(c *wsClient) {
	delete(h.clients, c)
	close(c.send)
	h.wsLimiter.Release(c.ip)
}

// Stop closes every connection and ends Run and the broadcast loop.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Broadcast queues an event for every client. It drops the message when
// the hub is backed up.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("⚠️ WebSocket encode %s: %v", event, err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// BroadcastEvent pushes one engine event immediately. Safe to call from the
// engine's event handler: it never blocks.
func (h *WebSocketHub) BroadcastEvent(ev game.Event) {
	if h.ClientCount() == 0 {
		return
	}
	h.Broadcast("game:event", ev)
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes the latest snapshot every interval until Stop.
func (h *WebSocketHub) StartBroadcastLoop(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				if h.ClientCount() > 0 {
					h.Broadcast("game:state", h.engine.GetSnapshot())
				}
			}
		}
	}()
}

// HandleWebSocket upgrades the request after the connection caps pass.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	c := &wsClient{hub: h, conn: conn, ip: ip, send: make(chan []byte, clientSendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		h.wsLimiter.Release(ip)
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump applies client commands until the connection drops.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxWSMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		c.hub.handleMessage(c.ip, message)
	}
}

// writePump is the only writer on conn. It exits when the hub closes send.
func (c *wsClient) writePump() {
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage applies one client command. Malformed messages are dropped.
func (h *WebSocketHub) handleMessage(ip string, message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		RecordConnectionRejected("invalid")
		return
	}

	switch msg.Type {
	case "input":
		if in, ok := msg.inputRequest.toInput(); ok {
			h.engine.SetInput(in)
		}
	case "tracking":
		s := h.tracker.Map(msg.Raw)
		h.engine.SetInput(game.Input{X: s.X, Y: s.Y, Eating: s.Eating})
	case "ultimate":
		h.engine.RequestUltimate()
	default:
		log.Printf("📨 Unknown WebSocket message from %s: %q", ip, msg.Type)
	}
}
