package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clockwork/internal/replay"
)

const (
	// MaxWSConnectionsTotal bounds total concurrent inspector clients.
	MaxWSConnectionsTotal = 500
	// MaxWSConnectionsPerIP bounds per-IP concurrent inspector clients.
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		// Local-only inspector: accept loopback origins, reject everything
		// else rather than trying to maintain an allow-list of web hosts.
		for _, allowed := range []string{"http://localhost", "http://127.0.0.1"} {
			if origin == allowed || strings.HasPrefix(origin, allowed+":") {
				return true
			}
		}
		return false
	},
}

type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// WebSocketHub fans out replay progress to connected inspector clients.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a hub with per-IP connection limiting.
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run processes register/unregister/broadcast events until the process
// exits; intended to run in its own goroutine.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()
			UpdateWSConnections(h.ClientCount())

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			UpdateWSConnections(h.ClientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			var failed []*wsClient
			for conn, client := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					failed = append(failed, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range failed {
				h.mu.Lock()
				delete(h.clients, client.conn)
				h.mu.Unlock()
				h.wsLimiter.Release(client.ip)
				client.conn.Close()
			}
		}
	}
}

// Broadcast sends an {event, data} envelope to every connected client,
// dropping the message under backpressure rather than blocking callers.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(map[string]interface{}{"event": event, "data": data})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartProgressLoop periodically broadcasts replay progress while clients
// are connected.
func (h *WebSocketHub) StartProgressLoop(ctrl *replay.Controller) {
	ticker := time.NewTicker(100 * time.Millisecond)
	go func() {
		for range ticker.C {
			if h.ClientCount() == 0 {
				continue
			}
			progress := ctrl.GetProgress()
			ratio := progress.Progress
			if !progress.IsReplaying {
				ratio = 0
			}
			UpdateReplayProgress(ratio)
			h.Broadcast("replay:progress", progress)
		}
	}()
}

// HandleWebSocket upgrades the request and registers the client.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: websocket upgrade failed: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	h.register <- client

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
