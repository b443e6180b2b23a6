package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/ayusman/balloonpop/internal/game"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// spectatorBuffer is how many snapshots may queue for one spectator before
// new ones are dropped for it.
const spectatorBuffer = 16

type spectator struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub broadcasts per-tick game snapshots to websocket spectators. Each
// spectator has its own writer goroutine, so Broadcast never waits on the
// network.
type EventHub struct {
	logger  *log.Logger
	clients map[*spectator]bool
	mu      sync.Mutex
}

// NewEventHub creates a hub with no clients.
func NewEventHub(logger *log.Logger) *EventHub {
	if logger == nil {
		logger = log.Default()
	}
	return &EventHub{
		logger:  logger.With("component", "events"),
		clients: make(map[*spectator]bool),
	}
}

// Clients returns the number of connected spectators.
func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	sp := &spectator{conn: conn, send: make(chan []byte, spectatorBuffer)}
	h.mu.Lock()
	h.clients[sp] = true
	h.mu.Unlock()
	h.logger.Info("spectator joined", "remote", r.RemoteAddr)

	go h.writeLoop(sp)
	defer func() {
		h.remove(sp)
		h.logger.Info("spectator left", "remote", r.RemoteAddr)
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writeLoop sends queued snapshots until the hub closes sp.send. A failed
// write closes the connection, which ends the read loop in ServeHTTP.
func (h *EventHub) writeLoop(sp *spectator) {
	defer sp.conn.Close()

	for msg := range sp.send {
		sp.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sp.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("spectator write failed", "err", err)
			return
		}
	}
	sp.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
}

func (h *EventHub) remove(sp *spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sp] {
		delete(h.clients, sp)
		close(sp.send)
	}
}

// Broadcast queues snap for every spectator. A spectator whose queue is full
// misses this snapshot.
func (h *EventHub) Broadcast(snap game.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(snap)
	if err != nil {
		return
	}

	for sp := range h.clients {
		select {
		case sp.send <- msg:
		default:
		}
	}
}

// Close disconnects every spectator.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sp := range h.clients {
		delete(h.clients, sp)
		close(sp.send)
	}
}
