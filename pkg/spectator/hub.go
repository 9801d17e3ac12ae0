// Package spectator serves an optional HTTP/WebSocket surface a
// browser can use to watch a search in progress: a JSON board
// snapshot and a live feed of the same lines the engine's diagnostic
// Logger writes. Nothing else in the engine depends on this package;
// it is an observability add-on the driver mounts only when asked to.
package spectator

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mciura/antares/pkg/engine"
)

// Hub fans out search-progress lines to every connected WebSocket
// client, following TheKrainBow-gomoku's hub: a mutex-guarded client
// set and a buffered broadcast channel a producer never blocks on.
type Hub struct {
	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan string
	eng       *engine.Engine
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns a Hub reporting on eng's current position for board
// snapshots. eng's Engine methods are called from the HTTP handler
// goroutine, so the caller must ensure nothing else mutates eng
// concurrently without its own synchronization; the Hub adds no locking
// around eng.
func NewHub(eng *engine.Engine) *Hub {
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan string, 64),
		eng:       eng,
	}
}

// Publish enqueues line for delivery to every connected client. It
// never blocks: a full buffer drops the line, the same backpressure
// discipline analitics_ws.go's broadcast channel uses, since a
// spectator missing one diagnostic line is harmless and the search
// itself must never stall waiting for a slow browser.
func (h *Hub) Publish(line string) {
	select {
	case h.broadcast <- line:
	default:
	}
}

// Run fans out published lines until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				c.sendText(line)
			}
			h.mu.Unlock()
		}
	}
}

func (c *client) sendText(line string) {
	select {
	case c.send <- []byte(line):
	default:
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Router builds the chi.Router serving a board snapshot at GET /board
// and the live feed at GET /ws, grounded on the same routing style
// TheKrainBow-gomoku's backend mounts its handlers with.
func (h *Hub) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/board", h.handleBoard)
	r.Get("/ws", h.handleWS)
	return r
}

type boardSnapshot struct {
	Board  string `json:"board"`
	ToMove string `json:"to_move"`
	Winner string `json:"winner"`
}

func (h *Hub) handleBoard(w http.ResponseWriter, r *http.Request) {
	pos := h.eng.Position()
	snapshot := boardSnapshot{
		Board:  h.eng.GetBoardString(),
		ToMove: pos.ToMove().String(),
		Winner: winnerName(h.eng.Winner()),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

func winnerName(w engine.Outcome) string {
	switch w {
	case engine.WhiteWon:
		return "white"
	case engine.Draw:
		return "draw"
	case engine.BlackWon:
		return "black"
	default:
		return "none"
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 16)}
	h.register(c)

	go func() {
		defer conn.Close()
		for msg := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}
