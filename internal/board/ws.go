package board

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wolfman30/clinicflow/internal/queue"
	"github.com/wolfman30/clinicflow/pkg/logging"
)

const writeWait = 5 * time.Second

// Hub pushes queue-change notifications to connected browser clients so
// they can refetch the board instead of polling it.
type Hub struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger: logger.WithComponent("board-ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]*websocket.Conn),
	}
}

type queueUpdatedEvent struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// Run subscribes to the store and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context, store *queue.Store) {
	changes, cancel := store.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-changes:
			h.broadcast(queueUpdatedEvent{Type: "queue_updated", At: time.Now().UTC()})
		}
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.conns[id] = conn
	h.mu.Unlock()
	h.logger.Debug("board client connected", "conn_id", id)

	// Inbound frames are ignored; the read loop only detects disconnects.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.conns, id)
			h.mu.Unlock()
			_ = conn.Close()
			h.logger.Debug("board client disconnected", "conn_id", id)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			h.logger.Warn("broadcast failed, dropping client", "conn_id", id, "error", err)
			_ = conn.Close()
			delete(h.conns, id)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, id)
	}
}
