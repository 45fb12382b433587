package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// SnapshotFunc devolve o SummaryUpdate atual já serializado
type SnapshotFunc func(ctx context.Context) ([]byte, error)

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla aceita um único escritor por conexão
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub mantém as conexões do feed ao vivo. Todo cliente recebe todos os
// SummaryUpdate; ao conectar recebe o snapshot atual.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	snapshot SnapshotFunc

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub cria o hub com a política de origem informada; snapshot pode ser nil
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool, snapshot SnapshotFunc) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		snapshot: snapshot,
		clients:  make(map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	h.add(c)
	defer func() {
		h.remove(c)
		_ = conn.Close()
	}()

	h.sendSnapshot(r.Context(), c)

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "ping":
			b, _ := json.Marshal(pong{Type: "pong"})
			_ = c.write(b)
		case "snapshot":
			h.sendSnapshot(r.Context(), c)
		}
	}
}

// Broadcast envia o payload a todos os clientes conectados
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(payload); err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
		}
	}
}

// Clients devolve o número de conexões ativas
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendSnapshot(ctx context.Context, c *client) {
	if h.snapshot == nil {
		return
	}
	b, err := h.snapshot(ctx)
	if err != nil {
		h.log.Warn("ws snapshot failed", zap.Error(err))
		return
	}
	_ = c.write(b)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
