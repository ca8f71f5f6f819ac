package transport

import (
	"sync"

	"github.com/songloop-games/songloop/internal/logging"
	"go.uber.org/zap"
)

// Hub resolves connection ids to live clients. It knows nothing about rooms;
// the coordinator supplies the recipient ids for every fan-out.
type Hub struct {
	mtx     sync.RWMutex
	clients map[string]*Client

	logger *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Hub{
		clients: map[string]*Client{},
		logger:  logger.Named("hub"),
	}
}

func (h *Hub) Add(c *Client) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.clients[c.ID] = c
}

func (h *Hub) Remove(connID string) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	delete(h.clients, connID)
}

func (h *Hub) Get(connID string) (*Client, bool) {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	c, ok := h.clients[connID]
	return c, ok
}

// Send queues a frame for one connection. A miss is fine: the client may
// have dropped between snapshot and fan-out.
func (h *Hub) Send(connID string, frame []byte) {
	if c, ok := h.Get(connID); ok {
		c.Send(frame)
	}
}

// SendMany queues a frame for each listed connection.
func (h *Hub) SendMany(connIDs []string, frame []byte) {
	h.mtx.RLock()
	clients := make([]*Client, 0, len(connIDs))
	for _, id := range connIDs {
		if c, ok := h.clients[id]; ok {
			clients = append(clients, c)
		}
	}
	h.mtx.RUnlock()

	for _, c := range clients {
		c.Send(frame)
	}
}

// Count is exposed for the health endpoint.
func (h *Hub) Count() int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return len(h.clients)
}
