package transport

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/songloop-games/songloop/internal/logging"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the game is joined by shared code, not cookies; any origin may connect
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket sessions and runs them.
type Handler struct {
	hub    *Hub
	gw     Gateway
	logger *zap.SugaredLogger
}

func NewHandler(hub *Hub, gw Gateway, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Handler{hub: hub, gw: gw, logger: logger.Named("ws")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("upgrade: %v", err)
		return
	}

	client := NewClient(conn, h.gw, h.logger)
	h.hub.Add(client)
	defer h.hub.Remove(client.ID)

	h.gw.Connected(client)
	client.Run()
}
