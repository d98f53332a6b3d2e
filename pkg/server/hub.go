package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/arose/molstar/pkg/export"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 16,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type message struct {
	Type   string            `json:"type"`
	Meshes []export.MeshData `json:"meshes,omitempty"`
}

// conn serializes writes to one websocket.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

type hub struct {
	mu    sync.Mutex
	conns map[*conn]struct{}
}

func newHub() *hub {
	return &hub{conns: make(map[*conn]struct{})}
}

func (h *hub) add(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		c.ws.Close()
	}
}

func (h *hub) snapshot() []*conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		out = append(out, c)
	}
	return out
}

func (h *hub) broadcast(m message) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("broadcast", "err", err)
		return
	}
	for _, c := range h.snapshot() {
		if err := c.write(data); err != nil {
			slog.Debug("dropping websocket client", "err", err)
			h.remove(c)
		}
	}
}

func (h *hub) closeAll() {
	for _, c := range h.snapshot() {
		h.remove(c)
	}
}

// serveWebsocket upgrades the request, sends the current meshes and keeps the
// connection registered until the client goes away.
func (s *Server) serveWebsocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	cl := &conn{ws: ws}
	s.hub.add(cl)
	data, err := json.Marshal(message{Type: "meshes", Meshes: s.session.Meshes()})
	if err == nil {
		err = cl.write(data)
	}
	if err != nil {
		s.hub.remove(cl)
		return nil
	}
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			s.hub.remove(cl)
			return nil
		}
	}
}
