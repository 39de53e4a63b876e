// Package notify fans committed game events out to websocket spectators.
// The feed is read-only: clients receive phase and action events rendered
// from the stable phase vocabulary, and can never submit actions.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cardquest/duel-server-go/internal/game"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Spectator feed; restrict origins at the proxy in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of connected spectators and broadcasts game
// events to them. Slow clients are dropped rather than allowed to stall
// the feed.
type Hub struct {
	register   chan *client
	unregister chan *client
	events     chan game.GameEvent
	clients    map[*client]bool
	logger     *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan game.GameEvent, 256),
		clients:    make(map[*client]bool),
		logger:     logger,
	}
}

// Handler returns the TurnManager event handler that feeds this hub.
func (h *Hub) Handler() game.EventHandler {
	return func(event game.GameEvent) {
		select {
		case h.events <- event:
		default:
			// The feed is best-effort; dropping an event never blocks
			// game logic.
		}
	}
}

// Run drives the hub loop until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				c.conn.Close()
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Debug("spectator connected", zap.Int("total", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("spectator disconnected", zap.Int("total", len(h.clients)))
			}

		case event := <-h.events:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to encode game event", zap.Error(err))
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// ServeWS upgrades a spectator connection and starts its pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound messages; its only job is to detect closure.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Serve runs an HTTP server exposing the spectator feed at /watch until
// the context is cancelled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", h.ServeWS)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	h.logger.Info("spectator feed listening", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
