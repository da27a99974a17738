// Package gateway is the WebSocket transport: it turns socket frames into
// coordinator actions and coordinator notifications into socket frames. No
// game semantics live here.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/soohoonc/jprty/internal/conns"
	"github.com/soohoonc/jprty/internal/events"
	"github.com/soohoonc/jprty/internal/game"
)

// Client is a single WebSocket connection.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket
// connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Gateway tracks live clients and routes outbound notifications to them. It
// satisfies game.Notifier.
type Gateway struct {
	mu      sync.RWMutex
	clients map[string]*Client
	conns   *conns.Registry
	log     *slog.Logger
}

func New(cr *conns.Registry, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		clients: make(map[string]*Client),
		conns:   cr,
		log:     log,
	}
}

// Handler upgrades the request and pumps messages for the connection's
// lifetime. A socket that drops mid-game is reported to the coordinator as a
// disconnect; any window the player held simply expires.
func (g *Gateway) Handler(coord *game.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.log.Debug("websocket accept failed", "error", err)
			return
		}

		client := &Client{
			ID:   uuid.New().String(),
			Conn: conn,
			Send: make(chan []byte, 32),
		}
		g.register(client)

		ctx := r.Context()
		go client.WritePump(ctx)

		defer func() {
			coord.Disconnect(client.ID)
			g.unregister(client.ID)
			conn.Close(websocket.StatusNormalClosure, "")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg events.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				g.Send(client.ID, events.Notification{
					Type: events.Error,
					Payload: events.ErrorPayload{
						Kind:    "InvalidPhase",
						Message: "malformed message",
					},
				})
				continue
			}
			coord.HandleMessage(ctx, client.ID, msg)
		}
	}
}

func (g *Gateway) register(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c.ID] = c
}

func (g *Gateway) unregister(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[connID]; ok {
		close(c.Send)
		delete(g.clients, connID)
	}
}

// Broadcast fans a notification out to every connection in the room.
// Non-blocking: slow clients drop frames rather than stall the game.
func (g *Gateway) Broadcast(roomID string, n events.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		g.log.Error("marshaling notification", "type", n.Type, "error", err)
		return
	}
	for _, connID := range g.conns.RoomConns(roomID) {
		g.sendRaw(connID, data)
	}
}

// Send delivers a notification to one connection only.
func (g *Gateway) Send(connID string, n events.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		g.log.Error("marshaling notification", "type", n.Type, "error", err)
		return
	}
	g.sendRaw(connID, data)
}

func (g *Gateway) sendRaw(connID string, data []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.clients[connID]
	if !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
		// Drop frame if channel full
	}
}
