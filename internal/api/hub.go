/*
Package api
File: hub.go
Description:
    The WebSocket Hub is the real-time side of the server.

    It keeps the registry of connected clients and fans out every
    broadcast: engine notifications as they happen and the periodic
    state pulse. Clients may also send intents over the socket; each
    one is applied and the result is written back to that client only.

    Architecture:
    - Hub: The single manager, run as one goroutine.
    - Client: One browser connection with its own read and write pumps.
    - serveWs: Upgrades a GET request to a WebSocket.
*/

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/everforgeworks/study-ascension/internal/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types pushed to clients.
const (
	TypeNotification = "notification"
	TypeStatePulse   = "state_pulse"
	TypeResult       = "result"
	TypeError        = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Message defines the JSON envelope for all real-time communication.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	Sender  string `json:"sender"` // "system" or the client id an answer belongs to
}

// Client represents a single connected browser tab.
type Client struct {
	id     string
	ip     string
	hub    *Hub
	server *Server
	conn   *websocket.Conn
	send   chan []byte
}

// addressed is a message addressed to one client.
type addressed struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan addressed
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	logger     *slog.Logger
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		direct:     make(chan addressed, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run is the Hub event loop. It returns when ctx is cancelled, closing
// every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return nil

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("ws client connected", "client", client.id, "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("ws client disconnected", "client", client.id, "clients", len(h.clients))
			}

		case d := <-h.direct:
			if !h.clients[d.client] {
				continue
			}
			select {
			case d.client.send <- d.data:
			default:
				close(d.client.send)
				delete(h.clients, d.client)
				h.logger.Warn("ws client dropped", "client", d.client.id)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full: the client is stuck, drop it.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("ws client dropped", "client", client.id)
				}
			}
		}
	}
}

// Publish queues a message for every client. It never blocks: when the
// hub is backed up the message is dropped.
func (h *Hub) Publish(msgType string, payload any) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: "system"})
	if err != nil {
		h.logger.Error("marshal broadcast", "type", msgType, "err", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast dropped", "type", msgType)
	}
}

// Notify forwards engine notifications to every client.
func (h *Hub) Notify(n game.Notification) {
	h.Publish(TypeNotification, n)
}

// Pulse pushes a full state snapshot to every client.
func (h *Hub) Pulse(v game.View) {
	h.Publish(TypeStatePulse, v)
}

// upgrader configures the WebSocket handshake.
// CheckOrigin allows any host; the browser client is served from elsewhere.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveWs upgrades the request and starts the client pumps.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "err", err)
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		ip:     clientIP(r),
		hub:    s.hub,
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// reply queues a message for this client only.
func (c *Client) reply(msgType string, payload any) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: c.id})
	if err != nil {
		c.hub.logger.Error("marshal reply", "client", c.id, "err", err)
		return
	}
	select {
	case c.hub.direct <- addressed{client: c, data: data}:
	case <-c.hub.done:
	}
}

// readPump decodes intents from the socket and applies them.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in Intent
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("ws read failed", "client", c.id, "err", err)
			}
			return
		}

		if !c.server.limiters.get(c.ip).Allow() {
			c.reply(TypeError, errorBody{Error: "rate limited", Status: http.StatusTooManyRequests})
			continue
		}

		res, err := c.server.apply(context.Background(), in)
		if err != nil {
			c.reply(TypeError, errorBody{Error: err.Error(), Status: statusFor(err), Intent: in.Type})
			continue
		}
		c.reply(TypeResult, res)
	}
}

// writePump writes queued messages and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
