package ws

import (
	"context"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Event types pushed over the live channel.
const (
	EventNotification    = "notification"
	EventNewMessage      = "new_message"
	EventNewConversation = "new_conversation"
	EventMessagesRead    = "messages_read"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	ReceiverID string
	Conn       *websocket.Conn
	Send       chan Event

	ctx    context.Context
	cancel context.CancelFunc
}

// Hub is the explicit connection registry: identities register on
// connect, unregister on disconnect, and the notification dispatcher
// looks connections up through Push. An identity may hold several
// connections (multiple tabs/devices).
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: map[string]map[*Client]struct{}{},
	}
}

func (h *Hub) Add(receiverID string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		ReceiverID: receiverID,
		Conn:       conn,
		Send:       make(chan Event, 64),
		ctx:        ctx,
		cancel:     cancel,
	}

	h.mu.Lock()
	if h.clients[receiverID] == nil {
		h.clients[receiverID] = map[*Client]struct{}{}
	}
	h.clients[receiverID][c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()
	go c.keepAliveLoop()

	return c
}

func (h *Hub) Remove(c *Client) {
	c.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.clients[c.ReceiverID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.ReceiverID)
		}
	}

	_ = c.Conn.Close(websocket.StatusNormalClosure, "bye")
}

// Push delivers an event to every live connection of the receiver.
// It reports whether at least one connection accepted the event;
// absence of a connection is not an error.
func (h *Hub) Push(receiverID string, ev Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for c := range h.clients[receiverID] {
		select {
		case c.Send <- ev:
			delivered = true
		default:
			// slow consumer: drop rather than block the caller
		}
	}
	return delivered
}

// Connected reports whether the receiver has at least one live connection.
func (h *Hub) Connected(receiverID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[receiverID]) > 0
}

// writeLoop drains Send until the client is cancelled. Send is never
// closed: Push and the dispatcher's flush write to it while holding
// only the read lock, so a close here could race them. The drained
// channel is simply dropped with the client.
func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.Send:
			writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = wsjson.Write(writeCtx, c.Conn, ev)
			cancel()
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = c.Conn.Ping(pingCtx)
			cancel()
		}
	}
}
