package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Event is one server-side notification pushed to connected dashboards.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Event types pushed over the websocket.
const (
	EventChatCompleted         = "chat.completed"
	EventItemIngested          = "item.ingested"
	EventFeedbackApplied       = "feedback.applied"
	EventDecayCompleted        = "decay.completed"
	EventMetaLearningCompleted = "meta_learning.completed"
)

// EventHub fans server events out to all connected WebSocket clients.
// Slow clients are disconnected rather than allowed to block the hub.
type EventHub struct {
	clients    map[*hubClient]bool
	broadcast  chan Event
	register   chan *hubClient
	unregister chan *hubClient
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
}

type hubClient struct {
	hub  *EventHub
	conn *websocket.Conn
	send chan []byte
}

// NewEventHub creates an EventHub. Call Run in a goroutine to start it.
func NewEventHub() *EventHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventHub{
		clients:    make(map[*hubClient]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *EventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("event hub: client connected (total: %d)", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("event hub: client disconnected (total: %d)", count)

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("event hub: failed to marshal event: %v", err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow client; drop the connection instead of blocking.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// Stop shuts the hub down and closes all connections.
func (h *EventHub) Stop() {
	h.cancel()

	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			_ = client.conn.Close(websocket.StatusNormalClosure, "")
		}
	}
	h.clients = make(map[*hubClient]bool)
	h.mu.Unlock()
}

// Publish queues an event for broadcast. Never blocks; when the queue is
// full the event is dropped with a warning.
func (h *EventHub) Publish(eventType string, payload interface{}) {
	event := Event{Type: eventType, Timestamp: time.Now(), Payload: payload}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("event hub: broadcast channel full, dropping %s event", eventType)
	}
}

// ServeHTTP upgrades the request to a WebSocket and attaches the client to
// the hub.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("event hub: WebSocket upgrade failed: %v", err)
		return
	}

	client := &hubClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *hubClient) writePump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			return
		}
	}
}

// readPump drains client messages to detect disconnects. Clients do not send
// anything the server acts on.
func (c *hubClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			return
		}
	}
}
