package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/zaqqye/app_catalog/internal/catalog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// EventAppsUpdated is the message type sent after any catalog mutation.
const EventAppsUpdated = "apps-updated"

// CatalogMessage is pushed to every connected gallery and admin client.
type CatalogMessage struct {
	Type string    `json:"type"`
	Op   string    `json:"op"`
	ID   string    `json:"id,omitempty"`
	At   time.Time `json:"at"`
}

// CatalogHub fans catalog change events out to websocket subscribers. It
// implements catalog.Notifier.
type CatalogHub struct {
	register   chan *catalogClient
	unregister chan *catalogClient
	broadcast  chan []byte
	clients    map[*catalogClient]struct{}
	count      chan chan int
}

func NewCatalogHub() *CatalogHub {
	return &CatalogHub{
		register:   make(chan *catalogClient),
		unregister: make(chan *catalogClient),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*catalogClient]struct{}),
		count:      make(chan chan int),
	}
}

func (h *CatalogHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// Clients returns the number of connected subscribers. Run must be active.
func (h *CatalogHub) Clients() int {
	reply := make(chan int)
	h.count <- reply
	return <-reply
}

// CatalogChanged queues ev for delivery. It never blocks the caller; events
// are dropped when the queue is full.
func (h *CatalogHub) CatalogChanged(ev catalog.ChangeEvent) {
	if h == nil {
		return
	}
	data, err := json.Marshal(CatalogMessage{Type: EventAppsUpdated, Op: ev.Op, ID: ev.ID, At: ev.At})
	if err != nil {
		log.WithError(err).Warn("ws: failed to marshal catalog event")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.WithField("op", ev.Op).Warn("ws: catalog event dropped, queue full")
	}
}

type catalogClient struct {
	hub  *CatalogHub
	conn *websocket.Conn
	send chan []byte
}

func newCatalogClient(hub *CatalogHub, conn *websocket.Conn) *catalogClient {
	return &catalogClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (c *catalogClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *catalogClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
