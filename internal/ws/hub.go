package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"shopmall-api/internal/events"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var ErrBufferFull = errors.New("ws broadcast buffer full, event dropped")

// Client is the write side of a websocket connection. *websocket.Conn satisfies it.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub fans order events out to every connected admin socket.
type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        *zap.Logger
	done       chan struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, 256),
		log:        log,
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			n := len(h.Clients)
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.Int("clients", n))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish queues the event for broadcast without waiting on slow sockets.
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	msg, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case h.Broadcast <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Upgrade rejects plain HTTP requests on the socket route
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler registers each socket with the hub and keeps it until the peer goes away.
// The feed is one way, inbound frames are discarded.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		select {
		case h.Register <- c:
		case <-h.done:
			return
		}
		defer func() {
			select {
			case h.Unregister <- c:
			case <-h.done:
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
