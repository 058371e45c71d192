package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// UserIDLocal is the fiber.Ctx local holding the authenticated user id at upgrade time.
const UserIDLocal = "userID"

const queueSize = 64

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one open dashboard.
type Client struct {
	UserID int64
	Conn   Conn
	Mu     sync.Mutex
}

type Event struct {
	Event  string `json:"event"`
	TaskID int64  `json:"task_id"`
}

type message struct {
	userID int64
	data   []byte
}

// Hub fans task events out to the owner's open connections.
type Hub struct {
	clients    map[int64]map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan message, queueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					client.Conn.Close()
				}
			}
			h.clients = map[int64]map[*Client]bool{}
			return
		case client := <-h.register:
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.UserID] = set
			}
			set[client] = true
		case client := <-h.unregister:
			h.remove(client)
		case msg := <-h.broadcast:
			for client := range h.clients[msg.userID] {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, msg.data)
				client.Mu.Unlock()
				if err != nil {
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.UserID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	client.Conn.Close()
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues ev for userID's connections. It never blocks: when the queue is full the
// event is dropped and false is returned. A nil hub drops everything.
func (h *Hub) Publish(userID int64, ev Event) bool {
	if h == nil {
		return false
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding hub event", zap.Error(err))
		return false
	}
	select {
	case h.broadcast <- message{userID: userID, data: data}:
		return true
	default:
		logger.SystemLogger.Warn("Hub queue full, dropping event",
			zap.String("event", ev.Event), zap.Int64("task_id", ev.TaskID))
		return false
	}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves one dashboard connection. Incoming frames are read and discarded so the
// connection notices when the browser goes away.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, ok := c.Locals(UserIDLocal).(int64)
		if !ok {
			c.Close()
			return
		}
		client := &Client{UserID: userID, Conn: c}
		h.Register(client)
		defer h.Unregister(client)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
