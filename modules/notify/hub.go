package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the subset of a websocket connection the hub needs. Satisfied
// by *websocket.Conn; tests substitute a recording fake.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents one connected socket for a user. A user may hold
// several clients at once (multiple tabs or devices).
type Client struct {
	ID     string
	UserID string
	Conn   Conn
}

// Hub manages WebSocket connections and per-user notification fan-out.
type Hub struct {
	clients    map[string]*Client         // clientID -> Client
	users      map[string]map[string]bool // userID -> set of clientIDs
	register   chan *Client
	unregister chan *Client
	send       chan *userMessage
	done       chan struct{}
	mu         sync.RWMutex
}

type userMessage struct {
	UserID  string
	Payload any
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		users:      make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan *userMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It accepts a context for graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[notify] Hub shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case msg := <-h.send:
			h.handleSend(msg)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.users = make(map[string]map[string]bool)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[string]bool)
	}
	h.users[client.UserID][client.ID] = true
	log.Printf("[notify] Client %s (user %s) registered", client.ID, client.UserID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		if h.users[client.UserID] != nil {
			delete(h.users[client.UserID], client.ID)
			if len(h.users[client.UserID]) == 0 {
				delete(h.users, client.UserID)
			}
		}
		log.Printf("[notify] Client %s (user %s) unregistered", client.ID, client.UserID)
	}
}

func (h *Hub) handleSend(msg *userMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(msg.Payload)
	if err != nil {
		log.Printf("[notify] Failed to marshal notification: %v", err)
		return
	}

	clientIDs, ok := h.users[msg.UserID]
	if !ok {
		// User has no open sockets; notification is dropped
		return
	}
	for clientID := range clientIDs {
		if client, ok := h.clients[clientID]; ok {
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[notify] Failed to send to client %s: %v", clientID, err)
			}
		}
	}
}

// Register adds a client to the hub. A no-op after shutdown so callers
// finishing a socket upgrade mid-shutdown never block.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		_ = client.Conn.Close()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser delivers a payload to every socket the user holds open.
// Dropped after shutdown.
func (h *Hub) SendToUser(userID string, payload any) {
	select {
	case h.send <- &userMessage{UserID: userID, Payload: payload}:
	case <-h.done:
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserClientCount returns the number of sockets a user holds open.
func (h *Hub) UserClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.users[userID]; ok {
		return len(clients)
	}
	return 0
}
