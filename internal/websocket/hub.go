package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement.
// Send must not block.
type ClientInterface interface {
	ID() string
	UserID() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections grouped by the user they belong to.
// A user may hold several connections, one per open client.
// It is safe for concurrent use
type Hub struct {
	// users maps user ID to a map of client ID to client
	users map[string]map[string]ClientInterface
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		users: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its user
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]ClientInterface)
	}
	h.users[userID][client.ID()] = client

	log.Debug().
		Str("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(client)
}

func (h *Hub) remove(client ClientInterface) bool {
	userID := client.UserID()
	clients, ok := h.users[userID]
	if !ok {
		return false
	}
	if _, exists := clients[client.ID()]; !exists {
		return false
	}

	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.users, userID)
	}

	log.Debug().
		Str("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
	return true
}

// Broadcast sends an event to every connection of a user. A connection that
// cannot take the message is dropped; its client reconnects and refetches.
func (h *Hub) Broadcast(userID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients := make([]ClientInterface, 0, len(h.users[userID]))
	for _, client := range h.users[userID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	var dropped []ClientInterface
	for _, client := range clients {
		if err := client.Send(data); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("client_id", client.ID()).
				Msg("Dropping WebSocket client")
			dropped = append(dropped, client)
		}
	}

	if len(dropped) > 0 {
		h.mu.Lock()
		for _, client := range dropped {
			h.remove(client)
		}
		h.mu.Unlock()
		for _, client := range dropped {
			_ = client.Close()
		}
	}

	log.Debug().
		Str("user_id", userID).
		Str("event_type", event.Type).
		Int("client_count", len(clients)-len(dropped)).
		Msg("Broadcast event")
}

// ClientCount returns the number of connections a user holds
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// TotalClientCount returns the total number of connected clients across all users
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.users {
		total += len(clients)
	}
	return total
}

// Shutdown closes every connection and empties the hub
func (h *Hub) Shutdown() {
	h.mu.Lock()
	var all []ClientInterface
	for _, clients := range h.users {
		for _, client := range clients {
			all = append(all, client)
		}
	}
	h.users = make(map[string]map[string]ClientInterface)
	h.mu.Unlock()

	for _, client := range all {
		_ = client.Close()
	}
	log.Info().Int("client_count", len(all)).Msg("WebSocket hub shut down")
}
