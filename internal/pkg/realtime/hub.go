package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ChannelCommunity is the channel every connected user is subscribed to.
const ChannelCommunity = "community"

// TeamChannel returns the channel name carrying events scoped to one team.
func TeamChannel(teamID int64) string {
	return fmt.Sprintf("team:%d", teamID)
}

// Event is a typed payload pushed to subscribed clients
type Event struct {
	// Type of event: "team.created", "message.created", "request.resolved", ...
	Type string `json:"type"`

	// Payload carries the event body, shaped per event type
	Payload interface{} `json:"payload"`
}

// Publisher pushes events to everyone subscribed to a channel. Services
// depend on this interface so event delivery can be faked in tests.
type Publisher interface {
	Publish(channel string, event Event)
}

// Hub maintains the set of active clients and fans events out to them
type Hub struct {
	// Registered clients organized by channel name
	clients map[string]map[*Client]bool

	// Channel for events to fan out
	broadcast chan *envelope

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Logger for Hub operations
	logger zerolog.Logger
}

// envelope pairs an event with its target channel for the run loop
type envelope struct {
	channel string
	event   Event
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub, handling client registrations and event fan-out
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			h.broadcastEvent(env)
		}
	}
}

// Publish queues an event for delivery to all clients subscribed to channel
func (h *Hub) Publish(channel string, event Event) {
	h.broadcast <- &envelope{channel: channel, event: event}
}

// registerClient registers a new client under each of its channels
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, channel := range client.channels {
		if _, ok := h.clients[channel]; !ok {
			h.clients[channel] = make(map[*Client]bool)
		}
		h.clients[channel][client] = true
	}

	h.logger.Info().
		Int64("userID", client.userID).
		Strs("channels", client.channels).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

// unregisterClient removes a client from every channel it joined
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := false
	for _, channel := range client.channels {
		if _, ok := h.clients[channel]; !ok {
			continue
		}
		if _, ok := h.clients[channel][client]; ok {
			delete(h.clients[channel], client)
			removed = true

			// If no more clients on this channel, clean up
			if len(h.clients[channel]) == 0 {
				delete(h.clients, channel)
			}
		}
	}

	if removed {
		close(client.send)
		h.logger.Info().
			Int64("userID", client.userID).
			Strs("channels", client.channels).
			Msg("Client unregistered")
	}
}

// broadcastEvent delivers an event to all clients on its channel. Slow
// clients are evicted inline after the fan-out; the run goroutine must
// never send to h.unregister, since it is the only receiver.
func (h *Hub) broadcastEvent(env *envelope) {
	data, err := json.Marshal(env.event)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("channel", env.channel).
			Str("eventType", env.event.Type).
			Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.RLock()
	clients, ok := h.clients[env.channel]
	if !ok {
		h.mu.RUnlock()
		return
	}

	var stuck []*Client
	for client := range clients {
		select {
		case client.send <- data:
			// Event queued successfully
		default:
			// Client's send buffer is full, they might be slow or disconnected
			stuck = append(stuck, client)
		}
	}
	delivered := len(clients) - len(stuck)
	h.mu.RUnlock()

	for _, client := range stuck {
		h.logger.Warn().
			Int64("userID", client.userID).
			Str("channel", env.channel).
			Msg("Evicting slow client")
		h.unregisterClient(client)
	}

	h.logger.Debug().
		Str("channel", env.channel).
		Str("eventType", env.event.Type).
		Int("clientCount", delivered).
		Msg("Event broadcasted")
}

// GetClientsCount returns the number of connected clients on a channel
func (h *Hub) GetClientsCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[channel]; ok {
		return len(clients)
	}
	return 0
}
