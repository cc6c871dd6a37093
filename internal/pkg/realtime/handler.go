package realtime

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TeamLookup resolves the team a user currently belongs to, nil when
// teamless. Satisfied by the user repository.
type TeamLookup interface {
	GetTeamID(ctx context.Context, userID int64) (*int64, error)
}

// Handler for WebSocket connections
type Handler struct {
	hub    *Hub
	teams  TeamLookup
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, teams TeamLookup, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		teams:  teams,
		logger: logger,
	}
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for the real-time event feed
// @Description Upgrades the HTTP connection to a WebSocket subscribed to the community channel and, when the user is on a team, that team's channel
// @Tags realtime, websocket
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} gin.H "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	// Get user ID from context (set by auth middleware)
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in context",
		})
		return
	}

	userID, ok := userIDInterface.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid user ID format",
		})
		return
	}

	// The subscription set is fixed at connect time. When the user joins or
	// leaves a team the client reconnects, which tears the old set down with
	// the connection
	channels := []string{ChannelCommunity}
	teamID, err := h.teams.GetTeamID(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("userID", userID).
			Msg("Failed to resolve team for websocket subscription")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve subscriptions",
		})
		return
	}
	if teamID != nil {
		channels = append(channels, TeamChannel(*teamID))
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	// Create a new client and register it with the hub
	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		channels: channels,
		logger:   h.logger,
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", userID).
		Strs("channels", channels).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
