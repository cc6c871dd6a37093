package dto

import (
	"time"

	"github.com/emre/teamforge/internal/app/models"
)

// SendMessageRequest represents a new chat message
type SendMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=2000"`
}

// MessageResponse represents a chat message with its read receipts
type MessageResponse struct {
	ID           int64     `json:"id"`
	TeamID       *int64    `json:"teamId,omitempty"`
	SenderID     int64     `json:"senderId"`
	SenderName   string    `json:"senderName"`
	SenderAvatar *string   `json:"senderAvatar,omitempty"`
	Body         string    `json:"body"`
	ReadBy       []int64   `json:"readBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MessageListQuery holds pagination parameters for message history
type MessageListQuery struct {
	Limit  int   `form:"limit,default=50" binding:"min=1,max=200"`
	Before int64 `form:"before" binding:"omitempty,min=1"`
}

// ToMessageResponse maps a message model to its API shape
func ToMessageResponse(msg *models.Message) MessageResponse {
	readBy := msg.ReadBy
	if readBy == nil {
		readBy = []int64{}
	}
	return MessageResponse{
		ID:           msg.ID,
		TeamID:       msg.TeamID,
		SenderID:     msg.SenderID,
		SenderName:   msg.SenderName,
		SenderAvatar: msg.SenderAvatar,
		Body:         msg.Body,
		ReadBy:       readBy,
		CreatedAt:    msg.CreatedAt,
	}
}

// ToMessageResponses maps a slice of messages preserving order
func ToMessageResponses(msgs []*models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ToMessageResponse(m))
	}
	return out
}
