package models

import (
	"time"
)

// Message defines a chat message based on the 'messages' table.
// TeamID is nil for community-scoped messages. Sender name and avatar are
// snapshotted at send time so deleted or renamed profiles keep history
// readable.
type Message struct {
	ID           int64     `json:"id" db:"id"`
	TeamID       *int64    `json:"teamId,omitempty" db:"team_id"`
	SenderID     int64     `json:"senderId" db:"sender_id"`
	SenderName   string    `json:"senderName" db:"sender_name"`
	SenderAvatar *string   `json:"senderAvatar,omitempty" db:"sender_avatar"`
	Body         string    `json:"body" db:"body"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`

	ReadBy []int64 `json:"readBy,omitempty"` // Relation from 'message_reads', no db tag
}

// IsCommunity reports whether the message belongs to the community channel
func (m *Message) IsCommunity() bool {
	return m.TeamID == nil
}

// MessageRead defines a read receipt row in the 'message_reads' table
type MessageRead struct {
	MessageID int64     `json:"messageId" db:"message_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ReadAt    time.Time `json:"readAt" db:"read_at"`
}
