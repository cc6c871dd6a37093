package models

import (
	"time"
)

// JoinRequest defines a pending request by a teamless user to join a team,
// based on the 'join_requests' table. It is consumed when the team's leader
// accepts or declines it.
type JoinRequest struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	TeamID    int64     `json:"teamId" db:"team_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Invitation defines a pending invitation of a user into a team, based on
// the 'invitations' table. It is consumed when the invited user accepts or
// declines it.
type Invitation struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	TeamID    int64     `json:"teamId" db:"team_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// JoinRequestInfo is a join request joined with the requester's profile and
// the team's name for list views
type JoinRequestInfo struct {
	JoinRequest
	FullName  string  `json:"fullName" db:"full_name"`
	AvatarURL *string `json:"avatarUrl,omitempty" db:"avatar_url"`
	TeamName  string  `json:"teamName" db:"team_name"`
}

// InvitationInfo is an invitation joined with the inviting team's name
type InvitationInfo struct {
	Invitation
	TeamName string `json:"teamName" db:"team_name"`
}
