package dto

import "time"

// InviteRequest represents a leader inviting a user onto their team
type InviteRequest struct {
	UserID int64 `json:"userId" binding:"required,min=1"`
}

// ResolveRequest accepts or declines a pending join request or invitation
type ResolveRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// JoinRequestResponse represents a pending join request
type JoinRequestResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	FullName  string    `json:"fullName"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	TeamID    int64     `json:"teamId"`
	TeamName  string    `json:"teamName"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvitationResponse represents a pending invitation
type InvitationResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	TeamID    int64     `json:"teamId"`
	TeamName  string    `json:"teamName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reasons a resolved request or invitation did not grant membership
const (
	ReasonDeclined          = "DECLINED"
	ReasonUserAlreadyOnTeam = "USER_ALREADY_ON_TEAM"
)

// ResolveResult reports the outcome of resolving a request or invitation.
// The pending row is always consumed; membershipGranted says whether the
// accept actually took effect.
type ResolveResult struct {
	MembershipGranted bool   `json:"membershipGranted"`
	Reason            string `json:"reason,omitempty" example:"USER_ALREADY_ON_TEAM"`
}
