package services

import (
	"context"
	"time"

	"github.com/emre/teamforge/internal/app/models"
)

// Narrow store interfaces over the repository layer. Services depend on
// these instead of the concrete repositories so the membership and chat
// rules can be exercised against in-memory stores in tests.

// UserStore is the slice of user persistence that services consume
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	ListTeamless(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL *string) error
	SetEmailVerified(ctx context.Context, userID int64) error
	UpdateLastLogin(ctx context.Context, userID int64) error
	GetTeamID(ctx context.Context, userID int64) (*int64, error)
}

// TeamStore is the slice of team persistence that services consume
type TeamStore interface {
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	GetRoster(ctx context.Context, teamID int64) ([]models.TeamRosterEntry, error)
	List(ctx context.Context, recruitingOnly bool) ([]*models.Team, error)
	CreateWithLeader(ctx context.Context, team *models.Team) (*models.Team, error)
	Update(ctx context.Context, team *models.Team, callerID int64) (*models.Team, error)
	DeleteCascade(ctx context.Context, teamID, callerID int64) ([]int64, error)
	RemoveMember(ctx context.Context, teamID, callerID, targetID int64) error
	Leave(ctx context.Context, teamID, userID int64) error
}

// MembershipStore covers join requests and invitations
type MembershipStore interface {
	CreateJoinRequest(ctx context.Context, userID, teamID int64) (*models.JoinRequest, error)
	CreateInvitation(ctx context.Context, teamID, callerID, targetID int64) (*models.Invitation, error)
	ListJoinRequestsByTeam(ctx context.Context, teamID int64) ([]models.JoinRequestInfo, error)
	ListInvitationsByUser(ctx context.Context, userID int64) ([]models.InvitationInfo, error)
	ResolveJoinRequest(ctx context.Context, requestID, callerID int64, accept bool) (*models.JoinRequest, bool, error)
	ResolveInvitation(ctx context.Context, invitationID, callerID int64, accept bool) (*models.Invitation, bool, error)
}

// ChatStore covers messages and read receipts
type ChatStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	ListMessages(ctx context.Context, teamID *int64, limit int, beforeID int64) ([]*models.Message, error)
	DeleteMessage(ctx context.Context, messageID, callerID int64) (*models.Message, error)
	MarkRead(ctx context.Context, messageID, userID int64) error
}

// SkillStore covers the skill vocabulary
type SkillStore interface {
	List(ctx context.Context) ([]*models.Skill, error)
	Ensure(ctx context.Context, name string) (*models.Skill, error)
}

// TokenStore covers refresh token persistence
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// VerificationStore covers email verification token persistence
type VerificationStore interface {
	CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	ConsumeToken(ctx context.Context, token string) (int64, error)
	GetLastSentAt(ctx context.Context, userID int64) (time.Time, error)
}

// callerID pulls the authenticated user id out of the request context, where
// the auth middleware placed it
func callerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value("userID").(int64)
	return id, ok
}
