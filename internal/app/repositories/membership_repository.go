package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/dberrors"
	"github.com/emre/teamforge/internal/pkg/logger"
)

// MembershipRepository handles join requests, invitations, and the
// transactions that turn them into memberships
type MembershipRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateJoinRequest records a teamless user's request to join a team. The
// user row is locked so a concurrent membership grant cannot slip in.
func (r *MembershipRepository) CreateJoinRequest(ctx context.Context, userID, teamID int64) (*models.JoinRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	currentTeamID, err := lockUserTeamID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if currentTeamID != nil {
		return nil, apperrors.ErrAlreadyOnTeam
	}

	var req models.JoinRequest
	err = tx.QueryRow(ctx,
		"INSERT INTO join_requests (user_id, team_id) VALUES ($1, $2) RETURNING id, user_id, team_id, created_at",
		userID, teamID,
	).Scan(&req.ID, &req.UserID, &req.TeamID, &req.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "join_requests_user_id_team_id_key") {
			return nil, apperrors.ErrDuplicateRequest
		}
		logger.Error().Err(err).Int64("userID", userID).Int64("teamID", teamID).Msg("Error creating join request")
		return nil, fmt.Errorf("error creating join request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing join request transaction: %w", err)
	}
	return &req, nil
}

// CreateInvitation records a leader's invitation of a teamless user
func (r *MembershipRepository) CreateInvitation(ctx context.Context, teamID, callerID, targetID int64) (*models.Invitation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	leaderID, err := lockTeamLeaderID(ctx, tx, teamID)
	if err != nil {
		return nil, err
	}
	if leaderID != callerID {
		return nil, apperrors.ErrNotTeamLeader
	}

	targetTeamID, err := lockUserTeamID(ctx, tx, targetID)
	if err != nil {
		return nil, err
	}
	if targetTeamID != nil {
		return nil, apperrors.ErrAlreadyOnTeam
	}

	var inv models.Invitation
	err = tx.QueryRow(ctx,
		"INSERT INTO invitations (user_id, team_id) VALUES ($1, $2) RETURNING id, user_id, team_id, created_at",
		targetID, teamID,
	).Scan(&inv.ID, &inv.UserID, &inv.TeamID, &inv.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "invitations_user_id_team_id_key") {
			return nil, apperrors.ErrDuplicateInvite
		}
		logger.Error().Err(err).Int64("targetID", targetID).Int64("teamID", teamID).Msg("Error creating invitation")
		return nil, fmt.Errorf("error creating invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing invitation transaction: %w", err)
	}
	return &inv, nil
}

// ListJoinRequestsByTeam retrieves pending requests for a team with the
// requester's profile joined in
func (r *MembershipRepository) ListJoinRequestsByTeam(ctx context.Context, teamID int64) ([]models.JoinRequestInfo, error) {
	sql, args, err := r.sb.Select("jr.id", "jr.user_id", "jr.team_id", "jr.created_at", "u.full_name", "u.avatar_url", "t.name").
		From("join_requests jr").
		Join("users u ON u.id = jr.user_id").
		Join("teams t ON t.id = jr.team_id").
		Where(squirrel.Eq{"jr.team_id": teamID}).
		OrderBy("jr.created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list join requests query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("teamID", teamID).Msg("Error listing join requests")
		return nil, fmt.Errorf("error listing join requests: %w", err)
	}
	defer rows.Close()

	requests := []models.JoinRequestInfo{}
	for rows.Next() {
		var info models.JoinRequestInfo
		if err := rows.Scan(&info.ID, &info.UserID, &info.TeamID, &info.CreatedAt, &info.FullName, &info.AvatarURL, &info.TeamName); err != nil {
			return nil, fmt.Errorf("error scanning join request row: %w", err)
		}
		requests = append(requests, info)
	}
	return requests, rows.Err()
}

// ListInvitationsByUser retrieves pending invitations addressed to a user
func (r *MembershipRepository) ListInvitationsByUser(ctx context.Context, userID int64) ([]models.InvitationInfo, error) {
	sql, args, err := r.sb.Select("i.id", "i.user_id", "i.team_id", "i.created_at", "t.name").
		From("invitations i").
		Join("teams t ON t.id = i.team_id").
		Where(squirrel.Eq{"i.user_id": userID}).
		OrderBy("i.created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list invitations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing invitations")
		return nil, fmt.Errorf("error listing invitations: %w", err)
	}
	defer rows.Close()

	invitations := []models.InvitationInfo{}
	for rows.Next() {
		var info models.InvitationInfo
		if err := rows.Scan(&info.ID, &info.UserID, &info.TeamID, &info.CreatedAt, &info.TeamName); err != nil {
			return nil, fmt.Errorf("error scanning invitation row: %w", err)
		}
		invitations = append(invitations, info)
	}
	return invitations, rows.Err()
}

// ResolveJoinRequest consumes a pending request. The caller must lead the
// request's team. On accept, membership is granted only if the subject is
// still teamless when their locked row is re-checked; the request is
// deleted either way.
func (r *MembershipRepository) ResolveJoinRequest(ctx context.Context, requestID, callerID int64, accept bool) (*models.JoinRequest, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var req models.JoinRequest
	err = tx.QueryRow(ctx,
		"SELECT id, user_id, team_id, created_at FROM join_requests WHERE id = $1 FOR UPDATE", requestID,
	).Scan(&req.ID, &req.UserID, &req.TeamID, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.ErrRequestNotFound
		}
		return nil, false, fmt.Errorf("error locking join request: %w", err)
	}

	leaderID, err := lockTeamLeaderID(ctx, tx, req.TeamID)
	if err != nil {
		return nil, false, err
	}
	if leaderID != callerID {
		return nil, false, apperrors.ErrNotTeamLeader
	}

	granted, err := r.consumeAndMaybeGrant(ctx, tx,
		"DELETE FROM join_requests WHERE id = $1", requestID, req.UserID, req.TeamID, accept)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("error committing resolve request transaction: %w", err)
	}
	return &req, granted, nil
}

// ResolveInvitation consumes a pending invitation. Only the invited user may
// resolve it. On accept, membership is granted only if they are still
// teamless; the invitation is deleted either way.
func (r *MembershipRepository) ResolveInvitation(ctx context.Context, invitationID, callerID int64, accept bool) (*models.Invitation, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var inv models.Invitation
	err = tx.QueryRow(ctx,
		"SELECT id, user_id, team_id, created_at FROM invitations WHERE id = $1 FOR UPDATE", invitationID,
	).Scan(&inv.ID, &inv.UserID, &inv.TeamID, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.ErrInvitationNotFound
		}
		return nil, false, fmt.Errorf("error locking invitation: %w", err)
	}

	if inv.UserID != callerID {
		return nil, false, apperrors.NewForbiddenError("Only the invited user can resolve this invitation")
	}

	granted, err := r.consumeAndMaybeGrant(ctx, tx,
		"DELETE FROM invitations WHERE id = $1", invitationID, inv.UserID, inv.TeamID, accept)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("error committing resolve invitation transaction: %w", err)
	}
	return &inv, granted, nil
}

// consumeAndMaybeGrant deletes the pending row and, on accept, grants
// membership if the subject's locked row shows them still teamless
func (r *MembershipRepository) consumeAndMaybeGrant(ctx context.Context, tx pgx.Tx, deleteSQL string, pendingID, userID, teamID int64, accept bool) (bool, error) {
	if _, err := tx.Exec(ctx, deleteSQL, pendingID); err != nil {
		return false, fmt.Errorf("error consuming pending row: %w", err)
	}

	if !accept {
		return false, nil
	}

	currentTeamID, err := lockUserTeamID(ctx, tx, userID)
	if err != nil {
		return false, err
	}
	if currentTeamID != nil {
		// The subject joined another team first; the accept lapses
		return false, nil
	}

	if err := attachUserToTeam(ctx, tx, userID, teamID); err != nil {
		return false, err
	}
	return true, nil
}
