package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/logger"
)

const teamColumns = "id, name, project_idea, leader_id, is_recruiting, appeal_pitch, appeal_skills, created_at, updated_at"

// TeamRepository handles database operations for teams and their member rows
type TeamRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.ProjectIdea,
		&team.LeaderID,
		&team.IsRecruiting,
		&team.AppealPitch,
		&team.AppealSkills,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetByID retrieves a team with its member rows
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	sql, args, err := r.sb.Select(teamColumns).
		From("teams").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get team query: %w", err)
	}

	team, err := scanTeam(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeamNotFound
		}
		logger.Error().Err(err).Int64("teamID", id).Msg("Error scanning team row")
		return nil, fmt.Errorf("error retrieving team: %w", err)
	}

	members, err := r.loadMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members

	return team, nil
}

func (r *TeamRepository) loadMembers(ctx context.Context, teamID int64) ([]models.TeamMember, error) {
	sql, args, err := r.sb.Select("team_id", "user_id", "joined_at").
		From("team_members").
		Where(squirrel.Eq{"team_id": teamID}).
		OrderBy("joined_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build load members query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("teamID", teamID).Msg("Error loading team members")
		return nil, fmt.Errorf("error loading team members: %w", err)
	}
	defer rows.Close()

	members := []models.TeamMember{}
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("error scanning member row: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetRoster retrieves member rows joined with user profiles for display
func (r *TeamRepository) GetRoster(ctx context.Context, teamID int64) ([]models.TeamRosterEntry, error) {
	sql, args, err := r.sb.Select("u.id", "u.full_name", "u.avatar_url", "tm.joined_at").
		From("team_members tm").
		Join("users u ON u.id = tm.user_id").
		Where(squirrel.Eq{"tm.team_id": teamID}).
		OrderBy("tm.joined_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build roster query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("teamID", teamID).Msg("Error loading team roster")
		return nil, fmt.Errorf("error loading team roster: %w", err)
	}
	defer rows.Close()

	roster := []models.TeamRosterEntry{}
	for rows.Next() {
		var e models.TeamRosterEntry
		if err := rows.Scan(&e.UserID, &e.FullName, &e.AvatarURL, &e.JoinedAt); err != nil {
			return nil, fmt.Errorf("error scanning roster row: %w", err)
		}
		roster = append(roster, e)
	}
	return roster, rows.Err()
}

// List retrieves all teams, optionally only those currently recruiting
func (r *TeamRepository) List(ctx context.Context, recruitingOnly bool) ([]*models.Team, error) {
	builder := r.sb.Select(teamColumns).From("teams").OrderBy("id")
	if recruitingOnly {
		builder = builder.Where(squirrel.Eq{"is_recruiting": true})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list teams query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list teams query")
		return nil, fmt.Errorf("error listing teams: %w", err)
	}
	defer rows.Close()

	teams := []*models.Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning team row: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// CreateWithLeader founds a team in one transaction: the caller's row is
// locked to prove they are still teamless, then the team, its first member
// row, and the caller's team_id are written together. The caller's pending
// requests and invitations are consumed by the same commit.
func (r *TeamRepository) CreateWithLeader(ctx context.Context, team *models.Team) (*models.Team, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	currentTeamID, err := lockUserTeamID(ctx, tx, team.LeaderID)
	if err != nil {
		return nil, err
	}
	if currentTeamID != nil {
		return nil, apperrors.ErrAlreadyOnTeam
	}

	sql, args, err := r.sb.Insert("teams").
		Columns("name", "project_idea", "leader_id", "is_recruiting", "appeal_pitch", "appeal_skills").
		Values(team.Name, team.ProjectIdea, team.LeaderID, team.IsRecruiting, team.AppealPitch, team.AppealSkills).
		Suffix("RETURNING " + teamColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create team query: %w", err)
	}

	created, err := scanTeam(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		logger.Error().Err(err).Int64("leaderID", team.LeaderID).Msg("Error executing create team query")
		return nil, fmt.Errorf("error creating team: %w", err)
	}

	if err := attachUserToTeam(ctx, tx, team.LeaderID, created.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing create team transaction: %w", err)
	}

	created.Members = []models.TeamMember{{TeamID: created.ID, UserID: team.LeaderID, JoinedAt: created.CreatedAt}}
	return created, nil
}

// Update rewrites the editable team fields after verifying leadership
// against the locked row
func (r *TeamRepository) Update(ctx context.Context, team *models.Team, callerID int64) (*models.Team, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	leaderID, err := lockTeamLeaderID(ctx, tx, team.ID)
	if err != nil {
		return nil, err
	}
	if leaderID != callerID {
		return nil, apperrors.ErrNotTeamLeader
	}

	sql, args, err := r.sb.Update("teams").
		Set("name", team.Name).
		Set("project_idea", team.ProjectIdea).
		Set("is_recruiting", team.IsRecruiting).
		Set("appeal_pitch", team.AppealPitch).
		Set("appeal_skills", team.AppealSkills).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": team.ID}).
		Suffix("RETURNING " + teamColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update team query: %w", err)
	}

	updated, err := scanTeam(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		logger.Error().Err(err).Int64("teamID", team.ID).Msg("Error executing update team query")
		return nil, fmt.Errorf("error updating team: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing update team transaction: %w", err)
	}

	return updated, nil
}

// DeleteCascade disbands a team: every member's team_id is cleared and the
// member rows, pending requests, invitations, and team messages go with the
// team row in one commit. Returns the former member ids so callers can
// notify them.
func (r *TeamRepository) DeleteCascade(ctx context.Context, teamID, callerID int64) ([]int64, error) {
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

	rows, err := tx.Query(ctx, "SELECT user_id FROM team_members WHERE team_id = $1", teamID)
	if err != nil {
		return nil, fmt.Errorf("error loading members for disband: %w", err)
	}
	memberIDs := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning member id: %w", err)
		}
		memberIDs = append(memberIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member ids: %w", err)
	}

	if _, err := tx.Exec(ctx, "UPDATE users SET team_id = NULL, updated_at = NOW() WHERE team_id = $1", teamID); err != nil {
		return nil, fmt.Errorf("error clearing member team ids: %w", err)
	}

	// Member rows, pending requests, invitations, and team messages are
	// removed by their ON DELETE CASCADE foreign keys
	if _, err := tx.Exec(ctx, "DELETE FROM teams WHERE id = $1", teamID); err != nil {
		logger.Error().Err(err).Int64("teamID", teamID).Msg("Error deleting team")
		return nil, fmt.Errorf("error deleting team: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing delete team transaction: %w", err)
	}

	return memberIDs, nil
}

// RemoveMember ejects a member from the team. Only the leader may do this
// and the leader cannot eject themselves.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, callerID, targetID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	leaderID, err := lockTeamLeaderID(ctx, tx, teamID)
	if err != nil {
		return err
	}
	if leaderID != callerID {
		return apperrors.ErrNotTeamLeader
	}
	if targetID == leaderID {
		return apperrors.NewBadRequestError("The leader cannot be removed from their own team")
	}

	if err := detachUserFromTeam(ctx, tx, targetID, teamID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing remove member transaction: %w", err)
	}
	return nil
}

// Leave removes the caller from the team voluntarily. The leader cannot
// leave; they disband the team instead.
func (r *TeamRepository) Leave(ctx context.Context, teamID, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	leaderID, err := lockTeamLeaderID(ctx, tx, teamID)
	if err != nil {
		return err
	}
	if leaderID == userID {
		return apperrors.ErrLeaderCannotLeave
	}

	if err := detachUserFromTeam(ctx, tx, userID, teamID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing leave team transaction: %w", err)
	}
	return nil
}

// lockUserTeamID locks a user row and returns its current team id
func lockUserTeamID(ctx context.Context, tx pgx.Tx, userID int64) (*int64, error) {
	var teamID *int64
	err := tx.QueryRow(ctx, "SELECT team_id FROM users WHERE id = $1 FOR UPDATE", userID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error locking user row: %w", err)
	}
	return teamID, nil
}

// lockTeamLeaderID locks a team row and returns its leader id
func lockTeamLeaderID(ctx context.Context, tx pgx.Tx, teamID int64) (int64, error) {
	var leaderID int64
	err := tx.QueryRow(ctx, "SELECT leader_id FROM teams WHERE id = $1 FOR UPDATE", teamID).Scan(&leaderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrTeamNotFound
		}
		return 0, fmt.Errorf("error locking team row: %w", err)
	}
	return leaderID, nil
}

// attachUserToTeam writes the member row, sets the user's team_id, and
// consumes the user's pending requests and invitations. The caller must
// hold the user row lock.
func attachUserToTeam(ctx context.Context, tx pgx.Tx, userID, teamID int64) error {
	if _, err := tx.Exec(ctx,
		"INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)", teamID, userID); err != nil {
		return fmt.Errorf("error inserting member row: %w", err)
	}
	if _, err := tx.Exec(ctx,
		"UPDATE users SET team_id = $1, updated_at = NOW() WHERE id = $2", teamID, userID); err != nil {
		return fmt.Errorf("error setting user team id: %w", err)
	}

	// A user with a team can have no pending requests or invitations
	if _, err := tx.Exec(ctx, "DELETE FROM join_requests WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("error clearing pending join requests: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM invitations WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("error clearing pending invitations: %w", err)
	}
	return nil
}

// detachUserFromTeam deletes the member row and clears the user's team_id
func detachUserFromTeam(ctx context.Context, tx pgx.Tx, userID, teamID int64) error {
	cmdTag, err := tx.Exec(ctx,
		"DELETE FROM team_members WHERE team_id = $1 AND user_id = $2", teamID, userID)
	if err != nil {
		return fmt.Errorf("error deleting member row: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotTeamMember
	}

	if _, err := tx.Exec(ctx,
		"UPDATE users SET team_id = NULL, updated_at = NOW() WHERE id = $1 AND team_id = $2", userID, teamID); err != nil {
		return fmt.Errorf("error clearing user team id: %w", err)
	}
	return nil
}
