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
	"github.com/emre/teamforge/internal/pkg/dberrors"
	"github.com/emre/teamforge/internal/pkg/logger"
)

const userColumns = "id, email, password, full_name, avatar_url, year, bio, skills, team_id, is_email_verified, last_login_at, created_at, updated_at"

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FullName,
		&user.AvatarURL,
		&user.Year,
		&user.Bio,
		&user.Skills,
		&user.TeamID,
		&user.IsEmailVerified,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user and returns it with generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	skills := user.Skills
	if skills == nil {
		skills = []string{}
	}

	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "full_name", "year", "bio", "skills").
		Values(user.Email, user.Password, user.FullName, user.Year, user.Bio, skills).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return nil, fmt.Errorf("failed to build create user query: %w", err)
	}

	created, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user by email query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("email", email).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// GetByIDs retrieves users matching the given ids, in no particular order
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	sql, args, err := r.sb.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get users by ids query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get users by ids query")
		return nil, fmt.Errorf("error retrieving users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ListTeamless retrieves every user currently without a team
func (r *UserRepository) ListTeamless(ctx context.Context) ([]*models.User, error) {
	sql, args, err := r.sb.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"team_id": nil}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list teamless query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list teamless query")
		return nil, fmt.Errorf("error listing teamless users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateProfile updates the editable profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) (*models.User, error) {
	skills := user.Skills
	if skills == nil {
		skills = []string{}
	}

	sql, args, err := r.sb.Update("users").
		Set("full_name", user.FullName).
		Set("year", user.Year).
		Set("bio", user.Bio).
		Set("skills", skills).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update profile query: %w", err)
	}

	updated, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error executing update profile query")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	return updated, nil
}

// UpdateAvatar sets the avatar URL for a user, nil clears it
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL *string) error {
	sql, args, err := r.sb.Update("users").
		Set("avatar_url", avatarURL).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update avatar query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing update avatar query")
		return fmt.Errorf("error updating avatar: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetEmailVerified marks a user's email as verified
func (r *UserRepository) SetEmailVerified(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("users").
		Set("is_email_verified", true).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set email verified query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing set email verified query")
		return fmt.Errorf("error setting email verified: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin stamps the user's last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		// Login should not fail on a bookkeeping update
		logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to update last login time")
	}
	return nil
}

// GetTeamID returns the user's current team id, nil when teamless
func (r *UserRepository) GetTeamID(ctx context.Context, userID int64) (*int64, error) {
	sql, args, err := r.sb.Select("team_id").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get team id query: %w", err)
	}

	var teamID *int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&teamID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error scanning team id")
		return nil, fmt.Errorf("error retrieving team id: %w", err)
	}
	return teamID, nil
}

// IsEmailVerified reports whether the user's email address is verified
func (r *UserRepository) IsEmailVerified(ctx context.Context, userID int64) (bool, error) {
	var verified bool
	err := r.db.QueryRow(ctx, "SELECT is_email_verified FROM users WHERE id = $1", userID).Scan(&verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error checking email verification")
		return false, fmt.Errorf("error checking email verification: %w", err)
	}
	return verified, nil
}

// ExistsByEmail reports whether a user with the given email exists
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email existence: %w", err)
	}
	return exists, nil
}
