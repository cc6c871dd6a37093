package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/logger"
)

// VerificationTokenRepository handles email verification token operations
type VerificationTokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository
func NewVerificationTokenRepository(db *pgxpool.Pool) *VerificationTokenRepository {
	return &VerificationTokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateToken stores a fresh verification token for a user
func (r *VerificationTokenRepository) CreateToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("verification_tokens").
		Columns("user_id", "token", "expires_at").
		Values(userID, token, expiresAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create verification token SQL")
		return fmt.Errorf("failed to build create verification token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing create verification token query")
		return fmt.Errorf("error creating verification token: %w", err)
	}
	return nil
}

// ConsumeToken validates a token and marks it used, returning the owning
// user id. Used and expired tokens are rejected.
func (r *VerificationTokenRepository) ConsumeToken(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := r.db.QueryRow(ctx,
		`UPDATE verification_tokens
		 SET used = TRUE
		 WHERE token = $1 AND used = FALSE AND expires_at > NOW()
		 RETURNING user_id`, token,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrInvalidEmailToken
		}
		logger.Error().Err(err).Msg("Error consuming verification token")
		return 0, fmt.Errorf("error consuming verification token: %w", err)
	}
	return userID, nil
}

// GetLastSentAt returns when the newest verification token for a user was
// created. Drives the server-enforced resend cooldown.
func (r *VerificationTokenRepository) GetLastSentAt(ctx context.Context, userID int64) (time.Time, error) {
	var createdAt time.Time
	err := r.db.QueryRow(ctx,
		"SELECT created_at FROM verification_tokens WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1",
		userID,
	).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error fetching last verification token time")
		return time.Time{}, fmt.Errorf("error fetching last verification token: %w", err)
	}
	return createdAt, nil
}

// DeleteForUser removes all verification tokens belonging to a user
func (r *VerificationTokenRepository) DeleteForUser(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx,
		"DELETE FROM verification_tokens WHERE user_id = $1", userID); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error deleting verification tokens")
		return fmt.Errorf("error deleting verification tokens: %w", err)
	}
	return nil
}
