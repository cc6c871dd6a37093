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
	"github.com/emre/teamforge/internal/pkg/logger"
)

// ChatRepository handles database operations for messages and read receipts
type ChatRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMessage inserts a message with a server-side timestamp and the
// sender's self read receipt in one transaction
func (r *ChatRepository) CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var created models.Message
	err = tx.QueryRow(ctx,
		`INSERT INTO messages (team_id, sender_id, sender_name, sender_avatar, body)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, team_id, sender_id, sender_name, sender_avatar, body, created_at`,
		msg.TeamID, msg.SenderID, msg.SenderName, msg.SenderAvatar, msg.Body,
	).Scan(&created.ID, &created.TeamID, &created.SenderID, &created.SenderName, &created.SenderAvatar, &created.Body, &created.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("senderID", msg.SenderID).Msg("Error inserting message")
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	// A message is always read by its sender
	if _, err := tx.Exec(ctx,
		"INSERT INTO message_reads (message_id, user_id) VALUES ($1, $2)", created.ID, msg.SenderID); err != nil {
		return nil, fmt.Errorf("error inserting sender read receipt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing create message transaction: %w", err)
	}

	created.ReadBy = []int64{msg.SenderID}
	return &created, nil
}

// GetMessageByID retrieves a single message with its read receipts
func (r *ChatRepository) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	var msg models.Message
	err := r.db.QueryRow(ctx,
		`SELECT m.id, m.team_id, m.sender_id, m.sender_name, m.sender_avatar, m.body, m.created_at,
		        COALESCE(array_agg(mr.user_id ORDER BY mr.read_at) FILTER (WHERE mr.user_id IS NOT NULL), '{}')
		 FROM messages m
		 LEFT JOIN message_reads mr ON mr.message_id = m.id
		 WHERE m.id = $1
		 GROUP BY m.id`, id,
	).Scan(&msg.ID, &msg.TeamID, &msg.SenderID, &msg.SenderName, &msg.SenderAvatar, &msg.Body, &msg.CreatedAt, &msg.ReadBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		logger.Error().Err(err).Int64("messageID", id).Msg("Error scanning message row")
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}
	return &msg, nil
}

// ListMessages retrieves chat history for a scope, newest last. teamID nil
// selects the community scope. beforeID of zero means from the latest.
func (r *ChatRepository) ListMessages(ctx context.Context, teamID *int64, limit int, beforeID int64) ([]*models.Message, error) {
	builder := r.sb.Select(
		"m.id", "m.team_id", "m.sender_id", "m.sender_name", "m.sender_avatar", "m.body", "m.created_at",
		"COALESCE(array_agg(mr.user_id ORDER BY mr.read_at) FILTER (WHERE mr.user_id IS NOT NULL), '{}')").
		From("messages m").
		LeftJoin("message_reads mr ON mr.message_id = m.id").
		GroupBy("m.id").
		OrderBy("m.id DESC").
		Limit(uint64(limit))

	if teamID == nil {
		builder = builder.Where("m.team_id IS NULL")
	} else {
		builder = builder.Where(squirrel.Eq{"m.team_id": *teamID})
	}
	if beforeID > 0 {
		builder = builder.Where(squirrel.Lt{"m.id": beforeID})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list messages query")
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.TeamID, &msg.SenderID, &msg.SenderName, &msg.SenderAvatar, &msg.Body, &msg.CreatedAt, &msg.ReadBy); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order for display
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteMessage removes a message if the caller is its sender
func (r *ChatRepository) DeleteMessage(ctx context.Context, messageID, callerID int64) (*models.Message, error) {
	msg, err := r.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != callerID {
		return nil, apperrors.ErrNotSender
	}

	cmdTag, err := r.db.Exec(ctx,
		"DELETE FROM messages WHERE id = $1 AND sender_id = $2", messageID, callerID)
	if err != nil {
		logger.Error().Err(err).Int64("messageID", messageID).Msg("Error deleting message")
		return nil, fmt.Errorf("error deleting message: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, apperrors.ErrMessageNotFound
	}
	return msg, nil
}

// MarkRead upserts a read receipt. Re-reading is a no-op.
func (r *ChatRepository) MarkRead(ctx context.Context, messageID, userID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`INSERT INTO message_reads (message_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (message_id, user_id) DO NOTHING`, messageID, userID)
	if err != nil {
		logger.Error().Err(err).Int64("messageID", messageID).Int64("userID", userID).Msg("Error marking message read")
		return fmt.Errorf("error marking message read: %w", err)
	}

	_ = cmdTag // duplicate receipts are fine
	return nil
}
