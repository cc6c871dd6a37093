package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/pkg/logger"
)

// SkillRepository handles database operations for the skill vocabulary
type SkillRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSkillRepository creates a new SkillRepository
func NewSkillRepository(db *pgxpool.Pool) *SkillRepository {
	return &SkillRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List retrieves the whole skill vocabulary ordered by name
func (r *SkillRepository) List(ctx context.Context) ([]*models.Skill, error) {
	sql, args, err := r.sb.Select("id", "name", "created_at").
		From("skills").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list skills query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list skills query")
		return nil, fmt.Errorf("error listing skills: %w", err)
	}
	defer rows.Close()

	skills := []*models.Skill{}
	for rows.Next() {
		var s models.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning skill row: %w", err)
		}
		skills = append(skills, &s)
	}
	return skills, rows.Err()
}

// Ensure appends a normalized skill name to the vocabulary. Existing names
// are returned as-is; the append never fails on a duplicate.
func (r *SkillRepository) Ensure(ctx context.Context, name string) (*models.Skill, error) {
	var skill models.Skill
	err := r.db.QueryRow(ctx,
		`INSERT INTO skills (name) VALUES ($1)
		 ON CONFLICT (name) DO NOTHING
		 RETURNING id, name, created_at`, name,
	).Scan(&skill.ID, &skill.Name, &skill.CreatedAt)
	if err == nil {
		return &skill, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Str("name", name).Msg("Error inserting skill")
		return nil, fmt.Errorf("error inserting skill: %w", err)
	}

	// Conflict path: the name already exists, fetch it
	err = r.db.QueryRow(ctx,
		"SELECT id, name, created_at FROM skills WHERE name = $1", name,
	).Scan(&skill.ID, &skill.Name, &skill.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Str("name", name).Msg("Error fetching existing skill")
		return nil, fmt.Errorf("error fetching existing skill: %w", err)
	}
	return &skill, nil
}

// EnsureMany seeds multiple skills, ignoring the ones already present
func (r *SkillRepository) EnsureMany(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := r.Ensure(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
