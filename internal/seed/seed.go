package seed

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appRepos "github.com/emre/teamforge/internal/app/repositories"
)

// defaultSkills is the starter vocabulary shown to users before anyone has
// added custom tags. Existing entries are left untouched on restart.
var defaultSkills = []string{
	"React.js",
	"Node.js",
	"Python",
	"Java",
	"Go",
	"UI/UX Design",
	"ML/AI",
	"Data Science",
	"Project Management",
}

// CreateDefaultData seeds the skill vocabulary if it is missing entries.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	skillRepo := appRepos.NewSkillRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default skill vocabulary...")
	if err := skillRepo.EnsureMany(ctx, defaultSkills); err != nil {
		lgr.Error().Err(err).Msg("Error seeding default skills")
		return err
	}

	lgr.Info().Int("count", len(defaultSkills)).Msg("Default skill vocabulary ensured")
	return nil
}
