package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/realtime"
	"github.com/emre/teamforge/internal/pkg/validation"
)

// SkillService manages the shared skill vocabulary
type SkillService interface {
	ListSkills(ctx context.Context) ([]dto.SkillResponse, error)
	AddSkill(ctx context.Context, req *dto.AddSkillRequest) (*dto.SkillResponse, error)
}

// skillServiceImpl implements SkillService
type skillServiceImpl struct {
	skillStore SkillStore
	publisher  realtime.Publisher
	logger     zerolog.Logger
}

// NewSkillService creates a new SkillService
func NewSkillService(skillStore SkillStore, publisher realtime.Publisher, logger zerolog.Logger) SkillService {
	return &skillServiceImpl{
		skillStore: skillStore,
		publisher:  publisher,
		logger:     logger,
	}
}

// ListSkills returns the whole vocabulary
func (s *skillServiceImpl) ListSkills(ctx context.Context) ([]dto.SkillResponse, error) {
	skills, err := s.skillStore.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToSkillResponses(skills), nil
}

// AddSkill appends a tag to the vocabulary. Names are normalized before the
// append and duplicates come back as the existing entry, so the call never
// fails on a tag someone else added first.
func (s *skillServiceImpl) AddSkill(ctx context.Context, req *dto.AddSkillRequest) (*dto.SkillResponse, error) {
	name := models.NormalizeSkillName(req.Name)

	skill, err := s.skillStore.Ensure(ctx, name)
	if err != nil {
		return nil, err
	}

	resp := dto.ToSkillResponse(skill)
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventSkillAdded, Payload: resp})

	s.logger.Info().Str("skill", name).Msg("Skill added to vocabulary")
	return &resp, nil
}

// normalizeSkills normalizes and de-duplicates a profile's skill tags,
// dropping anything the tag pattern rejects
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, raw := range skills {
		name := models.NormalizeSkillName(raw)
		if name == "" || seen[name] || !validation.IsValidSkillTag(name) {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
