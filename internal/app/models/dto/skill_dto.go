package dto

import (
	"time"

	"github.com/emre/teamforge/internal/app/models"
)

// AddSkillRequest appends a new tag to the skill vocabulary
type AddSkillRequest struct {
	Name string `json:"name" binding:"required,skilltag"`
}

// SkillResponse represents a skill vocabulary entry
type SkillResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToSkillResponse maps a skill model to its API shape
func ToSkillResponse(skill *models.Skill) SkillResponse {
	return SkillResponse{
		ID:        skill.ID,
		Name:      skill.Name,
		CreatedAt: skill.CreatedAt,
	}
}

// ToSkillResponses maps a slice of skills preserving order
func ToSkillResponses(skills []*models.Skill) []SkillResponse {
	out := make([]SkillResponse, 0, len(skills))
	for _, s := range skills {
		out = append(out, ToSkillResponse(s))
	}
	return out
}
