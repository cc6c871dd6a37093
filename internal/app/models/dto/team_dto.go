package dto

import (
	"time"

	"github.com/emre/teamforge/internal/app/models"
)

// CreateTeamRequest represents the payload for founding a team. The team
// may open recruiting right away by carrying a complete appeal.
type CreateTeamRequest struct {
	Name         string   `json:"name" binding:"required,min=2,max=60"`
	ProjectIdea  string   `json:"projectIdea" binding:"required,min=10,max=1000"`
	IsRecruiting bool     `json:"isRecruiting"`
	AppealPitch  *string  `json:"appealPitch,omitempty" binding:"omitempty,min=10,max=500"`
	AppealSkills []string `json:"appealSkills,omitempty" binding:"omitempty,max=10,dive,skilltag"`
}

// UpdateTeamRequest represents team settings editable by the leader.
// Appeal fields must be present exactly when isRecruiting is true.
type UpdateTeamRequest struct {
	Name         string   `json:"name" binding:"required,min=2,max=60"`
	ProjectIdea  string   `json:"projectIdea" binding:"required,min=10,max=1000"`
	IsRecruiting bool     `json:"isRecruiting"`
	AppealPitch  *string  `json:"appealPitch,omitempty" binding:"omitempty,min=10,max=500"`
	AppealSkills []string `json:"appealSkills,omitempty" binding:"omitempty,max=10,dive,skilltag"`
}

// TeamMemberResponse is a member entry inside a team
type TeamMemberResponse struct {
	UserID    int64     `json:"userId"`
	FullName  string    `json:"fullName"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	IsLeader  bool      `json:"isLeader"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// TeamResponse represents a team with its member roster
type TeamResponse struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	ProjectIdea  string               `json:"projectIdea"`
	LeaderID     int64                `json:"leaderId"`
	IsRecruiting bool                 `json:"isRecruiting"`
	AppealPitch  *string              `json:"appealPitch,omitempty"`
	AppealSkills []string             `json:"appealSkills,omitempty"`
	Members      []TeamMemberResponse `json:"members"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// ToTeamResponse maps a team model to its API shape. Member names come from
// the preloaded roster; the leader is flagged by id comparison.
func ToTeamResponse(team *models.Team, members []TeamMemberResponse) TeamResponse {
	if members == nil {
		members = []TeamMemberResponse{}
	}
	return TeamResponse{
		ID:           team.ID,
		Name:         team.Name,
		ProjectIdea:  team.ProjectIdea,
		LeaderID:     team.LeaderID,
		IsRecruiting: team.IsRecruiting,
		AppealPitch:  team.AppealPitch,
		AppealSkills: team.AppealSkills,
		Members:      members,
		CreatedAt:    team.CreatedAt,
		UpdatedAt:    team.UpdatedAt,
	}
}
