package dto

import (
	"time"

	"github.com/emre/teamforge/internal/app/models"
)

// UserResponse represents a user profile
type UserResponse struct {
	ID              int64            `json:"id"`
	Email           string           `json:"email"`
	FullName        string           `json:"fullName"`
	AvatarURL       *string          `json:"avatarUrl,omitempty"`
	Year            models.ClassYear `json:"year"`
	Bio             string           `json:"bio"`
	Skills          []string         `json:"skills"`
	TeamID          *int64           `json:"teamId,omitempty"`
	IsEmailVerified bool             `json:"isEmailVerified"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FullName string           `json:"fullName" binding:"required,min=2,max=80"`
	Year     models.ClassYear `json:"year" binding:"required,classyear"`
	Bio      string           `json:"bio" binding:"max=500"`
	Skills   []string         `json:"skills" binding:"max=20,dive,skilltag"`
}

// ToUserResponse maps a user model to its API shape
func ToUserResponse(user *models.User) UserResponse {
	skills := user.Skills
	if skills == nil {
		skills = []string{}
	}
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		FullName:        user.FullName,
		AvatarURL:       user.AvatarURL,
		Year:            user.Year,
		Bio:             user.Bio,
		Skills:          skills,
		TeamID:          user.TeamID,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
	}
}

// ToUserResponses maps a slice of users preserving order
func ToUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}
