package models

import (
	"time"
)

// Team defines the team model based on the 'teams' table.
// LeaderID is immutable after creation and the leader is always present in
// the members set. Appeal fields are set iff IsRecruiting is true.
type Team struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	Name         string    `json:"name" db:"name" example:"Rocket"`
	ProjectIdea  string    `json:"projectIdea" db:"project_idea"`
	LeaderID     int64     `json:"leaderId" db:"leader_id"`
	IsRecruiting bool      `json:"isRecruiting" db:"is_recruiting"`
	AppealPitch  *string   `json:"appealPitch,omitempty" db:"appeal_pitch"`
	AppealSkills []string  `json:"appealSkills,omitempty" db:"appeal_skills"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	Members []TeamMember `json:"members,omitempty"` // Relation, no db tag
}

// TeamMember defines a membership presence row in the 'team_members' table
type TeamMember struct {
	TeamID   int64     `json:"teamId" db:"team_id"`
	UserID   int64     `json:"userId" db:"user_id"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
}

// TeamRosterEntry is a member row joined with its user profile, used for
// rendering a team's roster without a second query per member
type TeamRosterEntry struct {
	UserID    int64     `json:"userId" db:"user_id"`
	FullName  string    `json:"fullName" db:"full_name"`
	AvatarURL *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	JoinedAt  time.Time `json:"joinedAt" db:"joined_at"`
}

// HasMember reports whether the given user is present in the loaded members set
func (t *Team) HasMember(userID int64) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
