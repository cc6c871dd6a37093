package models

import (
	"time"
)

// ClassYear represents the study year of a user
type ClassYear string

const (
	YearFirst  ClassYear = "FIRST"
	YearSecond ClassYear = "SECOND"
	YearThird  ClassYear = "THIRD"
	YearFinal  ClassYear = "FINAL"
)

// IsValid checks whether the class year is one of the known values
func (y ClassYear) IsValid() bool {
	switch y {
	case YearFirst, YearSecond, YearThird, YearFinal:
		return true
	}
	return false
}

// User defines the user model based on the 'users' table.
// TeamID is nil while the user is teamless; it must always agree with the
// presence rows in 'team_members'.
type User struct {
	ID              int64      `json:"id" db:"id" example:"1"`
	Email           string     `json:"email" db:"email" example:"ada@campus.edu"`
	Password        string     `json:"-" db:"password"` // Hashed password (excluded from JSON)
	FullName        string     `json:"fullName" db:"full_name" example:"Ada Lovelace"`
	AvatarURL       *string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	Year            ClassYear  `json:"year" db:"year" example:"THIRD"`
	Bio             string     `json:"bio" db:"bio"`
	Skills          []string   `json:"skills" db:"skills"`
	TeamID          *int64     `json:"teamId,omitempty" db:"team_id"`
	IsEmailVerified bool       `json:"isEmailVerified" db:"is_email_verified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasTeam reports whether the user currently belongs to a team
func (u *User) HasTeam() bool {
	return u != nil && u.TeamID != nil
}
