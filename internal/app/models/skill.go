package models

import (
	"strings"
	"time"
)

// Skill defines a tag in the shared skill vocabulary, based on the 'skills'
// table. The vocabulary is seeded with defaults and grows freely as users
// type new tags.
type Skill struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" example:"Go"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// NormalizeSkillName trims surrounding whitespace and collapses inner runs
// of spaces so "  ML/AI " and "ML/AI" are the same tag.
func NormalizeSkillName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
