package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,10}$`

	// Skill tag pattern - letters, digits, and a few separators, 1-40 chars
	SkillPattern = `^[A-Za-z0-9][A-Za-z0-9 ./+#\-]{0,39}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100

	// Team name min/max length
	TeamNameMinLength = 2
	TeamNameMaxLength = 60

	// Chat message max length
	MessageMaxLength = 2000
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
	Skill *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	Skill: regexp.MustCompile(SkillPattern),
}

// IsValidEmail reports whether the email matches the accepted pattern
func IsValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(email)
}

// IsValidSkillTag reports whether the tag is acceptable for the shared
// skill vocabulary
func IsValidSkillTag(tag string) bool {
	return CompiledPatterns.Skill.MatchString(tag)
}

// IsValidPassword reports whether the password meets the minimum length
func IsValidPassword(password string) bool {
	return len(password) >= PasswordMinLength
}
