package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"ada@example.com",
		"first.last@uni.edu.tr",
		"user+tag@domain.io",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}

	invalid := []string{
		"",
		"no-at-sign",
		"@missing-local.com",
		"user@",
		"UPPER@EXAMPLE.COM", // pattern expects lowercase
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestIsValidSkillTag(t *testing.T) {
	valid := []string{
		"Go",
		"React.js",
		"ML/AI",
		"UI/UX Design",
		"C#",
		"C++",
		"Node.js",
	}
	for _, tag := range valid {
		assert.True(t, IsValidSkillTag(tag), tag)
	}

	invalid := []string{
		"",
		" leading space",
		"/leading-slash",
		"emoji 🚀",
		"waaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaay-too-long-tag",
	}
	for _, tag := range invalid {
		assert.False(t, IsValidSkillTag(tag), tag)
	}
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("12345678"))
	assert.False(t, IsValidPassword("1234567"))
	assert.False(t, IsValidPassword(""))
}
