package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/realtime"
)

func TestAddSkillNormalizesAndDeduplicates(t *testing.T) {
	store := newMemoryStore()
	pub := &fakePublisher{}
	svc := NewSkillService(store.skillsView(), pub, zerolog.Nop())

	first, err := svc.AddSkill(asUser(1), &dto.AddSkillRequest{Name: "  ML/AI "})
	require.NoError(t, err)
	assert.Equal(t, "ML/AI", first.Name)

	// Adding the same tag again returns the existing entry
	second, err := svc.AddSkill(asUser(2), &dto.AddSkillRequest{Name: "ML/AI"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	skills, err := svc.ListSkills(asUser(1))
	require.NoError(t, err)
	assert.Len(t, skills, 1)

	assert.Contains(t, pub.typesOn(realtime.ChannelCommunity), realtime.EventSkillAdded)
}

func TestNormalizeSkills(t *testing.T) {
	got := normalizeSkills([]string{
		"  Go ",
		"Go",          // duplicate after trim
		"React.js",
		"",            // dropped
		"   ",         // dropped
		"UI/UX  Design", // inner runs collapse
	})

	assert.Equal(t, []string{"Go", "React.js", "UI/UX Design"}, got)
}
