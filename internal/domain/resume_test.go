package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSkillSet(t *testing.T) {
	t.Run("add dedupes and keeps first occurrence", func(t *testing.T) {
		s := SkillSet(nil).Add("Go", " SQL ", "Go", "", "go")
		assert.Equal(t, SkillSet{"Go", "SQL", "go"}, s)
	})

	t.Run("add does not mutate receiver", func(t *testing.T) {
		base := SkillSet{"Go"}
		grown := base.Add("Rust")
		assert.Equal(t, SkillSet{"Go"}, base)
		assert.Equal(t, SkillSet{"Go", "Rust"}, grown)
	})

	t.Run("remove ignores missing", func(t *testing.T) {
		s := SkillSet{"Go", "SQL", "Docker"}.Remove("SQL", "Kotlin")
		assert.Equal(t, SkillSet{"Go", "Docker"}, s)
	})

	t.Run("contains fold", func(t *testing.T) {
		s := SkillSet{"PostgreSQL", "Go"}
		assert.True(t, s.ContainsFold([]string{"go"}))
		assert.False(t, s.ContainsFold([]string{"postgres"}))
	})

	t.Run("nil marshals as empty array", func(t *testing.T) {
		b, err := json.Marshal(struct {
			Skills SkillSet `json:"skills"`
		}{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"skills":[]}`, string(b))
	})
}

func TestResumePatchApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := Resume{
		ID: "r1", OwnerID: "u1", Name: "Ana", Email: "ana@example.com", Role: "Backend",
		Experience: ExperienceFresher, Skills: SkillSet{"Go", "SQL"}, CreatedAt: created,
	}

	t.Run("nil fields keep stored values", func(t *testing.T) {
		r := base.Clone()
		ResumePatch{Role: strPtr("  Platform ")}.Apply(&r)
		assert.Equal(t, "Platform", r.Role)
		assert.Equal(t, "Ana", r.Name)
		assert.Equal(t, SkillSet{"Go", "SQL"}, r.Skills)
		assert.Equal(t, "r1", r.ID)
		assert.Equal(t, created, r.CreatedAt)
	})

	t.Run("skills replace then add then remove", func(t *testing.T) {
		r := base.Clone()
		skills := []string{"Docker", "Go"}
		ResumePatch{Skills: &skills, AddSkills: []string{"Kafka", "Go"}, RemoveSkills: []string{"Docker"}}.Apply(&r)
		assert.Equal(t, SkillSet{"Go", "Kafka"}, r.Skills)
		assert.Equal(t, SkillSet{"Go", "SQL"}, base.Skills)
	})

	t.Run("blank skill detection", func(t *testing.T) {
		skills := []string{"Go", "  "}
		assert.True(t, ResumePatch{Skills: &skills}.HasBlankSkill())
		assert.True(t, ResumePatch{AddSkills: []string{""}}.HasBlankSkill())
		assert.False(t, ResumePatch{RemoveSkills: []string{""}}.HasBlankSkill())
	})
}

func TestResumeInputNormalize(t *testing.T) {
	in := ResumeInput{Name: " Ana ", Experience: " Fresher", Skills: []string{" Go "}}
	in.Normalize()
	assert.Equal(t, "Ana", in.Name)
	assert.Equal(t, "Fresher", in.Experience)
	assert.Equal(t, []string{"Go"}, in.Skills)
}
