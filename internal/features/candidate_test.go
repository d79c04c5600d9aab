package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() Candidate {
	return Candidate{
		Years:         4,
		Education:     2,
		Skills:        6,
		JobChanges:    1,
		Certs:         2,
		Language:      0.8,
		InterviewPrep: 0.7,
	}
}

func TestCandidate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Candidate)
		wantErr string
	}{
		{"valid", func(c *Candidate) {}, ""},
		{"too much experience", func(c *Candidate) { c.Years = 51 }, "years_experience"},
		{"negative experience", func(c *Candidate) { c.Years = -1 }, "years_experience"},
		{"education below scale", func(c *Candidate) { c.Education = 0 }, "education_level"},
		{"education above scale", func(c *Candidate) { c.Education = 6 }, "education_level"},
		{"raw language ordinal", func(c *Candidate) { c.Language = 4 }, "language_proficiency"},
		{"raw prep rating", func(c *Candidate) { c.InterviewPrep = 7 }, "interview_prep_score"},
		{"NaN skills", func(c *Candidate) { c.Skills = math.NaN() }, "num_skills"},
		{"boundary values", func(c *Candidate) {
			c.Years, c.Education, c.Language, c.InterviewPrep = 50, 5, 1, 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLanguageLevel(t *testing.T) {
	v, err := LanguageLevel(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, v, 1e-12)

	v, err = LanguageLevel(5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = LanguageLevel(0)
	assert.Error(t, err)
	_, err = LanguageLevel(6)
	assert.Error(t, err)
}

func TestInterviewPrep(t *testing.T) {
	v, err := InterviewPrep(7)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, v, 1e-12)

	_, err = InterviewPrep(0)
	assert.Error(t, err)
	_, err = InterviewPrep(11)
	assert.Error(t, err)
}

func TestApplication_Candidate(t *testing.T) {
	app := Application{
		Years:         6,
		Education:     4,
		Skills:        ParseSkills("Go, Kubernetes, ,SQL"),
		Certs:         3,
		LanguageLevel: 4,
		PrepRating:    9,
		JobChanges:    2,
	}

	c, err := app.Candidate()
	require.NoError(t, err)

	assert.Equal(t, 3.0, c.Skills)
	assert.InDelta(t, 0.8, c.Language, 1e-12)
	assert.InDelta(t, 0.9, c.InterviewPrep, 1e-12)
	assert.Equal(t, 4.0, c.Education)
}

func TestApplication_CandidateRejectsOrdinalsOutOfRange(t *testing.T) {
	_, err := Application{Education: 2, LanguageLevel: 9, PrepRating: 5}.Candidate()
	assert.Error(t, err)

	_, err = Application{Education: 2, LanguageLevel: 3, PrepRating: 0}.Candidate()
	assert.Error(t, err)

	_, err = Application{Education: 9, LanguageLevel: 3, PrepRating: 5}.Candidate()
	assert.Error(t, err)
}

func TestApplication_SkillCountFallback(t *testing.T) {
	base := Application{Education: 2, LanguageLevel: 3, PrepRating: 5, SkillCount: 4}

	c, err := base.Candidate()
	require.NoError(t, err)
	assert.Equal(t, 4.0, c.Skills)

	base.Skills = []string{"Go", " "}
	c, err = base.Candidate()
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Skills)

	base.Skills = nil
	base.SkillCount = -1
	_, err = base.Candidate()
	assert.Error(t, err)
}

func TestParseSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, ParseSkills(" Go ,, SQL ,"))
	assert.Nil(t, ParseSkills(""))
}
