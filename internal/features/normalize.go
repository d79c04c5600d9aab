package features

import (
	"fmt"
	"strings"
)

// Form ordinals. Application forms collect language as a 1-5 level and
// interview preparation as a 1-10 self rating; the model only ever sees the
// [0,1] fractions produced below.
const (
	MaxLanguageLevel = 5
	MaxPrepRating    = 10
)

// LanguageLevel converts a 1-5 language level to a fraction in (0,1].
func LanguageLevel(level int) (float64, error) {
	if level < 1 || level > MaxLanguageLevel {
		return 0, fmt.Errorf("language level must be between 1 and %d, got %d", MaxLanguageLevel, level)
	}
	return float64(level) / MaxLanguageLevel, nil
}

// InterviewPrep converts a 1-10 preparation rating to a fraction in (0,1].
func InterviewPrep(rating int) (float64, error) {
	if rating < 1 || rating > MaxPrepRating {
		return 0, fmt.Errorf("interview preparation rating must be between 1 and %d, got %d", MaxPrepRating, rating)
	}
	return float64(rating) / MaxPrepRating, nil
}

// Application is the raw job application form: ordinal language level and
// prep rating, and a skill list instead of a count. SkillCount is used only
// when Skills has no non-blank entry.
type Application struct {
	Years         float64
	Education     int
	Skills        []string
	SkillCount    int
	Certs         int
	LanguageLevel int
	PrepRating    int
	JobChanges    int
}

// Candidate normalizes the form into the model's units.
func (a Application) Candidate() (Candidate, error) {
	lang, err := LanguageLevel(a.LanguageLevel)
	if err != nil {
		return Candidate{}, err
	}
	prep, err := InterviewPrep(a.PrepRating)
	if err != nil {
		return Candidate{}, err
	}

	skills := 0
	for _, s := range a.Skills {
		if strings.TrimSpace(s) != "" {
			skills++
		}
	}
	if skills == 0 {
		skills = a.SkillCount
	}

	c := Candidate{
		Years:         a.Years,
		Education:     float64(a.Education),
		Skills:        float64(skills),
		JobChanges:    float64(a.JobChanges),
		Certs:         float64(a.Certs),
		Language:      lang,
		InterviewPrep: prep,
	}
	if err := c.Validate(); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

// ParseSkills splits a comma separated skill list, dropping blanks.
func ParseSkills(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
