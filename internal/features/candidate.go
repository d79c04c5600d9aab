package features

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Candidate is the canonical self-reported candidate profile.
// Language and InterviewPrep are fractions in [0,1]; see LanguageLevel and
// InterviewPrep for converting form ordinals.
type Candidate struct {
	Years         float64 `json:"years_experience" yaml:"years_experience" csv:"years_experience" validate:"gte=0,lte=50"`
	Education     float64 `json:"education_level" yaml:"education_level" csv:"education_level" validate:"gte=1,lte=5"`
	Skills        float64 `json:"num_skills" yaml:"num_skills" csv:"num_skills" validate:"gte=0,lte=100"`
	JobChanges    float64 `json:"prev_job_changes" yaml:"prev_job_changes" csv:"prev_job_changes" validate:"gte=0,lte=20"`
	Certs         float64 `json:"certifications" yaml:"certifications" csv:"certifications" validate:"gte=0,lte=20"`
	Language      float64 `json:"language_proficiency" yaml:"language_proficiency" csv:"language_proficiency" validate:"gte=0,lte=1"`
	InterviewPrep float64 `json:"interview_prep_score" yaml:"interview_prep_score" csv:"interview_prep_score" validate:"gte=0,lte=1"`
}

func (c Candidate) YearsExperience() float64     { return c.Years }
func (c Candidate) EducationLevel() float64      { return c.Education }
func (c Candidate) NumSkills() float64           { return c.Skills }
func (c Candidate) PrevJobChanges() float64      { return c.JobChanges }
func (c Candidate) Certifications() float64      { return c.Certs }
func (c Candidate) LanguageProficiency() float64 { return c.Language }
func (c Candidate) InterviewPrepScore() float64  { return c.InterviewPrep }

// CandidateFromVector is the inverse of FromRecord for a Candidate.
func CandidateFromVector(v Vector) Candidate {
	return Candidate{
		Years:         v[YearsExperience],
		Education:     v[EducationLevel],
		Skills:        v[NumSkills],
		JobChanges:    v[PrevJobChanges],
		Certs:         v[Certifications],
		Language:      v[LanguageProficiency],
		InterviewPrep: v[InterviewPrepScore],
	}
}

// Validate checks every field against the survey form ranges.
func (c Candidate) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fieldKey(fe.StructField()), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("invalid candidate: %s", strings.Join(msgs, "; "))
}

func fieldKey(structField string) string {
	switch structField {
	case "Years":
		return Keys[YearsExperience]
	case "Education":
		return Keys[EducationLevel]
	case "Skills":
		return Keys[NumSkills]
	case "JobChanges":
		return Keys[PrevJobChanges]
	case "Certs":
		return Keys[Certifications]
	case "Language":
		return Keys[LanguageProficiency]
	case "InterviewPrep":
		return Keys[InterviewPrepScore]
	}
	return structField
}
