package main

import (
	"encoding/json"
	"fmt"
	"os"

	"candidate-predictor/internal/features"

	"github.com/spf13/cobra"
)

// candidateFlags describes one candidate on the command line, either field
// by field or as a JSON file. Language and interview preparation are taken as
// form ordinals and normalized.
type candidateFlags struct {
	file          string
	years         float64
	education     int
	skills        int
	skillList     string
	jobChanges    int
	certs         int
	languageLevel int
	prepRating    int
}

func (f *candidateFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "JSON file with a candidate (overrides the field flags)")
	fl.Float64Var(&f.years, "years", 0, "Years of experience")
	fl.IntVar(&f.education, "education", 1, "Education level (1-5)")
	fl.IntVar(&f.skills, "skills", 0, "Number of skills")
	fl.StringVar(&f.skillList, "skill-list", "", "Comma separated skills, counted instead of --skills")
	fl.IntVar(&f.jobChanges, "job-changes", 0, "Number of previous job changes")
	fl.IntVar(&f.certs, "certs", 0, "Number of certifications")
	fl.IntVar(&f.languageLevel, "language-level", 1, fmt.Sprintf("Language level (1-%d)", features.MaxLanguageLevel))
	fl.IntVar(&f.prepRating, "prep-rating", 1, fmt.Sprintf("Interview preparation rating (1-%d)", features.MaxPrepRating))
}

func (f *candidateFlags) candidate() (features.Candidate, error) {
	if f.file != "" {
		return readCandidate(f.file)
	}

	return features.Application{
		Years:         f.years,
		Education:     f.education,
		Skills:        features.ParseSkills(f.skillList),
		SkillCount:    f.skills,
		Certs:         f.certs,
		LanguageLevel: f.languageLevel,
		PrepRating:    f.prepRating,
		JobChanges:    f.jobChanges,
	}.Candidate()
}

// readCandidate decodes an already normalized candidate from a JSON file.
func readCandidate(path string) (features.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return features.Candidate{}, fmt.Errorf("read candidate file: %w", err)
	}

	var c features.Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		return features.Candidate{}, fmt.Errorf("parse candidate file %s: %w", path, err)
	}
	return c, c.Validate()
}
