package storage

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"candidate-predictor/internal/features"

	"github.com/gocarina/gocsv"
)

// surveyRow is the CSV layout of historical surveys. Outcome is empty for
// surveys whose outcome is unknown.
type surveyRow struct {
	UserID        string  `csv:"user_id"`
	Years         float64 `csv:"years_experience"`
	Education     float64 `csv:"education_level"`
	Skills        float64 `csv:"num_skills"`
	JobChanges    float64 `csv:"prev_job_changes"`
	Certs         float64 `csv:"certifications"`
	Language      float64 `csv:"language_proficiency"`
	InterviewPrep float64 `csv:"interview_prep_score"`
	Outcome       string  `csv:"success"`
	Public        bool    `csv:"public"`
}

func (r surveyRow) record() (SurveyRecord, error) {
	rec := SurveyRecord{
		UserID: r.UserID,
		Candidate: features.Candidate{
			Years:         r.Years,
			Education:     r.Education,
			Skills:        r.Skills,
			JobChanges:    r.JobChanges,
			Certs:         r.Certs,
			Language:      r.Language,
			InterviewPrep: r.InterviewPrep,
		},
		Public: r.Public,
	}

	if s := strings.TrimSpace(r.Outcome); s != "" {
		ok, err := strconv.ParseBool(s)
		if err != nil {
			return SurveyRecord{}, fmt.Errorf("invalid success value %q", r.Outcome)
		}
		rec.Success = &ok
	}

	if err := rec.Candidate.Validate(); err != nil {
		return SurveyRecord{}, err
	}
	return rec, nil
}

func rowFrom(rec SurveyRecord) surveyRow {
	row := surveyRow{
		UserID:        rec.UserID,
		Years:         rec.Candidate.Years,
		Education:     rec.Candidate.Education,
		Skills:        rec.Candidate.Skills,
		JobChanges:    rec.Candidate.JobChanges,
		Certs:         rec.Candidate.Certs,
		Language:      rec.Candidate.Language,
		InterviewPrep: rec.Candidate.InterviewPrep,
		Public:        rec.Public,
	}
	if rec.Success != nil {
		row.Outcome = strconv.FormatBool(*rec.Success)
	}
	return row
}

// ParseCSV decodes surveys from CSV with a header row. Any invalid row
// fails the whole parse; line numbers count the header as line 1.
func ParseCSV(r io.Reader) ([]SurveyRecord, error) {
	var rows []surveyRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	records := make([]SurveyRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ImportCSV parses surveys from r and stores them in one transaction.
// It returns the number of surveys stored.
func (s *Store) ImportCSV(r io.Reader) (int, error) {
	records, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}
	if err := s.StoreSurveys(records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportCSV writes every stored survey to w in the ImportCSV layout.
func (s *Store) ExportCSV(w io.Writer) error {
	records, err := s.GetSurveys()
	if err != nil {
		return err
	}

	rows := make([]surveyRow, len(records))
	for i, rec := range records {
		rows[i] = rowFrom(rec)
	}
	return gocsv.Marshal(rows, w)
}
