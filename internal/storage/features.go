package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"candidate-predictor/internal/features"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// SurveyRecord is one candidate survey. Success is nil until the outcome of
// the application is known.
type SurveyRecord struct {
	ID        uuid.UUID          `json:"id"`
	UserID    string             `json:"user_id"`
	CreatedAt time.Time          `json:"created_at"`
	Candidate features.Candidate `json:"candidate"`
	Success   *bool              `json:"success,omitempty"`
	Public    bool               `json:"public"`
}

// Labeled reports whether the survey has an observed outcome.
func (r SurveyRecord) Labeled() bool {
	return r.Success != nil
}

// surveyKey orders surveys by creation time; the ID breaks ties.
func surveyKey(ts time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%020d_%s", ts.UnixNano(), id))
}

func timeKey(ts time.Time) []byte {
	return []byte(fmt.Sprintf("%020d", ts.UnixNano()))
}

func (r *SurveyRecord) prepare() error {
	if err := r.Candidate.Validate(); err != nil {
		return err
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

func putSurvey(b *bbolt.Bucket, rec SurveyRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal survey: %w", err)
	}
	return b.Put(surveyKey(rec.CreatedAt, rec.ID), data)
}

// StoreSurvey validates and stores a survey, assigning an ID and timestamp
// when missing. The stored record is returned.
func (s *Store) StoreSurvey(rec SurveyRecord) (SurveyRecord, error) {
	if err := rec.prepare(); err != nil {
		return SurveyRecord{}, err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return putSurvey(tx.Bucket([]byte(surveysBucket)), rec)
	})
	if err != nil {
		return SurveyRecord{}, err
	}
	return rec, nil
}

// StoreSurveys stores all records in a single transaction. Nothing is
// stored if any record is invalid.
func (s *Store) StoreSurveys(recs []SurveyRecord) error {
	for i := range recs {
		if err := recs[i].prepare(); err != nil {
			return fmt.Errorf("survey %d: %w", i, err)
		}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(surveysBucket))
		for _, rec := range recs {
			if err := putSurvey(b, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSurveys returns every stored survey ordered by creation time.
func (s *Store) GetSurveys() ([]SurveyRecord, error) {
	var records []SurveyRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(surveysBucket)).ForEach(func(_, v []byte) error {
			var rec SurveyRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil // Skip malformed records
			}
			records = append(records, rec)
			return nil
		})
	})

	return records, err
}

// GetSurveysInRange returns surveys created within [start, end].
func (s *Store) GetSurveysInRange(start, end time.Time) ([]SurveyRecord, error) {
	var records []SurveyRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(surveysBucket)).Cursor()

		startKey := timeKey(start)
		// "_~" sorts after any "_<uuid>" suffix at the same timestamp.
		endKey := append(timeKey(end), []byte("_~")...)

		for k, v := c.Seek(startKey); k != nil && compareKeys(k, endKey) <= 0; k, v = c.Next() {
			var rec SurveyRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // Skip malformed records
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

// CountSurveys returns the number of stored surveys.
func (s *Store) CountSurveys() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(surveysBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// LabeledExamples converts the surveys with a known outcome into training
// examples, in creation order.
func (s *Store) LabeledExamples() ([]features.LabeledExample, error) {
	records, err := s.GetSurveys()
	if err != nil {
		return nil, err
	}
	return ExamplesFrom(records), nil
}

// ExamplesFrom keeps the labeled records and encodes them.
func ExamplesFrom(records []SurveyRecord) []features.LabeledExample {
	out := make([]features.LabeledExample, 0, len(records))
	for _, rec := range records {
		if !rec.Labeled() {
			continue
		}
		out = append(out, features.LabeledExample{
			Features:  features.FromRecord(rec.Candidate),
			Succeeded: *rec.Success,
		})
	}
	return out
}
