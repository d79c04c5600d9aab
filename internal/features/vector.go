package features

import "math"

// Count is the number of model inputs. Every encoder and decoder shares it.
const Count = 7

const (
	YearsExperience = iota
	EducationLevel
	NumSkills
	PrevJobChanges
	Certifications
	LanguageProficiency
	InterviewPrepScore
)

// Names are the human-readable feature names, indexed like Vector.
var Names = [Count]string{
	"Years of Experience",
	"Education Level",
	"Number of Skills",
	"Previous Job Changes",
	"Certifications",
	"Language Proficiency",
	"Interview Preparation",
}

// Keys are the snake_case feature keys, indexed like Vector.
var Keys = [Count]string{
	"years_experience",
	"education_level",
	"num_skills",
	"prev_job_changes",
	"certifications",
	"language_proficiency",
	"interview_prep_score",
}

// Vector is the fixed-order encoding of one candidate.
type Vector [Count]float64

// Record is anything that exposes the seven model inputs, already normalized.
type Record interface {
	YearsExperience() float64
	EducationLevel() float64
	NumSkills() float64
	PrevJobChanges() float64
	Certifications() float64
	LanguageProficiency() float64
	InterviewPrepScore() float64
}

// LabeledExample is a vector with an observed outcome.
type LabeledExample struct {
	Features  Vector `json:"features"`
	Succeeded bool   `json:"succeeded"`
}

func FromRecord(r Record) Vector {
	return Vector{
		r.YearsExperience(),
		r.EducationLevel(),
		r.NumSkills(),
		r.PrevJobChanges(),
		r.Certifications(),
		r.LanguageProficiency(),
		r.InterviewPrepScore(),
	}
}

// Finite reports whether no field is NaN or infinite.
func (v Vector) Finite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}

// Label returns 1 for a successful example and 0 otherwise.
func (e LabeledExample) Label() float64 {
	if e.Succeeded {
		return 1
	}
	return 0
}

// Vectors returns the feature vectors of examples, in order.
func Vectors(examples []LabeledExample) []Vector {
	out := make([]Vector, len(examples))
	for i, e := range examples {
		out[i] = e.Features
	}
	return out
}

// Labels returns the 0/1 labels of examples, in order.
func Labels(examples []LabeledExample) []float64 {
	out := make([]float64, len(examples))
	for i, e := range examples {
		out[i] = e.Label()
	}
	return out
}
