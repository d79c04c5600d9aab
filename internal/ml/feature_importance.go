package ml

import (
	"fmt"
	"sort"
	"strings"
)

// Importance is one entry of a feature ranking.
type Importance struct {
	Name      string  `json:"name"`
	Magnitude float64 `json:"magnitude"`
}

// sortImportance orders by magnitude (descending); ties keep feature order.
func sortImportance(ranking []Importance) {
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Magnitude > ranking[j].Magnitude
	})
}

// TopFeatures returns the names of the n most important features.
func TopFeatures(ranking []Importance, n int) []string {
	if n > len(ranking) {
		n = len(ranking)
	}
	if n < 0 {
		n = 0
	}

	result := make([]string, n)
	for i := 0; i < n; i++ {
		result[i] = ranking[i].Name
	}
	return result
}

// ImportanceMap converts a ranking to a name -> magnitude map.
func ImportanceMap(ranking []Importance) map[string]float64 {
	m := make(map[string]float64, len(ranking))
	for _, imp := range ranking {
		m[imp.Name] = imp.Magnitude
	}
	return m
}

// Shares normalizes magnitudes so they sum to 1. A ranking with zero total
// magnitude yields zero shares.
func Shares(ranking []Importance) []Importance {
	var total float64
	for _, imp := range ranking {
		total += imp.Magnitude
	}

	out := make([]Importance, len(ranking))
	for i, imp := range ranking {
		out[i] = Importance{Name: imp.Name}
		if total > 0 {
			out[i].Magnitude = imp.Magnitude / total
		}
	}
	return out
}

// FormatRanking renders a ranking as an aligned two column table.
func FormatRanking(ranking []Importance) string {
	width := 0
	for _, imp := range ranking {
		if len(imp.Name) > width {
			width = len(imp.Name)
		}
	}

	var b strings.Builder
	for i, imp := range ranking {
		fmt.Fprintf(&b, "%2d. %-*s  %.4f\n", i+1, width, imp.Name, imp.Magnitude)
	}
	return b.String()
}
