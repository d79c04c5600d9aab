package ml

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ClassMetrics holds per-class precision, recall and F1.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// ClassificationReport is the evaluation of a binary classifier on a held
// out partition. Undefined ratios (zero denominators) are reported as 0.
type ClassificationReport struct {
	Negative    ClassMetrics `json:"0"`
	Positive    ClassMetrics `json:"1"`
	Accuracy    float64      `json:"accuracy"`
	MacroAvg    ClassMetrics `json:"macro avg"`
	WeightedAvg ClassMetrics `json:"weighted avg"`
}

// Evaluate compares 0/1 predictions against the true labels.
func Evaluate(yTrue, yPred []int) (float64, ClassificationReport, error) {
	if len(yTrue) == 0 {
		return 0, ClassificationReport{}, ErrEmptyDataset
	}
	if len(yTrue) != len(yPred) {
		return 0, ClassificationReport{}, fmt.Errorf("%w: %d labels but %d predictions", ErrInvalidInput, len(yTrue), len(yPred))
	}

	// confusion[actual][predicted]
	var confusion [2][2]int
	for i := range yTrue {
		a, p := yTrue[i], yPred[i]
		if (a != 0 && a != 1) || (p != 0 && p != 1) {
			return 0, ClassificationReport{}, fmt.Errorf("%w: labels must be 0 or 1 (row %d)", ErrInvalidInput, i)
		}
		confusion[a][p]++
	}

	var report ClassificationReport
	report.Negative = classMetrics(confusion, 0)
	report.Positive = classMetrics(confusion, 1)
	report.Accuracy = float64(confusion[0][0]+confusion[1][1]) / float64(len(yTrue))

	classes := []ClassMetrics{report.Negative, report.Positive}
	report.MacroAvg = average(classes, nil)
	report.WeightedAvg = average(classes, []float64{
		float64(report.Negative.Support),
		float64(report.Positive.Support),
	})

	return report.Accuracy, report, nil
}

func classMetrics(confusion [2][2]int, class int) ClassMetrics {
	other := 1 - class
	tp := float64(confusion[class][class])
	fp := float64(confusion[other][class])
	fn := float64(confusion[class][other])

	m := ClassMetrics{
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
		Support:   confusion[class][0] + confusion[class][1],
	}
	m.F1 = ratio(2*m.Precision*m.Recall, m.Precision+m.Recall)
	return m
}

func average(classes []ClassMetrics, weights []float64) ClassMetrics {
	precision := make([]float64, len(classes))
	recall := make([]float64, len(classes))
	f1 := make([]float64, len(classes))
	support := 0
	for i, c := range classes {
		precision[i], recall[i], f1[i] = c.Precision, c.Recall, c.F1
		support += c.Support
	}

	return ClassMetrics{
		Precision: stat.Mean(precision, weights),
		Recall:    stat.Mean(recall, weights),
		F1:        stat.Mean(f1, weights),
		Support:   support,
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// String renders the report as a fixed width table.
func (r ClassificationReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	row := func(label string, m ClassMetrics) {
		fmt.Fprintf(&b, "%12s %9.2f %9.2f %9.2f %9d\n", label, m.Precision, m.Recall, m.F1, m.Support)
	}
	row("0", r.Negative)
	row("1", r.Positive)
	fmt.Fprintf(&b, "\n%12s %9s %9s %9.2f %9d\n", "accuracy", "", "", r.Accuracy, r.MacroAvg.Support)
	row("macro avg", r.MacroAvg)
	row("weighted avg", r.WeightedAvg)
	return b.String()
}
