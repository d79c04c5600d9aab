package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"candidate-predictor/internal/ml"

	"github.com/spf13/cobra"
)

// importanceOptions selects how a ranking is printed.
type importanceOptions struct {
	top    int
	shares bool
	names  bool
	asJSON bool
}

var importanceOpts importanceOptions

var importanceCmd = &cobra.Command{
	Use:   "importance",
	Short: "Rank features by the magnitude of their model weight",
	RunE:  runImportance,
}

func init() {
	importanceCmd.Flags().IntVar(&importanceOpts.top, "top", 0, "Only show the n most important features")
	importanceCmd.Flags().BoolVar(&importanceOpts.shares, "shares", false, "Show each feature's share of the total magnitude")
	importanceCmd.Flags().BoolVar(&importanceOpts.names, "names", false, "Print only feature names, most important first")
	importanceCmd.Flags().BoolVar(&importanceOpts.asJSON, "json", false, "Print a JSON object of feature name to magnitude")
	rootCmd.AddCommand(importanceCmd)
}

func runImportance(cmd *cobra.Command, _ []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.predictor.Warm(cmd.Context()); err != nil {
		return err
	}

	ranking, err := a.predictor.FeatureImportance()
	if err != nil {
		return err
	}
	return writeImportance(os.Stdout, ranking, a.predictor.Status().Source, importanceOpts)
}

func writeImportance(w io.Writer, ranking []ml.Importance, source ml.Source, opts importanceOptions) error {
	if opts.shares {
		ranking = ml.Shares(ranking)
	}
	top := len(ranking)
	if opts.top > 0 && opts.top < top {
		top = opts.top
	}

	switch {
	case opts.asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ml.ImportanceMap(ranking[:top]))
	case opts.names:
		_, err := fmt.Fprintln(w, strings.Join(ml.TopFeatures(ranking, top), "\n"))
		return err
	default:
		_, err := fmt.Fprintf(w, "Feature importance (%s model):\n%s", source, ml.FormatRanking(ranking[:top]))
		return err
	}
}
