package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	predictFlags     candidateFlags
	predictThreshold float64
	predictJSON      bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the success probability of one candidate",
	Long:  "Scores a candidate with the persisted model. When no model has been trained yet, a model fitted on the built-in bootstrap examples is used.",
	Example: `  predictor predict --years 5 --education 3 --skills 5 --job-changes 2 --certs 2 --language-level 3 --prep-rating 8
  predictor predict --file candidate.json --json`,
	RunE: runPredict,
}

func init() {
	predictFlags.register(predictCmd)
	predictCmd.Flags().Float64Var(&predictThreshold, "threshold", -1, "Approval threshold (defaults to PROB_THRESHOLD)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(predictCmd)
}

type predictOutput struct {
	Probability float64 `json:"probability"`
	Approved    bool    `json:"approved"`
	Threshold   float64 `json:"threshold"`
	Source      string  `json:"model_source"`
}

func runPredict(cmd *cobra.Command, _ []string) error {
	candidate, err := predictFlags.candidate()
	if err != nil {
		return err
	}

	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	threshold := a.predictor.Threshold()
	if cmd.Flags().Changed("threshold") {
		if predictThreshold < 0 || predictThreshold > 1 {
			return fmt.Errorf("threshold must be between 0 and 1, got %v", predictThreshold)
		}
		threshold = predictThreshold
	}

	prob, err := a.predictor.Predict(cmd.Context(), candidate)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	out := predictOutput{
		Probability: prob,
		Approved:    prob >= threshold,
		Threshold:   threshold,
		Source:      string(a.predictor.Status().Source),
	}

	if predictJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	decision := "rejected"
	if out.Approved {
		decision = "approved"
	}
	fmt.Printf("Success probability: %.4f\n", out.Probability)
	fmt.Printf("Decision at %.2f:    %s\n", out.Threshold, decision)
	fmt.Printf("Model:               %s\n", out.Source)
	return nil
}
