package main

import (
	"fmt"
	"strconv"

	"candidate-predictor/internal/storage"

	"github.com/spf13/cobra"
)

var (
	surveyFlags   candidateFlags
	surveyUser    string
	surveyOutcome string
	surveyPublic  bool
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Manage candidate surveys",
}

var surveyAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Store one survey in the record store",
	Example: `  predictor survey add --user u42 --years 4 --education 3 --skills 6 --language-level 4 --prep-rating 7 --success true`,
	RunE:    runSurveyAdd,
}

var surveyCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored and labeled surveys",
	RunE:  runSurveyCount,
}

func init() {
	surveyFlags.register(surveyAddCmd)
	surveyAddCmd.Flags().StringVar(&surveyUser, "user", "", "User ID of the candidate")
	surveyAddCmd.Flags().StringVar(&surveyOutcome, "success", "", "Application outcome (true or false); omit when unknown")
	surveyAddCmd.Flags().BoolVar(&surveyPublic, "public", false, "Mark the survey as public")

	surveyCmd.AddCommand(surveyAddCmd)
	surveyCmd.AddCommand(surveyCountCmd)
	rootCmd.AddCommand(surveyCmd)
}

func parseOutcome(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --success value %q: %w", s, err)
	}
	return &v, nil
}

func runSurveyAdd(_ *cobra.Command, _ []string) error {
	candidate, err := surveyFlags.candidate()
	if err != nil {
		return err
	}
	outcome, err := parseOutcome(surveyOutcome)
	if err != nil {
		return err
	}

	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.store.StoreSurvey(storage.SurveyRecord{
		UserID:    surveyUser,
		Candidate: candidate,
		Success:   outcome,
		Public:    surveyPublic,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Stored survey %s\n", rec.ID)
	return nil
}

func runSurveyCount(_ *cobra.Command, _ []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	total, err := a.store.CountSurveys()
	if err != nil {
		return err
	}
	labeled, err := a.store.LabeledExamples()
	if err != nil {
		return err
	}
	fmt.Printf("%d surveys, %d with a known outcome\n", total, len(labeled))
	return nil
}
