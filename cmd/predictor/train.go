package main

import (
	"fmt"
	"os"

	"candidate-predictor/internal/features"
	"candidate-predictor/internal/ml"
	"candidate-predictor/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	trainCSV    string
	trainImport bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and persist a new model",
	Long: `Trains on every labeled survey in the record store, or on the surveys in a CSV
file, reports held-out accuracy and persists the model.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainCSV, "csv", "", "Train on surveys from this CSV file instead of the record store")
	trainCmd.Flags().BoolVar(&trainImport, "import", false, "Also store the CSV surveys in the record store")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	if trainImport && trainCSV == "" {
		return fmt.Errorf("--import requires --csv")
	}

	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	examples, err := trainingExamples(a.store)
	if err != nil {
		return err
	}
	log.Info().Int("examples", len(examples)).Msg("training")

	result, err := a.predictor.Train(cmd.Context(), examples)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	fmt.Printf("Trained generation %s on %d samples (%d held out)\n", result.Generation, result.TrainSamples, result.TestSamples)
	fmt.Printf("Accuracy: %.4f  final cost: %.4f\n\n", result.Accuracy, result.FinalCost)
	fmt.Println(result.Report.String())

	ranking, err := a.predictor.FeatureImportance()
	if err != nil {
		return err
	}
	fmt.Println("Feature importance:")
	fmt.Print(ml.FormatRanking(ranking))
	return nil
}

func trainingExamples(store *storage.Store) ([]features.LabeledExample, error) {
	if trainCSV == "" {
		return store.LabeledExamples()
	}

	f, err := os.Open(trainCSV)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := storage.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", trainCSV, err)
	}
	if trainImport {
		if err := store.StoreSurveys(records); err != nil {
			return nil, err
		}
		log.Info().Int("surveys", len(records)).Str("file", trainCSV).Msg("surveys imported")
	}
	return storage.ExamplesFrom(records), nil
}
