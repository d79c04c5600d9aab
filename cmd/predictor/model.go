package main

import (
	"fmt"

	"candidate-predictor/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage the persisted model",
}

var modelResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the persisted model",
	Long: `Deletes the persisted classifier and standardizer from the configured backend.
The next prediction falls back to the bootstrap model until a new one is trained.
Stored surveys are kept.`,
	Args: cobra.NoArgs,
	RunE: runModelReset,
}

func init() {
	modelCmd.AddCommand(modelResetCmd)
	rootCmd.AddCommand(modelCmd)
}

func runModelReset(_ *cobra.Command, _ []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	existed := a.models.Exists()
	if err := storage.DeleteModel(a.models); err != nil {
		return err
	}

	log.Info().Str("backend", settings.StoreBackend).Bool("existed", existed).Msg("persisted model deleted")
	if existed {
		fmt.Println("Persisted model deleted")
	} else {
		fmt.Println("No persisted model found")
	}
	return nil
}
