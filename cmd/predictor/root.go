package main

import (
	"fmt"
	"os"
	"time"

	"candidate-predictor/internal/cfg"
	"candidate-predictor/internal/metrics"
	"candidate-predictor/internal/ml"
	"candidate-predictor/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logJSON  bool

	settings cfg.Settings
)

var rootCmd = &cobra.Command{
	Use:           "predictor",
	Short:         "Candidate application success predictor",
	Long:          "Trains a logistic regression model on candidate surveys and predicts the probability that a job application succeeds.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		settings, err = cfg.Load()
		if err != nil {
			return err
		}
		level := settings.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		return setupLogging(level, logJSON)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON instead of console output")
}

func setupLogging(level string, asJSON bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	if asJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return nil
}

// app bundles the collaborators a command needs.
type app struct {
	store     *storage.Store
	models    ml.ModelStore
	predictor *ml.Predictor
}

// openApp opens the record store and model store and builds a predictor.
// m may be nil.
func openApp(m *metrics.Metrics) (*app, error) {
	if err := os.MkdirAll(settings.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store, err := storage.New(settings.DataPath)
	if err != nil {
		return nil, err
	}

	models, err := storage.OpenModelStore(settings.StoreBackend, store, settings.ClassifierPath, settings.StandardizerPath)
	if err != nil {
		store.Close()
		return nil, err
	}

	var mi ml.MetricsInterface
	if m != nil {
		mi = metrics.NewWrapper(m)
	}
	predictor, err := ml.NewPredictor(settings.PredictorConfig(), models, mi)
	if err != nil {
		store.Close()
		return nil, err
	}

	log.Debug().
		Str("data_path", settings.DataPath).
		Str("backend", settings.StoreBackend).
		Bool("model_persisted", models.Exists()).
		Msg("stores opened")

	return &app{store: store, models: models, predictor: predictor}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close store")
	}
}
