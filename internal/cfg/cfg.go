package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"candidate-predictor/internal/common"
	"candidate-predictor/internal/ml"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	DataPath         string
	StoreBackend     string
	ClassifierPath   string
	StandardizerPath string
	LearningRate     float64
	Iterations       int
	TestFraction     float64
	SplitSeed        int64
	ProbThreshold    float64
	HTTPPort         int
	RequestTimeout   time.Duration
	LogLevel         string
}

type ConfigFile struct {
	Storage struct {
		DataPath         string `yaml:"dataPath"`
		Backend          string `yaml:"backend"`
		ClassifierPath   string `yaml:"classifierPath"`
		StandardizerPath string `yaml:"standardizerPath"`
	} `yaml:"storage"`

	Model struct {
		LearningRate  float64  `yaml:"learningRate"`
		Iterations    int      `yaml:"iterations"`
		TestFraction  float64  `yaml:"testFraction"`
		SplitSeed     *int64   `yaml:"splitSeed"`
		ProbThreshold *float64 `yaml:"probThreshold"`
	} `yaml:"model"`

	Server struct {
		Port           int    `yaml:"port"`
		RequestTimeout string `yaml:"requestTimeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Defaults returns the settings used when neither a config file nor the
// environment sets a value.
func Defaults() Settings {
	return Settings{
		DataPath:         common.DefaultDataPath,
		StoreBackend:     common.DefaultStoreBackend,
		ClassifierPath:   common.DefaultClassifierPath,
		StandardizerPath: common.DefaultStandardizerPath,
		LearningRate:     common.DefaultLearningRate,
		Iterations:       common.DefaultIterations,
		TestFraction:     common.DefaultTestFraction,
		SplitSeed:        common.DefaultSplitSeed,
		ProbThreshold:    common.DefaultProbThreshold,
		HTTPPort:         common.DefaultHTTPPort,
		RequestTimeout:   5 * time.Second,
		LogLevel:         common.DefaultLogLevel,
	}
}

// Load reads settings from the YAML file named by CONFIG_FILE, if set, then
// applies environment overrides and validates the result.
func Load() (Settings, error) {
	settings := Defaults()

	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		var err error
		settings, err = loadFromYAML(configPath, settings)
		if err != nil {
			return Settings{}, err
		}
	}

	settings = applyEnv(settings)

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromYAML(path string, settings Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings.DataPath = orString(config.Storage.DataPath, settings.DataPath)
	settings.StoreBackend = orString(config.Storage.Backend, settings.StoreBackend)
	settings.ClassifierPath = orString(config.Storage.ClassifierPath, settings.ClassifierPath)
	settings.StandardizerPath = orString(config.Storage.StandardizerPath, settings.StandardizerPath)
	settings.LogLevel = orString(config.Log.Level, settings.LogLevel)

	if config.Model.LearningRate != 0 {
		settings.LearningRate = config.Model.LearningRate
	}
	if config.Model.Iterations != 0 {
		settings.Iterations = config.Model.Iterations
	}
	if config.Model.TestFraction != 0 {
		settings.TestFraction = config.Model.TestFraction
	}
	if config.Model.SplitSeed != nil {
		settings.SplitSeed = *config.Model.SplitSeed
	}
	if config.Model.ProbThreshold != nil {
		settings.ProbThreshold = *config.Model.ProbThreshold
	}
	if config.Server.Port != 0 {
		settings.HTTPPort = config.Server.Port
	}

	if config.Server.RequestTimeout != "" {
		timeout, err := time.ParseDuration(config.Server.RequestTimeout)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid server.requestTimeout %q: %w", config.Server.RequestTimeout, err)
		}
		settings.RequestTimeout = timeout
	}

	return settings, nil
}

// applyEnv overrides settings with any environment variables that are set.
func applyEnv(s Settings) Settings {
	s.DataPath = getEnvOrDefault(common.EnvDataPath, s.DataPath)
	s.StoreBackend = strings.ToLower(getEnvOrDefault(common.EnvStoreBackend, s.StoreBackend))
	s.ClassifierPath = getEnvOrDefault(common.EnvClassifierPath, s.ClassifierPath)
	s.StandardizerPath = getEnvOrDefault(common.EnvStandardizerPath, s.StandardizerPath)
	s.LearningRate = getFloatOrDefault(common.EnvLearningRate, s.LearningRate)
	s.Iterations = getIntOrDefault(common.EnvIterations, s.Iterations)
	s.TestFraction = getFloatOrDefault(common.EnvTestFraction, s.TestFraction)
	s.SplitSeed = getInt64OrDefault(common.EnvSplitSeed, s.SplitSeed)
	s.ProbThreshold = getFloatOrDefault(common.EnvProbThreshold, s.ProbThreshold)
	s.HTTPPort = getIntOrDefault(common.EnvHTTPPort, s.HTTPPort)
	s.RequestTimeout = getDurationOrDefault(common.EnvRequestTimeout, s.RequestTimeout)
	s.LogLevel = getEnvOrDefault(common.EnvLogLevel, s.LogLevel)
	return s
}

// PredictorConfig returns the training and decision parameters.
func (s Settings) PredictorConfig() ml.Config {
	return ml.Config{
		LearningRate: s.LearningRate,
		Iterations:   s.Iterations,
		TestFraction: s.TestFraction,
		SplitSeed:    s.SplitSeed,
		Threshold:    s.ProbThreshold,
	}
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	// Validate storage
	if settings.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	switch settings.StoreBackend {
	case "bolt":
	case "file":
		if settings.ClassifierPath == "" || settings.StandardizerPath == "" {
			return fmt.Errorf("file store backend requires classifier and standardizer paths")
		}
		if settings.ClassifierPath == settings.StandardizerPath {
			return fmt.Errorf("classifier and standardizer paths must differ, both are %s", settings.ClassifierPath)
		}
	default:
		return fmt.Errorf("store backend must be bolt or file, got %q", settings.StoreBackend)
	}

	// Validate training parameters
	if settings.LearningRate <= 0 || settings.LearningRate > 1 {
		return fmt.Errorf("learning rate must be between 0 and 1, got %f", settings.LearningRate)
	}
	if settings.Iterations <= 0 || settings.Iterations > 1000000 {
		return fmt.Errorf("iterations must be between 1 and 1000000, got %d", settings.Iterations)
	}
	if settings.TestFraction <= 0 || settings.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be between 0 and 1 (exclusive), got %f", settings.TestFraction)
	}
	if settings.ProbThreshold < 0 || settings.ProbThreshold > 1 {
		return fmt.Errorf("probability threshold must be between 0 and 1, got %f", settings.ProbThreshold)
	}

	// Validate server
	if settings.HTTPPort < 1024 || settings.HTTPPort > 65535 {
		return fmt.Errorf("HTTP port must be between 1024 and 65535, got %d", settings.HTTPPort)
	}
	if settings.RequestTimeout < 100*time.Millisecond || settings.RequestTimeout > time.Minute {
		return fmt.Errorf("request timeout must be between 100ms and 1m, got %v", settings.RequestTimeout)
	}

	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}

	return nil
}
