package common

// Environment variable keys
const (
	EnvConfigFile       = "CONFIG_FILE"
	EnvDataPath         = "DATA_PATH"
	EnvStoreBackend     = "STORE_BACKEND"
	EnvClassifierPath   = "CLASSIFIER_PATH"
	EnvStandardizerPath = "STANDARDIZER_PATH"
	EnvLearningRate     = "LEARNING_RATE"
	EnvIterations       = "ITERATIONS"
	EnvTestFraction     = "TEST_FRACTION"
	EnvSplitSeed        = "SPLIT_SEED"
	EnvProbThreshold    = "PROB_THRESHOLD"
	EnvHTTPPort         = "HTTP_PORT"
	EnvRequestTimeout   = "REQUEST_TIMEOUT"
	EnvLogLevel         = "LOG_LEVEL"
)

// Configuration defaults
const (
	DefaultDataPath         = "data"
	DefaultStoreBackend     = "bolt"
	DefaultClassifierPath   = "models/classifier.json"
	DefaultStandardizerPath = "models/standardizer.json"
	DefaultLearningRate     = 0.01
	DefaultIterations       = 1000
	DefaultTestFraction     = 0.2
	DefaultSplitSeed        = 42
	DefaultProbThreshold    = 0.5
	DefaultHTTPPort         = 8080
	DefaultLogLevel         = "info"
)

