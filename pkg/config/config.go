package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Extraction cascade configuration
	Extraction ExtractionConfig `mapstructure:"extraction"`

	// Tagger configuration
	Tagger TaggerConfig `mapstructure:"tagger"`

	// NLP configuration for LLM-backed tiers
	NLP NLPConfig `mapstructure:"nlp"`

	// Tree builder configuration
	Tree TreeConfig `mapstructure:"tree"`

	// Snapshot configuration
	Snapshot SnapshotConfig `mapstructure:"snapshot"`

	// Checkpoint configuration
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExtractionConfig holds extraction cascade configuration
type ExtractionConfig struct {
	// MinEntityThreshold gates the generative fallback: tiers one and
	// two must yield at least this many entities or the LLM is asked.
	MinEntityThreshold int `mapstructure:"min_entity_threshold"`

	// DictionaryPath points at the seed entity JSON file. Empty
	// disables the dictionary tier.
	DictionaryPath string `mapstructure:"dictionary_path"`

	// GenerativeEnabled toggles the LLM fallback tier.
	GenerativeEnabled bool `mapstructure:"generative_enabled"`

	// Workers is the per-chunk extraction parallelism.
	Workers int `mapstructure:"workers"`
}

// TaggerConfig holds span-tagger model configuration
type TaggerConfig struct {
	// Model is a local model directory or a Hugging Face model id.
	Model string `mapstructure:"model"`

	// ScoreThreshold drops candidate spans below this confidence.
	ScoreThreshold float64 `mapstructure:"score_threshold"`

	// LabelThreshold demotes spans below this confidence to the
	// generic entity label.
	LabelThreshold float64 `mapstructure:"label_threshold"`
}

// NLPConfig holds NLP configuration
type NLPConfig struct {
	// Models is a map of model configurations (e.g. "default", "summary")
	Models map[string]NLPModelConfig `mapstructure:"models"`
}

// NLPModelConfig holds configuration for a specific model
type NLPModelConfig struct {
	Provider    string  `mapstructure:"provider"` // openai-compatible endpoints
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// TreeConfig holds summary tree configuration
type TreeConfig struct {
	MergeNum int `mapstructure:"merge_num"`
	Workers  int `mapstructure:"workers"`
}

// SnapshotConfig holds snapshot output configuration
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// CheckpointConfig holds extraction checkpoint configuration
type CheckpointConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("extraction.min_entity_threshold", 3)
	viper.SetDefault("extraction.generative_enabled", true)
	viper.SetDefault("extraction.workers", 8)

	viper.SetDefault("tagger.model", "onnx-community/gliner_small-v2.1")
	viper.SetDefault("tagger.score_threshold", 0.4)
	viper.SetDefault("tagger.label_threshold", 0.6)

	viper.SetDefault("nlp.models.default.provider", "openai")
	viper.SetDefault("nlp.models.default.model", "gpt-4o-mini")
	viper.SetDefault("nlp.models.default.temperature", 0.0)
	viper.SetDefault("nlp.models.default.max_tokens", 1024)

	viper.SetDefault("nlp.models.summary.provider", "openai")
	viper.SetDefault("nlp.models.summary.model", "gpt-4o-mini")
	viper.SetDefault("nlp.models.summary.temperature", 0.3)
	viper.SetDefault("nlp.models.summary.max_tokens", 2048)

	viper.SetDefault("tree.merge_num", 5)
	viper.SetDefault("tree.workers", 4)

	viper.SetDefault("snapshot.dir", "./snapshot")

	viper.SetDefault("checkpoint.enabled", true)
	viper.SetDefault("checkpoint.dir", "./checkpoint")

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.notegraph/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if config.NLP.Models == nil {
		config.NLP.Models = make(map[string]NLPModelConfig)
	}

	getModel := func(name string) NLPModelConfig {
		if c, ok := config.NLP.Models[name]; ok {
			return c
		}
		return NLPModelConfig{}
	}

	for _, name := range []string{"default", "summary"} {
		model := getModel(name)
		if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && model.APIKey == "" {
			model.APIKey = apiKey
		}
		config.NLP.Models[name] = model
	}

	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		for name, model := range config.NLP.Models {
			if model.BaseURL == "" {
				model.BaseURL = base
				config.NLP.Models[name] = model
			}
		}
	}

	if path := os.Getenv("NOTEGRAPH_DICTIONARY"); path != "" {
		config.Extraction.DictionaryPath = path
	}
	if dir := os.Getenv("NOTEGRAPH_SNAPSHOT_DIR"); dir != "" {
		config.Snapshot.Dir = dir
	}
	if dir := os.Getenv("NOTEGRAPH_CHECKPOINT_DIR"); dir != "" {
		config.Checkpoint.Dir = dir
	}
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
