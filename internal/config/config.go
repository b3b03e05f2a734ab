package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

type Config struct {
	Embedding EmbeddingConfig
	Declutter DeclutterConfig
	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Prompts   PromptSets
}

type EmbeddingConfig struct {
	URL string // defaults to http://localhost:8000
	Dim int    // defaults to 768
}

type DeclutterConfig struct {
	SimilarityThreshold float64 // minimum cosine similarity for grouping (default 0.7)
	Concurrency         int     // parallel photo analysis workers (default 4)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL for the embedding cache (optional)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

// PromptSets holds the fixed text prompts used for quality calibration.
type PromptSets struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float in (0, 1].
// Returns the default value if the env var is unset, empty, or out of range.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= 1 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var prompts PromptSets
	if err := yaml.Unmarshal(promptsYAML, &prompts); err != nil {
		// Embedded file, so this can only break at build time.
		panic("failed to unmarshal embedded prompts.yaml: " + err.Error())
	}

	return &Config{
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
			Dim: envInt("EMBEDDING_DIM", 768),
		},
		Declutter: DeclutterConfig{
			SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", 0.7),
			Concurrency:         envInt("ANALYZE_CONCURRENCY", 4),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Prompts: prompts,
	}
}
