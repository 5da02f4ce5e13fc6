package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

type Config struct {
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// LLM backend selection. Exactly one backend serves a deployment;
	// the credential for the selected backend is required at startup.
	LLMProvider  string `envconfig:"LLM_PROVIDER" default:"groq"`
	GroqAPIKey   string `envconfig:"GROQ_API_KEY"`
	GroqModel    string `envconfig:"GROQ_MODEL" default:"mixtral-8x7b-32768"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4-turbo-preview"`

	CollectionName string `envconfig:"COLLECTION_NAME" default:"casper_docs"`
	ChunkSize      int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap   int    `envconfig:"CHUNK_OVERLAP" default:"200"`

	DocsPath     string `envconfig:"DOCS_PATH" default:"data/docs/cspr_cloud_docs.json"`
	CodeDocsPath string `envconfig:"CODE_DOCS_PATH" default:"data/docs/github_projects.json"`

	// MaxContextChars bounds the assembled context block injected into the
	// prompt so large n_context values cannot blow the provider window.
	MaxContextChars int `envconfig:"MAX_CONTEXT_CHARS" default:"12000"`

	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may come from the shell; .env files are optional.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.WeaviateHost == "" {
		return fmt.Errorf("%w: WEAVIATE_HOST", ErrMissingRequired)
	}
	if c.CollectionName == "" {
		return fmt.Errorf("%w: COLLECTION_NAME", ErrMissingRequired)
	}
	if c.LLMProvider != ProviderGroq && c.LLMProvider != ProviderOpenAI {
		return fmt.Errorf("%w: LLM_PROVIDER must be %q or %q, got %q",
			ErrInvalidValue, ProviderGroq, ProviderOpenAI, c.LLMProvider)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrInvalidValue)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE)", ErrInvalidValue)
	}
	return nil
}

// ProviderKey returns the credential for the selected LLM backend.
func (c *Config) ProviderKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GroqAPIKey
}
