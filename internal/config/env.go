// Package config provides application configuration.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Supports postgres://... and sqlite://path URLs.
	DBURL string `envconfig:"DB_URL" default:"sqlite://sounditout.db"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys.
	// When empty, authentication is disabled.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// OpenAI configures the embedding and chat model endpoint.
	OpenAI OpenAIEnv `envconfig:"OPENAI"`

	// AIWorkerCount is the number of background embedding workers.
	// Env: AI_WORKER_COUNT (default: 4)
	AIWorkerCount int `envconfig:"AI_WORKER_COUNT" default:"4"`

	// AIQueueCapacity is the bounded capacity of the embedding task queue.
	// Tasks enqueued beyond this are dropped with a warning.
	// Env: AI_QUEUE_CAPACITY (default: 200)
	AIQueueCapacity int `envconfig:"AI_QUEUE_CAPACITY" default:"200"`

	// Retrieval configures the RAG candidate filtering policy.
	Retrieval RetrievalEnv `envconfig:"RAG"`
}

// OpenAIEnv holds environment configuration for the OpenAI endpoint.
type OpenAIEnv struct {
	// BaseURL overrides the API base URL (e.g. for proxies).
	// Env: OPENAI_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey is the API key for authentication.
	// Env: OPENAI_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// ChatModel is the chat completion model identifier.
	// Env: OPENAI_CHAT_MODEL (default: gpt-4o-mini)
	ChatModel string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	// EmbeddingModel is the embedding model identifier.
	// Env: OPENAI_EMBEDDING_MODEL (default: text-embedding-3-small)
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	// Timeout is the request timeout in seconds.
	// Env: OPENAI_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries for transient failures.
	// Env: OPENAI_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`
}

// RetrievalEnv holds environment configuration for retrieval filtering.
type RetrievalEnv struct {
	// SimilarityCutoff is the minimum score for a retrieved row to enter
	// the generation context.
	// Env: RAG_SIMILARITY_CUTOFF (default: 0.75)
	SimilarityCutoff float64 `envconfig:"SIMILARITY_CUTOFF" default:"0.75"`

	// Candidates is how many rows to over-fetch from the store.
	// Env: RAG_CANDIDATES (default: 12)
	Candidates int `envconfig:"CANDIDATES" default:"12"`

	// MaxContext is the final context size after filtering.
	// Env: RAG_MAX_CONTEXT (default: 6)
	MaxContext int `envconfig:"MAX_CONTEXT" default:"6"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}
