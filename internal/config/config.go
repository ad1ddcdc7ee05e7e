package config

import (
	"fmt"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = 8080
	DefaultLogLevel         = "INFO"
	DefaultAIWorkerCount    = 4
	DefaultAIQueueCapacity  = 200
	DefaultSimilarityCutoff = 0.75
	DefaultRAGCandidates    = 12
	DefaultRAGMaxContext    = 6
	DefaultOpenAITimeout    = 60 * time.Second
	DefaultOpenAIRetries    = 3
)

// OpenAIConfig configures the model endpoint.
type OpenAIConfig struct {
	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string
	timeout        time.Duration
	maxRetries     int
}

// BaseURL returns the API base URL override, or empty for the default.
func (c OpenAIConfig) BaseURL() string { return c.baseURL }

// APIKey returns the API key.
func (c OpenAIConfig) APIKey() string { return c.apiKey }

// ChatModel returns the chat completion model identifier.
func (c OpenAIConfig) ChatModel() string { return c.chatModel }

// EmbeddingModel returns the embedding model identifier.
func (c OpenAIConfig) EmbeddingModel() string { return c.embeddingModel }

// Timeout returns the request timeout.
func (c OpenAIConfig) Timeout() time.Duration { return c.timeout }

// MaxRetries returns the maximum retry count.
func (c OpenAIConfig) MaxRetries() int { return c.maxRetries }

// RetrievalConfig configures RAG candidate filtering.
type RetrievalConfig struct {
	similarityCutoff float64
	candidates       int
	maxContext       int
}

// SimilarityCutoff returns the minimum score for context inclusion.
func (c RetrievalConfig) SimilarityCutoff() float64 { return c.similarityCutoff }

// Candidates returns the store over-fetch count.
func (c RetrievalConfig) Candidates() int { return c.candidates }

// MaxContext returns the final context size.
func (c RetrievalConfig) MaxContext() int { return c.maxContext }

// AppConfig is the assembled application configuration.
type AppConfig struct {
	host            string
	port            int
	dbURL           string
	logLevel        string
	logFormat       string
	apiKeys         string
	openAI          OpenAIConfig
	aiWorkerCount   int
	aiQueueCapacity int
	retrieval       RetrievalConfig
}

// ToAppConfig converts environment configuration into an AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	return AppConfig{
		host:      e.Host,
		port:      e.Port,
		dbURL:     e.DBURL,
		logLevel:  e.LogLevel,
		logFormat: e.LogFormat,
		apiKeys:   e.APIKeys,
		openAI: OpenAIConfig{
			baseURL:        e.OpenAI.BaseURL,
			apiKey:         e.OpenAI.APIKey,
			chatModel:      e.OpenAI.ChatModel,
			embeddingModel: e.OpenAI.EmbeddingModel,
			timeout:        time.Duration(e.OpenAI.Timeout * float64(time.Second)),
			maxRetries:     e.OpenAI.MaxRetries,
		},
		aiWorkerCount:   e.AIWorkerCount,
		aiQueueCapacity: e.AIQueueCapacity,
		retrieval: RetrievalConfig{
			similarityCutoff: e.Retrieval.SimilarityCutoff,
			candidates:       e.Retrieval.Candidates,
			maxContext:       e.Retrieval.MaxContext,
		},
	}
}

// Host returns the server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port listen address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the configured log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the configured log format.
func (c AppConfig) LogFormat() string { return c.logFormat }

// APIKeys returns the list of valid API keys, empty when auth is disabled.
func (c AppConfig) APIKeys() []string {
	if strings.TrimSpace(c.apiKeys) == "" {
		return nil
	}
	keys := strings.Split(c.apiKeys, ",")
	for i, k := range keys {
		keys[i] = strings.TrimSpace(k)
	}
	return keys
}

// OpenAI returns the model endpoint configuration.
func (c AppConfig) OpenAI() OpenAIConfig { return c.openAI }

// AIWorkerCount returns the background embedding worker count.
func (c AppConfig) AIWorkerCount() int {
	if c.aiWorkerCount <= 0 {
		return DefaultAIWorkerCount
	}
	return c.aiWorkerCount
}

// AIQueueCapacity returns the bounded embedding queue capacity.
func (c AppConfig) AIQueueCapacity() int {
	if c.aiQueueCapacity <= 0 {
		return DefaultAIQueueCapacity
	}
	return c.aiQueueCapacity
}

// Retrieval returns the RAG filtering configuration.
func (c AppConfig) Retrieval() RetrievalConfig { return c.retrieval }

// WithAddr returns a copy with host and port overridden when non-zero.
// Used for command line flag overrides.
func (c AppConfig) WithAddr(host string, port int) AppConfig {
	if host != "" {
		c.host = host
	}
	if port != 0 {
		c.port = port
	}
	return c
}
