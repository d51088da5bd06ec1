package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	IndexRoot    string
	IndexBackend string // flat or qdrant
	QdrantURL    string

	OllamaURL        string
	OllamaEmbedModel string

	SearchTopK           int
	ResultLimit          int
	ExcerptLength        int
	MaxMessageSize       int
	MessageHeaderReserve int
	SearchIndexTimeout   time.Duration

	RateLimitPerMinute int

	PostgresDSN  string
	HistoryLimit int

	NATSURL     string
	NATSSubject string

	WorkerMetricsPort string
}

func Load() Config {
	// .env is a development convenience; unset values fall back below.
	_ = godotenv.Load()

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		IndexRoot:    mustEnv("INDEX_ROOT", "./data/indexes"),
		IndexBackend: mustEnv("INDEX_BACKEND", "flat"),
		QdrantURL:    mustEnv("QDRANT_URL", "http://localhost:6333"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "multilingual-e5-large"),

		SearchTopK:           mustEnvInt("SEARCH_TOP_K", 4),
		ResultLimit:          mustEnvInt("RESULT_LIMIT", 3),
		ExcerptLength:        mustEnvInt("EXCERPT_LENGTH", 200),
		MaxMessageSize:       mustEnvInt("MAX_MESSAGE_SIZE", 4096),
		MessageHeaderReserve: mustEnvInt("MESSAGE_HEADER_RESERVE", 24),
		SearchIndexTimeout:   mustEnvDuration("SEARCH_INDEX_TIMEOUT", 15*time.Second),

		RateLimitPerMinute: mustEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		// Empty DSN disables query history.
		PostgresDSN:  mustEnv("POSTGRES_DSN", ""),
		HistoryLimit: mustEnvInt("HISTORY_LIMIT", 10),

		// Empty URL disables session events.
		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "docibot.sessions"),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
