package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int

	// open ai
	OpenAIKey            string
	OpenAIEmbeddingModel string
	OpenAIChatModel      string

	// rag config
	ChunkSize       int
	ChunkOverlap    int
	TopKResults     int
	ExcerptMaxChars int
	MaxContextChars int
	SeedDocsDir     string

	// vector index backend: "memory" or "postgres"
	VectorBackend string
	DatabaseURL   string

	// external call budgets
	EmbedTimeout    time.Duration
	GenerateTimeout time.Duration

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Port: getEnvInt("PORT", 8080),

		// OpenAI
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		OpenAIChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-3.5-turbo"),

		// RAG Config
		ChunkSize:       getEnvInt("CHUNK_SIZE", 300),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 50),
		TopKResults:     getEnvInt("TOP_K_RESULTS", 3),
		ExcerptMaxChars: getEnvInt("EXCERPT_MAX_CHARS", 200),
		MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", 6000),
		SeedDocsDir:     getEnv("SEED_DOCS_DIR", "internal_docs"),

		VectorBackend: getEnv("VECTOR_BACKEND", "memory"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		EmbedTimeout:    getEnvDuration("EMBED_TIMEOUT", 30*time.Second),
		GenerateTimeout: getEnvDuration("GENERATE_TIMEOUT", 60*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
