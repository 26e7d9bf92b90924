package types

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoaderConfig controls the ingestion pipeline.
type LoaderConfig struct {
	DataDir        string
	CacheDir       string
	Collection     string
	ChunkSize      int
	ChunkOverlap   int
	EmbedBatchSize int
	DBBatchSize    int
}

// AppConfig controls the query service.
type AppConfig struct {
	ListenAddr  string
	Collections []string
	TopK        int
	HistorySize int
}

// EmbeddingConfig is shared by both processes. Ingestion and query must
// embed with the same model, otherwise retrieval silently degrades.
type EmbeddingConfig struct {
	Provider   string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// LLMConfig configures the generative model endpoint.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func LoaderConfigFromEnv() LoaderConfig {
	return LoaderConfig{
		DataDir:        envStr("DATA_DIR", "dataset"),
		CacheDir:       envStr("CACHE_DIR", ".ingest-cache"),
		Collection:     envStr("COLLECTION", "legal_docs"),
		ChunkSize:      envInt("CHUNK_SIZE", 1500),
		ChunkOverlap:   envInt("CHUNK_OVERLAP", 200),
		EmbedBatchSize: envInt("EMBED_BATCH_SIZE", 128),
		DBBatchSize:    envInt("DB_BATCH_SIZE", 500),
	}
}

func AppConfigFromEnv() AppConfig {
	collections := strings.Split(envStr("COLLECTIONS", envStr("COLLECTION", "legal_docs")), ",")
	for i := range collections {
		collections[i] = strings.TrimSpace(collections[i])
	}
	return AppConfig{
		ListenAddr:  envStr("SERVER_ADDR", ":8003"),
		Collections: collections,
		TopK:        envInt("TOP_K", 5),
		HistorySize: envInt("HISTORY_SIZE", 10),
	}
}

func EmbeddingConfigFromEnv() EmbeddingConfig {
	return EmbeddingConfig{
		Provider:   envStr("EMBEDDING_PROVIDER", "ollama"),
		BaseURL:    envStr("EMBEDDING_URL", "http://localhost:11434"),
		Model:      envStr("EMBEDDING_MODEL", "nomic-embed-text"),
		Dimensions: envInt("EMBEDDING_DIM", 768),
		Timeout:    envDuration("EMBEDDING_TIMEOUT", 30*time.Second),
	}
}

func LLMConfigFromEnv() LLMConfig {
	return LLMConfig{
		BaseURL: os.Getenv("LLM_URL"),
		APIKey:  os.Getenv("LLM_API_KEY"),
		Model:   envStr("LLM_MODEL", "openai/gpt-oss-20b"),
		Timeout: envDuration("LLM_TIMEOUT", 30*time.Second),
	}
}

// PostgresDSNFromEnv assembles the connection string from the PG_* vars.
func PostgresDSNFromEnv() string {
	port := envInt("PG_PORT", 5432)
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		envStr("PG_HOST", "localhost"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
