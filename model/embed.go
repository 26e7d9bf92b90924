package model

import (
	"context"
	"fmt"
	"log/slog"

	"legalrag/types"
)

// EmbedderInterface is the embedding capability consumed by both the
// ingestion pipeline and the query path. Both must be backed by the same
// model: a mismatch degrades retrieval quality without any error.
type EmbedderInterface interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Ping(ctx context.Context) error
}

// NewEmbedder selects the embedding backend from config.
func NewEmbedder(cfg types.EmbeddingConfig) (EmbedderInterface, error) {
	switch cfg.Provider {
	case "ollama", "":
		slog.Info("using Ollama embeddings", "model", cfg.Model, "dim", cfg.Dimensions)
		return NewOllamaEmbedder(cfg), nil
	case "openai":
		slog.Info("using OpenAI-compatible embeddings", "model", cfg.Model, "dim", cfg.Dimensions)
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
