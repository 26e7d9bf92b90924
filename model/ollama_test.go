package model

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrag/types"
)

func newTestEmbedder(url string) *OllamaEmbedder {
	return NewOllamaEmbedder(types.EmbeddingConfig{
		Provider:   "ollama",
		BaseURL:    url,
		Model:      "nomic-embed-text",
		Dimensions: 3,
		Timeout:    5 * time.Second,
	})
}

func TestOllamaEmbedReturnsUnitVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "some statute text", req.Prompt)

		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 0, 4}})
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL)
	vec, err := e.Embed(context.Background(), "some statute text")
	require.NoError(t, err)
	require.Len(t, vec, 3)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	assert.InDelta(t, 0.6, float64(vec[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(vec[2]), 1e-6)
}

func TestOllamaEmbedUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestOllamaEmbedBatchPreservesOrder(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		calls = append(calls, req.Prompt)
		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{1, 0, 0}})
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL)
	vecs, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	assert.Equal(t, []string{"one", "two", "three"}, calls)
}

func TestOllamaPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, newTestEmbedder(srv.URL).Ping(context.Background()))
}

func TestOllamaPingDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	assert.Error(t, newTestEmbedder(srv.URL).Ping(context.Background()))
}

func TestOllamaModelName(t *testing.T) {
	assert.Equal(t, "ollama-nomic-embed-text", newTestEmbedder("http://localhost").ModelName())
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	_, err := NewEmbedder(types.EmbeddingConfig{Provider: "cohere"})
	assert.Error(t, err)
}
