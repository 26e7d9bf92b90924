package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"legalrag/types"
)

// VectorStorer is the vector index contract shared by the ingestion
// pipeline and the query service. Both sides must agree on collection
// name and embedding dimensionality.
type VectorStorer interface {
	UpsertChunks(ctx context.Context, collection string, chunks []types.EmbeddedChunk) error
	ExistingIDs(ctx context.Context, collection string) (map[string]struct{}, error)
	Query(ctx context.Context, collection string, vector []float32, k int) ([]types.RetrievalResult, error)
	DeleteCollection(ctx context.Context, collection string) error
	Count(ctx context.Context, collection string) (int64, error)
	Ping(ctx context.Context) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
	dims int
}

func NewPostgresStore(ctx context.Context, connStr string, dims int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
		dims: dims,
	}, nil
}

// Init creates the chunks table. The table is partitioned logically by
// the collection column; (id, collection) is the upsert key.
func (p *PostgresStore) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
    CREATE EXTENSION IF NOT EXISTS vector;

    CREATE TABLE IF NOT EXISTS chunks (
        id TEXT NOT NULL,
        collection TEXT NOT NULL,
        content TEXT NOT NULL,
        context TEXT,
        source TEXT,
        embedding vector(%d),
        PRIMARY KEY (id, collection)
    );

    CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
    WITH (lists = 100);

    CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection);
    `, p.dims)
	_, err := p.pool.Exec(ctx, query)
	return err
}

// UpsertChunks inserts or overwrites chunks by identifier in one batch
// round trip.
func (p *PostgresStore) UpsertChunks(ctx context.Context, collection string, chunks []types.EmbeddedChunk) error {
	query := `
    INSERT INTO chunks (id, collection, content, context, source, embedding)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (id, collection) DO UPDATE SET
        content = EXCLUDED.content,
        context = EXCLUDED.context,
        source = EXCLUDED.source,
        embedding = EXCLUDED.embedding
    `
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(query, c.ID, collection, c.Content, joinContext(c.ContextPath), c.SourceRef, pgvector.NewVector(c.Embedding))
	}

	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range chunks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert chunk batch: %w", err)
		}
	}
	return nil
}

// ExistingIDs returns the identifiers already present in a collection,
// used to compute the increment of not-yet-indexed chunks.
func (p *PostgresStore) ExistingIDs(ctx context.Context, collection string) (map[string]struct{}, error) {
	rows, err := p.pool.Query(ctx, "SELECT id FROM chunks WHERE collection = $1", collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Query returns the k nearest chunks of one collection by ascending
// cosine distance.
func (p *PostgresStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]types.RetrievalResult, error) {
	query := `
    SELECT content, COALESCE(context, ''), COALESCE(source, ''), embedding <=> $1 AS distance
    FROM chunks
    WHERE collection = $2 AND embedding IS NOT NULL
    ORDER BY embedding <=> $1
    LIMIT $3
    `
	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vector), collection, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []types.RetrievalResult
	for rows.Next() {
		r := types.RetrievalResult{Collection: collection}
		if err := rows.Scan(&r.Content, &r.Context, &r.Source, &r.Distance); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (p *PostgresStore) DeleteCollection(ctx context.Context, collection string) error {
	_, err := p.pool.Exec(ctx, "DELETE FROM chunks WHERE collection = $1", collection)
	return err
}

func (p *PostgresStore) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, "SELECT count(*) FROM chunks WHERE collection = $1", collection).Scan(&n)
	return n, err
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		slog.Info("postgres connection pool closed")
	}
	return nil
}

func joinContext(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += types.ContextSeparator
		}
		out += p
	}
	return out
}
