package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"legalrag/loader/internal"
	"legalrag/model"
	"legalrag/store"
	"legalrag/types"
)

const (
	documentsCacheName  = "documents.gob"
	chunksCacheName     = "chunks.gob"
	embeddingsCacheName = "embeddings.gob"
)

// Service runs the offline ingestion pipeline: parse, split, embed,
// upsert. Each stage flushes to the cache before the next starts, so an
// interrupted run resumes from the last completed stage. Exactly one
// writer is assumed during ingestion.
type Service struct {
	logger   *slog.Logger
	store    store.VectorStorer
	embedder model.EmbedderInterface
	cache    *internal.Cache
	parsers  []internal.Parser
	cfg      types.LoaderConfig
}

func New(storer store.VectorStorer, embedder model.EmbedderInterface, cache *internal.Cache, cfg types.LoaderConfig) *Service {
	return &Service{
		logger:   slog.Default(),
		store:    storer,
		embedder: embedder,
		cache:    cache,
		parsers:  internal.DefaultParsers(),
		cfg:      cfg,
	}
}

// Run executes the full pipeline. reset clears the target collection
// before inserting; the intermediate stage caches are left alone.
func (s *Service) Run(ctx context.Context, reset bool) error {
	sourceFP, err := internal.DirFingerprint(s.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("fingerprint data dir: %w", err)
	}

	chunks, err := s.parseStage(sourceFP)
	if err != nil {
		return err
	}

	splitChunks, err := s.splitStage(sourceFP, chunks)
	if err != nil {
		return err
	}

	if reset {
		s.logger.Warn("reset requested, deleting collection", "collection", s.cfg.Collection)
		if err := s.store.DeleteCollection(ctx, s.cfg.Collection); err != nil {
			return fmt.Errorf("delete collection %s: %w", s.cfg.Collection, err)
		}
	}

	embeddings, err := s.embedStage(ctx, splitChunks)
	if err != nil {
		return err
	}

	if err := s.upsertStage(ctx, splitChunks, embeddings); err != nil {
		return err
	}

	total, err := s.store.Count(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("count collection: %w", err)
	}
	fmt.Printf("All done! Collection %q holds %d chunks.\n", s.cfg.Collection, total)
	return nil
}

func (s *Service) parseStage(sourceFP string) ([]types.TextChunk, error) {
	var docs []types.Document
	hit, err := s.cache.Load(documentsCacheName, sourceFP, &docs)
	if err != nil {
		return nil, err
	}
	if hit {
		fmt.Printf("Loaded %d cached parsed documents.\n", len(docs))
	} else {
		fmt.Println("Step 1: parsing documents from folder...")
		docs, err = internal.LoadDirectory(s.cfg.DataDir, s.parsers)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Save(documentsCacheName, sourceFP, docs); err != nil {
			return nil, fmt.Errorf("save parsed documents: %w", err)
		}
		fmt.Printf("Parsed and cached %d documents.\n", len(docs))
	}

	chunks := internal.FlattenChunks(docs)
	for _, doc := range docs {
		s.logger.Info("parsed document", "id", doc.ID, "title", doc.Title, "format", doc.Format, "chunks", len(doc.Chunks))
	}

	// An empty parse would silently build an empty index; stop here.
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no documents were parsed from %s: check the data folder and file structures", s.cfg.DataDir)
	}
	return chunks, nil
}

func (s *Service) splitStage(sourceFP string, chunks []types.TextChunk) ([]types.TextChunk, error) {
	fp := internal.Fingerprint(sourceFP, strconv.Itoa(s.cfg.ChunkSize), strconv.Itoa(s.cfg.ChunkOverlap))

	var split []types.TextChunk
	hit, err := s.cache.Load(chunksCacheName, fp, &split)
	if err != nil {
		return nil, err
	}
	if hit {
		fmt.Printf("Loaded %d cached split chunks.\n", len(split))
	} else {
		fmt.Println("Step 2: splitting documents into chunks...")
		splitter := internal.NewSplitter(s.cfg.ChunkSize, s.cfg.ChunkOverlap)
		split = splitter.Split(chunks)
		if err := s.cache.Save(chunksCacheName, fp, split); err != nil {
			return nil, fmt.Errorf("save split chunks: %w", err)
		}
		fmt.Printf("Split into %d text chunks.\n", len(split))
	}

	if len(split) == 0 {
		return nil, fmt.Errorf("no chunks were produced: source documents may be empty")
	}
	return split, nil
}

func (s *Service) embedStage(ctx context.Context, chunks []types.TextChunk) ([][]float32, error) {
	fp := internal.Fingerprint(internal.ChunksDigest(chunks), s.embedder.ModelName(), strconv.Itoa(s.embedder.Dimensions()))

	var embeddings [][]float32
	hit, err := s.cache.Load(embeddingsCacheName, fp, &embeddings)
	if err != nil {
		return nil, err
	}
	if hit {
		fmt.Printf("Loaded %d cached embeddings.\n", len(embeddings))
		return embeddings, nil
	}

	fmt.Println("Step 3: generating embeddings...")
	embeddings = make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.cfg.EmbedBatchSize {
		end := start + s.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at %d: %w", start, err)
		}
		embeddings = append(embeddings, batch...)
		fmt.Printf("\rEmbedding progress: %d/%d", end, len(chunks))
	}
	fmt.Println()

	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}
	if err := s.cache.Save(embeddingsCacheName, fp, embeddings); err != nil {
		return nil, fmt.Errorf("save embeddings: %w", err)
	}
	return embeddings, nil
}

// upsertStage inserts only the chunks whose identifiers are not yet in
// the collection, in fixed-size batches. Re-running against an unchanged
// corpus inserts nothing.
func (s *Service) upsertStage(ctx context.Context, chunks []types.TextChunk, embeddings [][]float32) error {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = types.ChunkID(c.Content, c.SourceRef)
	}

	existing, err := s.store.ExistingIDs(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("list existing ids: %w", err)
	}
	fmt.Printf("Collection %q already holds %d chunks.\n", s.cfg.Collection, len(existing))

	missing := MissingIndices(ids, existing)
	if len(missing) == 0 {
		fmt.Println("Vector store is already up to date.")
		return nil
	}

	fmt.Printf("Step 4: adding %d new chunks to the vector store...\n", len(missing))
	for start := 0; start < len(missing); start += s.cfg.DBBatchSize {
		end := start + s.cfg.DBBatchSize
		if end > len(missing) {
			end = len(missing)
		}

		batch := make([]types.EmbeddedChunk, 0, end-start)
		for _, idx := range missing[start:end] {
			batch = append(batch, types.EmbeddedChunk{
				TextChunk: chunks[idx],
				ID:        ids[idx],
				Embedding: embeddings[idx],
			})
		}
		if err := s.store.UpsertChunks(ctx, s.cfg.Collection, batch); err != nil {
			return fmt.Errorf("upsert batch starting at %d: %w", start, err)
		}
	}
	return nil
}

// MissingIndices returns the positions whose ids are absent from the
// existing set. Duplicate ids within the run are inserted once; later
// occurrences are dropped.
func MissingIndices(ids []string, existing map[string]struct{}) []int {
	seen := make(map[string]struct{}, len(ids))
	var missing []int
	for i, id := range ids {
		if _, ok := existing[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, i)
	}
	return missing
}
