package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"legalrag/types"
)

// CollectionSearcher is the single-collection query capability the
// retriever fans out over.
type CollectionSearcher interface {
	Query(ctx context.Context, collection string, vector []float32, k int) ([]types.RetrievalResult, error)
}

// Retriever queries every configured collection for its own top-k and
// re-ranks the union globally. No single collection is assumed to hold
// the global top-k.
type Retriever struct {
	searcher    CollectionSearcher
	collections []string
	logger      *slog.Logger
}

func NewRetriever(searcher CollectionSearcher, collections []string) *Retriever {
	return &Retriever{
		searcher:    searcher,
		collections: collections,
		logger:      slog.Default(),
	}
}

func (r *Retriever) Collections() []string {
	return r.collections
}

// Retrieve merges independently-sorted per-collection result lists into
// a globally sorted top-k by ascending distance. A failing collection is
// logged and skipped; zero healthy collections yields an empty result,
// not an error.
func (r *Retriever) Retrieve(ctx context.Context, vector []float32, k int) ([]types.RetrievalResult, error) {
	if k <= 0 {
		k = 5
	}

	var (
		mu     sync.Mutex
		merged []types.RetrievalResult
		wg     sync.WaitGroup
	)

	for _, collection := range r.collections {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			results, err := r.searcher.Query(ctx, name, vector, k)
			if err != nil {
				r.logger.Error("collection query failed, skipping", "collection", name, "error", err)
				return
			}
			mu.Lock()
			merged = append(merged, results...)
			mu.Unlock()
		}(collection)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}
