// Package database defines the storage contracts for the optional
// cross-session embedding cache.
package database

import (
	"context"
	"time"
)

// CachedEmbedding is one cached image embedding, keyed by the SHA-1 of the
// original file content so re-uploads of the same bytes skip the model.
type CachedEmbedding struct {
	ContentHash string
	Embedding   []float32
	Model       string
	Dim         int
	CreatedAt   time.Time
}

// EmbeddingCache provides lookup and storage of image embeddings across
// sessions. Implementations must treat a miss as (nil, nil), not an error.
type EmbeddingCache interface {
	// Get retrieves a cached embedding by content hash, nil if absent.
	Get(ctx context.Context, contentHash string) (*CachedEmbedding, error)
	// Save stores an embedding, replacing any previous entry for the hash.
	Save(ctx context.Context, emb *CachedEmbedding) error
	// Count returns the total number of cached embeddings.
	Count(ctx context.Context) (int, error)
}
