package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/photo-declutter/internal/database"
)

// EmbeddingCacheRepository stores image embeddings keyed by content hash so
// repeated uploads of the same file skip the embedding model.
type EmbeddingCacheRepository struct {
	pool *Pool
}

var _ database.EmbeddingCache = (*EmbeddingCacheRepository)(nil)

// NewEmbeddingCacheRepository creates a new PostgreSQL embedding cache.
func NewEmbeddingCacheRepository(pool *Pool) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{pool: pool}
}

// Get retrieves a cached embedding by content hash, returns nil if not found.
func (r *EmbeddingCacheRepository) Get(ctx context.Context, contentHash string) (*database.CachedEmbedding, error) {
	query := `
		SELECT content_hash, embedding, model, dim, created_at
		FROM embedding_cache
		WHERE content_hash = $1
	`

	var emb database.CachedEmbedding
	var vec pgvector.Vector

	err := r.pool.QueryRow(ctx, query, contentHash).Scan(
		&emb.ContentHash,
		&vec,
		&emb.Model,
		&emb.Dim,
		&emb.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cached embedding: %w", err)
	}

	emb.Embedding = vec.Slice()
	return &emb, nil
}

// Save stores an embedding (upsert).
func (r *EmbeddingCacheRepository) Save(ctx context.Context, emb *database.CachedEmbedding) error {
	query := `
		INSERT INTO embedding_cache (content_hash, embedding, model, dim)
		VALUES ($1, $2::vector, $3, $4)
		ON CONFLICT (content_hash) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			model = EXCLUDED.model,
			dim = EXCLUDED.dim,
			created_at = NOW()
	`

	vec := pgvector.NewVector(emb.Embedding)
	if _, err := r.pool.Exec(ctx, query, emb.ContentHash, vec, emb.Model, emb.Dim); err != nil {
		return fmt.Errorf("save cached embedding: %w", err)
	}
	return nil
}

// Count returns the total number of cached embeddings.
func (r *EmbeddingCacheRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM embedding_cache").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cached embeddings: %w", err)
	}
	return count, nil
}
