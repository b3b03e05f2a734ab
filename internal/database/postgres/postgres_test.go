//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/photo-declutter/internal/config"
	"github.com/kozaktomas/photo-declutter/internal/database"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestEmbeddingCacheRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewEmbeddingCacheRepository(pool)

	t.Run("SaveAndGet", func(t *testing.T) {
		embedding := make([]float32, 768)
		for i := range embedding {
			embedding[i] = float32(i) / 768.0
		}

		err := repo.Save(ctx, &database.CachedEmbedding{
			ContentHash: "da39a3ee5e6b4b0d3255bfef95601890afd80709",
			Embedding:   embedding,
			Model:       "clip",
			Dim:         768,
		})
		if err != nil {
			t.Fatalf("Failed to save embedding: %v", err)
		}

		got, err := repo.Get(ctx, "da39a3ee5e6b4b0d3255bfef95601890afd80709")
		if err != nil {
			t.Fatalf("Failed to get embedding: %v", err)
		}
		if got == nil {
			t.Fatal("Expected embedding, got nil")
		}
		if got.Model != "clip" {
			t.Errorf("Expected Model 'clip', got '%s'", got.Model)
		}
		if len(got.Embedding) != 768 {
			t.Errorf("Expected 768 dimensions, got %d", len(got.Embedding))
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		got, err := repo.Get(ctx, "0000000000000000000000000000000000000000")
		if err != nil {
			t.Fatalf("Failed to get embedding: %v", err)
		}
		if got != nil {
			t.Error("Expected nil for cache miss")
		}
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		embedding := make([]float32, 768)
		embedding[0] = 1.0

		err := repo.Save(ctx, &database.CachedEmbedding{
			ContentHash: "da39a3ee5e6b4b0d3255bfef95601890afd80709",
			Embedding:   embedding,
			Model:       "clip-v2",
			Dim:         768,
		})
		if err != nil {
			t.Fatalf("Failed to upsert embedding: %v", err)
		}

		got, err := repo.Get(ctx, "da39a3ee5e6b4b0d3255bfef95601890afd80709")
		if err != nil {
			t.Fatalf("Failed to get embedding: %v", err)
		}
		if got.Model != "clip-v2" {
			t.Errorf("Expected Model 'clip-v2', got '%s'", got.Model)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 cached embedding after upsert, got %d", count)
		}
	})
}
