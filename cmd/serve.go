package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-declutter/internal/ai"
	"github.com/kozaktomas/photo-declutter/internal/config"
	"github.com/kozaktomas/photo-declutter/internal/database"
	"github.com/kozaktomas/photo-declutter/internal/database/postgres"
	"github.com/kozaktomas/photo-declutter/internal/embedding"
	"github.com/kozaktomas/photo-declutter/internal/originals"
	"github.com/kozaktomas/photo-declutter/internal/pipeline"
	"github.com/kozaktomas/photo-declutter/internal/quality"
	"github.com/kozaktomas/photo-declutter/internal/similarity"
	"github.com/kozaktomas/photo-declutter/internal/store"
	"github.com/kozaktomas/photo-declutter/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Photo Declutter web server.
The server provides the full interactive workflow: upload photos, review
similarity groups and quality scores, adjust the selection with undo/redo,
and export the keepers as a zip archive.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("spool-dir", "", "Directory for uploaded originals (defaults to a temp dir)")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// openEmbeddingCache connects the optional PostgreSQL embedding cache.
// Returns nil when no DATABASE_URL is configured or the connection fails.
func openEmbeddingCache(ctx context.Context, cfg *config.Config) (database.EmbeddingCache, *postgres.Pool) {
	if cfg.Database.URL == "" {
		return nil, nil
	}

	fmt.Printf("Connecting to PostgreSQL embedding cache...\n")
	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		fmt.Printf("Warning: embedding cache unavailable: %v\n", err)
		return nil, nil
	}
	if err := pool.Migrate(ctx); err != nil {
		fmt.Printf("Warning: embedding cache migration failed: %v\n", err)
		pool.Close()
		return nil, nil
	}

	repo := postgres.NewEmbeddingCacheRepository(pool)
	if count, err := repo.Count(ctx); err == nil {
		fmt.Printf("Embedding cache ready (%d entries)\n", count)
	}
	return repo, pool
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	cache, pool := openEmbeddingCache(ctx, cfg)
	if pool != nil {
		defer pool.Close()
	}

	// The embedding service is only dialed on the first upload, so the
	// server starts fine while the sidecar is still warming up.
	provider := embedding.NewLazy(func(ctx context.Context) (embedding.Provider, error) {
		return embedding.NewClient(cfg.Embedding.URL), nil
	})

	st := store.New()
	index := similarity.NewIndex()
	scorer := quality.NewScorer(provider, cfg.Prompts.Positive, cfg.Prompts.Negative)
	analyzer := pipeline.NewAnalyzer(
		st, provider, scorer, index, cache,
		cfg.Declutter.SimilarityThreshold, cfg.Declutter.Concurrency, cfg.Embedding.Dim,
	)

	orig, err := originals.New(mustGetString(cmd, "spool-dir"))
	if err != nil {
		return fmt.Errorf("failed to prepare spool directory: %w", err)
	}

	captioner, err := ai.FromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to configure captioner: %w", err)
	}
	if captioner != nil {
		fmt.Printf("Export captions enabled (%s)\n", captioner.Name())
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(web.Deps{
		Store:     st,
		Analyzer:  analyzer,
		Index:     index,
		Originals: orig,
		Captioner: captioner,
	}, host, port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Photo Declutter on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
