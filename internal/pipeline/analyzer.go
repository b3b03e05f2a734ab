// Package pipeline turns uploaded image files into analyzed catalog photos
// and feeds them into the selection store. Analysis runs with bounded
// concurrency; ingestion is serialized so concurrent batches regroup against
// a consistent photo set.
package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-declutter/internal/catalog"
	"github.com/kozaktomas/photo-declutter/internal/database"
	"github.com/kozaktomas/photo-declutter/internal/embedding"
	"github.com/kozaktomas/photo-declutter/internal/imaging"
	"github.com/kozaktomas/photo-declutter/internal/quality"
	"github.com/kozaktomas/photo-declutter/internal/similarity"
	"github.com/kozaktomas/photo-declutter/internal/store"
)

// embeddingMaxSize is the longest edge images are downscaled to before they
// are sent to the embedding service.
const embeddingMaxSize = 1920

const embeddingModel = "clip"

// File is one uploaded image prior to analysis.
type File struct {
	Name    string
	Data    []byte
	ModTime time.Time
}

// Analyzer analyzes uploaded files and ingests them into the store.
type Analyzer struct {
	store       *store.Store
	provider    embedding.Provider
	scorer      *quality.Scorer
	index       *similarity.Index
	cache       database.EmbeddingCache // optional, nil disables caching
	threshold   float64
	concurrency int
	dim         int
	now         func() time.Time

	// ingestMu serializes regroup-and-ingest so two concurrent batches
	// cannot both group against the same stale snapshot.
	ingestMu sync.Mutex
}

// NewAnalyzer creates an analyzer. The cache may be nil.
func NewAnalyzer(
	st *store.Store,
	provider embedding.Provider,
	scorer *quality.Scorer,
	index *similarity.Index,
	cache database.EmbeddingCache,
	threshold float64,
	concurrency int,
	dim int,
) *Analyzer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Analyzer{
		store:       st,
		provider:    provider,
		scorer:      scorer,
		index:       index,
		cache:       cache,
		threshold:   threshold,
		concurrency: concurrency,
		dim:         dim,
		now:         time.Now,
	}
}

// Process analyzes a batch of files and ingests them, returning the resulting
// application state. progress may be nil.
func (a *Analyzer) Process(ctx context.Context, files []File, progress func(done, total int)) *store.AppState {
	photos := a.AnalyzeFiles(ctx, files, progress)
	return a.Ingest(photos)
}

// AnalyzeFiles analyzes files with bounded concurrency. The returned photos
// preserve input order. Analysis never fails the whole batch: a photo whose
// embedding or metadata extraction fails is returned without an embedding and
// with quality 0.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []File, progress func(done, total int)) []catalog.Photo {
	photos := make([]catalog.Photo, len(files))

	var done int
	var mu sync.Mutex

	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for i, f := range files {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			photos[i] = a.analyzeOne(ctx, f)

			mu.Lock()
			done++
			d := done
			mu.Unlock()
			if progress != nil {
				progress(d, len(files))
			}
		}(i, f)
	}

	wg.Wait()
	return photos
}

// analyzeOne builds a catalog photo from one file. Every step degrades
// gracefully so a corrupt file still enters the catalog.
func (a *Analyzer) analyzeOne(ctx context.Context, f File) catalog.Photo {
	photo := catalog.Photo{
		ID:           uuid.New().String(),
		OriginalName: f.Name,
		CaptureDate:  f.ModTime,
	}
	if photo.CaptureDate.IsZero() {
		photo.CaptureDate = a.now()
	}

	if w, h, err := imaging.Dimensions(f.Data); err == nil {
		photo.Width = w
		photo.Height = h
	} else {
		log.Printf("analyze: dimensions unavailable for %q: %v", f.Name, err)
	}

	emb, err := a.embeddingFor(ctx, f.Data)
	if err != nil {
		log.Printf("analyze: embedding failed for %q: %v", f.Name, err)
		return photo
	}
	photo.Embedding = emb
	photo.Quality = a.scorer.Score(ctx, emb)
	return photo
}

// embeddingFor returns the image embedding, consulting the cross-session
// cache by content hash when one is configured.
func (a *Analyzer) embeddingFor(ctx context.Context, data []byte) ([]float32, error) {
	var hash string
	if a.cache != nil {
		sum := sha1.Sum(data)
		hash = hex.EncodeToString(sum[:])

		cached, err := a.cache.Get(ctx, hash)
		if err != nil {
			log.Printf("analyze: embedding cache lookup failed: %v", err)
		} else if cached != nil {
			return cached.Embedding, nil
		}
	}

	resized, err := imaging.Resize(data, embeddingMaxSize)
	if err != nil {
		return nil, err
	}

	emb, err := a.provider.ImageEmbedding(ctx, resized)
	if err != nil {
		return nil, err
	}
	if a.dim > 0 && len(emb) != a.dim {
		log.Printf("analyze: embedding dimension %d differs from configured %d", len(emb), a.dim)
	}

	if a.cache != nil {
		saveErr := a.cache.Save(ctx, &database.CachedEmbedding{
			ContentHash: hash,
			Embedding:   emb,
			Model:       embeddingModel,
			Dim:         len(emb),
		})
		if saveErr != nil {
			log.Printf("analyze: embedding cache save failed: %v", saveErr)
		}
	}

	return emb, nil
}

// Ingest regroups the full photo set including newPhotos and applies the
// result to the store. Serialized so concurrent batches see each other.
func (a *Analyzer) Ingest(newPhotos []catalog.Photo) *store.AppState {
	a.ingestMu.Lock()
	defer a.ingestMu.Unlock()

	snapshot := a.store.State()
	all := make([]catalog.Photo, 0, len(snapshot.Photos)+len(newPhotos))
	all = append(all, snapshot.Photos...)
	all = append(all, newPhotos...)

	result := similarity.Group(all, a.threshold)
	state := a.store.Ingest(newPhotos, result)

	if a.index != nil {
		for _, p := range newPhotos {
			a.index.Add(p.ID, p.Embedding)
		}
	}
	return state
}
