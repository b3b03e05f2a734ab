package pipeline

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/photo-declutter/internal/database"
	"github.com/kozaktomas/photo-declutter/internal/quality"
	"github.com/kozaktomas/photo-declutter/internal/similarity"
	"github.com/kozaktomas/photo-declutter/internal/store"
)

func testJPEG(c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := range 10 {
		for y := range 10 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

// fakeProvider returns embeddings registered per exact image payload. Text
// prompts all embed to the same vector, which calibrates every scored photo
// to quality 50.
type fakeProvider struct {
	mu         sync.Mutex
	images     map[string][]float32
	imageCalls int
}

func (f *fakeProvider) register(data []byte, emb []float32) {
	if f.images == nil {
		f.images = make(map[string][]float32)
	}
	f.images[string(data)] = emb
}

func (f *fakeProvider) ImageEmbedding(_ context.Context, data []byte) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageCalls++
	if emb, ok := f.images[string(data)]; ok {
		return emb, nil
	}
	return nil, errors.New("unknown image")
}

func (f *fakeProvider) TextEmbeddings(_ context.Context, prompts []string) ([][]float32, error) {
	out := make([][]float32, len(prompts))
	for i := range prompts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*database.CachedEmbedding
	saves   int
}

func (f *fakeCache) Get(_ context.Context, hash string) (*database.CachedEmbedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[hash], nil
}

func (f *fakeCache) Save(_ context.Context, emb *database.CachedEmbedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = make(map[string]*database.CachedEmbedding)
	}
	f.entries[emb.ContentHash] = emb
	f.saves++
	return nil
}

func (f *fakeCache) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries), nil
}

func newTestAnalyzer(provider *fakeProvider, cache database.EmbeddingCache) (*Analyzer, *store.Store) {
	st := store.New()
	scorer := quality.NewScorer(provider, []string{"good"}, []string{"bad"})
	return NewAnalyzer(st, provider, scorer, similarity.NewIndex(), cache, 0.7, 2, 2), st
}

func TestProcess_GroupsSimilarPhotos(t *testing.T) {
	red := testJPEG(color.RGBA{255, 0, 0, 255})
	green := testJPEG(color.RGBA{0, 255, 0, 255})
	blue := testJPEG(color.RGBA{0, 0, 255, 255})

	provider := &fakeProvider{}
	provider.register(red, []float32{1, 0})
	provider.register(green, []float32{0.9, 0.43589}) // ~0.9 similar to red
	provider.register(blue, []float32{0, 1})

	analyzer, _ := newTestAnalyzer(provider, nil)

	modTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	state := analyzer.Process(context.Background(), []File{
		{Name: "red.jpg", Data: red, ModTime: modTime},
		{Name: "green.jpg", Data: green, ModTime: modTime},
		{Name: "blue.jpg", Data: blue, ModTime: modTime},
	}, nil)

	if len(state.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(state.Groups))
	}
	if len(state.Groups[0].Photos) != 2 {
		t.Errorf("expected 2 photos in group, got %d", len(state.Groups[0].Photos))
	}
	if len(state.UniquePhotos) != 1 {
		t.Fatalf("expected 1 unique photo, got %d", len(state.UniquePhotos))
	}
	if state.UniquePhotos[0].OriginalName != "blue.jpg" {
		t.Errorf("expected blue.jpg unique, got %s", state.UniquePhotos[0].OriginalName)
	}

	for _, p := range state.Photos {
		if p.Quality != 50 {
			t.Errorf("photo %s: expected quality 50, got %d", p.OriginalName, p.Quality)
		}
		if p.Width != 10 || p.Height != 10 {
			t.Errorf("photo %s: expected 10x10, got %dx%d", p.OriginalName, p.Width, p.Height)
		}
		if !p.CaptureDate.Equal(modTime) {
			t.Errorf("photo %s: expected capture date from mod time", p.OriginalName)
		}
	}
}

func TestAnalyzeFiles_PreservesOrder(t *testing.T) {
	red := testJPEG(color.RGBA{255, 0, 0, 255})
	blue := testJPEG(color.RGBA{0, 0, 255, 255})

	provider := &fakeProvider{}
	provider.register(red, []float32{1, 0})
	provider.register(blue, []float32{0, 1})

	analyzer, _ := newTestAnalyzer(provider, nil)

	var progressCalls int
	photos := analyzer.AnalyzeFiles(context.Background(), []File{
		{Name: "red.jpg", Data: red},
		{Name: "blue.jpg", Data: blue},
	}, func(done, total int) {
		progressCalls++
		if total != 2 {
			t.Errorf("expected total 2, got %d", total)
		}
	})

	if photos[0].OriginalName != "red.jpg" || photos[1].OriginalName != "blue.jpg" {
		t.Error("expected analyzed photos in input order")
	}
	if progressCalls != 2 {
		t.Errorf("expected 2 progress calls, got %d", progressCalls)
	}
	for _, p := range photos {
		if p.ID == "" {
			t.Error("expected generated photo id")
		}
		if p.CaptureDate.IsZero() {
			t.Error("expected capture date fallback for zero mod time")
		}
	}
}

func TestAnalyzeFiles_CorruptFileDegradesGracefully(t *testing.T) {
	blue := testJPEG(color.RGBA{0, 0, 255, 255})
	provider := &fakeProvider{}
	provider.register(blue, []float32{0, 1})

	analyzer, _ := newTestAnalyzer(provider, nil)

	state := analyzer.Process(context.Background(), []File{
		{Name: "broken.jpg", Data: []byte("not an image")},
		{Name: "blue.jpg", Data: blue},
	}, nil)

	var broken *struct {
		quality  int
		embedded bool
	}
	for _, p := range state.Photos {
		if p.OriginalName == "broken.jpg" {
			broken = &struct {
				quality  int
				embedded bool
			}{p.Quality, p.HasEmbedding()}
		}
	}
	if broken == nil {
		t.Fatal("expected corrupt file to still enter the catalog")
	}
	if broken.embedded {
		t.Error("expected no embedding for corrupt file")
	}
	if broken.quality != 0 {
		t.Errorf("expected quality 0 for corrupt file, got %d", broken.quality)
	}

	// Photos without embeddings never group.
	if len(state.Groups) != 0 {
		t.Errorf("expected no groups, got %d", len(state.Groups))
	}
	if len(state.UniquePhotos) != 2 {
		t.Errorf("expected both photos unique, got %d", len(state.UniquePhotos))
	}
}

func TestEmbeddingCache_HitSkipsProvider(t *testing.T) {
	red := testJPEG(color.RGBA{255, 0, 0, 255})
	sum := sha1.Sum(red)

	cache := &fakeCache{entries: map[string]*database.CachedEmbedding{
		hex.EncodeToString(sum[:]): {
			ContentHash: hex.EncodeToString(sum[:]),
			Embedding:   []float32{1, 0},
		},
	}}

	provider := &fakeProvider{}
	analyzer, _ := newTestAnalyzer(provider, cache)

	photos := analyzer.AnalyzeFiles(context.Background(), []File{
		{Name: "red.jpg", Data: red},
	}, nil)

	if !photos[0].HasEmbedding() {
		t.Fatal("expected embedding from cache")
	}
	if provider.imageCalls != 0 {
		t.Errorf("expected no provider calls on cache hit, got %d", provider.imageCalls)
	}
}

func TestEmbeddingCache_MissSavesResult(t *testing.T) {
	red := testJPEG(color.RGBA{255, 0, 0, 255})

	provider := &fakeProvider{}
	provider.register(red, []float32{1, 0})
	cache := &fakeCache{}

	analyzer, _ := newTestAnalyzer(provider, cache)

	analyzer.AnalyzeFiles(context.Background(), []File{
		{Name: "red.jpg", Data: red},
	}, nil)

	if cache.saves != 1 {
		t.Errorf("expected 1 cache save, got %d", cache.saves)
	}
	if provider.imageCalls != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.imageCalls)
	}
}

func TestIngest_SecondBatchRegroupsAgainstExisting(t *testing.T) {
	red := testJPEG(color.RGBA{255, 0, 0, 255})
	pink := testJPEG(color.RGBA{255, 100, 100, 255})

	provider := &fakeProvider{}
	provider.register(red, []float32{1, 0})
	provider.register(pink, []float32{0.95, 0.31225}) // ~0.95 similar to red

	analyzer, _ := newTestAnalyzer(provider, nil)
	ctx := context.Background()

	state := analyzer.Process(ctx, []File{{Name: "red.jpg", Data: red}}, nil)
	if len(state.UniquePhotos) != 1 {
		t.Fatalf("expected 1 unique photo after first batch, got %d", len(state.UniquePhotos))
	}

	state = analyzer.Process(ctx, []File{{Name: "pink.jpg", Data: pink}}, nil)
	if len(state.Groups) != 1 {
		t.Fatalf("expected cross-batch group, got %d groups", len(state.Groups))
	}
	if len(state.UniquePhotos) != 0 {
		t.Errorf("expected no unique photos, got %d", len(state.UniquePhotos))
	}
	if len(state.Photos) != 2 {
		t.Errorf("expected 2 photos total, got %d", len(state.Photos))
	}
}
