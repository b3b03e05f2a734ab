package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/photo-declutter/internal/originals"
	"github.com/kozaktomas/photo-declutter/internal/pipeline"
	"github.com/kozaktomas/photo-declutter/internal/quality"
	"github.com/kozaktomas/photo-declutter/internal/similarity"
	"github.com/kozaktomas/photo-declutter/internal/store"
)

type noopProvider struct{}

func (noopProvider) ImageEmbedding(_ context.Context, _ []byte) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (noopProvider) TextEmbeddings(_ context.Context, prompts []string) ([][]float32, error) {
	out := make([][]float32, len(prompts))
	for i := range prompts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func testServer(t *testing.T) *Server {
	t.Helper()

	st := store.New()
	index := similarity.NewIndex()
	provider := noopProvider{}
	scorer := quality.NewScorer(provider, []string{"good"}, []string{"bad"})
	analyzer := pipeline.NewAnalyzer(st, provider, scorer, index, nil, 0.7, 2, 2)

	orig, err := originals.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create originals store: %v", err)
	}

	return NewServer(Deps{
		Store:     st,
		Analyzer:  analyzer,
		Index:     index,
		Originals: orig,
	}, "127.0.0.1", 0)
}

func TestServer_HealthRoute(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestServer_RoutesWired(t *testing.T) {
	s := testServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/state"},
		{http.MethodPost, "/api/v1/selection/all"},
		{http.MethodPost, "/api/v1/selection/undo"},
		{http.MethodPost, "/api/v1/selection/redo"},
	}

	for _, route := range routes {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		if rec.Code == http.StatusNotFound || rec.Code == http.StatusMethodNotAllowed {
			t.Errorf("route %s %s not wired: %d", route.method, route.path, rec.Code)
		}
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
