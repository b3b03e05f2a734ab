package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-declutter/internal/catalog"
	"github.com/kozaktomas/photo-declutter/internal/store"
)

// seededStore builds a store with one group {a,b} (keeper a) and one unique
// photo c. Auto-selection picks a and c.
func seededStore() *store.Store {
	a := catalog.Photo{ID: "a", OriginalName: "A.jpg", Quality: 90, Embedding: []float32{1, 0}}
	b := catalog.Photo{ID: "b", OriginalName: "B.jpg", Quality: 50, Embedding: []float32{1, 0}}
	c := catalog.Photo{ID: "c", OriginalName: "C.jpg", Quality: 70, Embedding: []float32{0, 1}}

	st := store.New()
	st.Ingest([]catalog.Photo{a, b, c}, catalog.GroupResult{
		Groups: []catalog.PhotoGroup{
			{ID: "group-a", Photos: []catalog.Photo{a, b}, Similarity: 0.9},
		},
		UniquePhotos: []catalog.Photo{c},
	})
	return st
}

// doJSON performs a request against the router and decodes the JSON body.
func doJSON(t *testing.T, router *chi.Mux, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec
}
