package similarity

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"
)

// IndexMaxNeighbors is the HNSW M parameter (max neighbors per node).
const IndexMaxNeighbors = 16

// Match is a single neighbor returned by an index search.
type Match struct {
	PhotoID    string  `json:"photo_id"`
	Similarity float64 `json:"similarity"`
}

// Index is an in-memory HNSW index over session photo embeddings, used for
// fast similar-photo lookup. It is independent of the grouper: grouping
// semantics require exact pairwise scanning, lookup does not.
type Index struct {
	graph *hnsw.Graph[string]
	mu    sync.RWMutex
}

// NewIndex creates an empty session index.
func NewIndex() *Index {
	return &Index{}
}

// Add inserts a photo embedding into the index. Photos without an embedding
// are skipped.
func (x *Index) Add(photoID string, embedding []float32) {
	if len(embedding) == 0 {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.graph == nil {
		g := hnsw.NewGraph[string]()
		g.M = IndexMaxNeighbors
		g.Ml = 1.0 / float64(IndexMaxNeighbors) // Standard HNSW formula
		g.Distance = hnsw.CosineDistance
		x.graph = g
	}

	x.graph.Add(hnsw.MakeNode(photoID, embedding))
}

// Len returns the number of indexed embeddings.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.graph == nil {
		return 0
	}
	return x.graph.Len()
}

// Search returns the k nearest neighbors of the query embedding, with exact
// cosine similarity recomputed from the stored vectors.
func (x *Index) Search(query []float32, k int) ([]Match, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil {
		return nil, errors.New("index is empty")
	}

	neighbors := x.graph.Search(query, k)
	matches := make([]Match, 0, len(neighbors))
	for _, n := range neighbors {
		matches = append(matches, Match{
			PhotoID:    n.Key,
			Similarity: CosineSimilarity(query, n.Value),
		})
	}
	return matches, nil
}
