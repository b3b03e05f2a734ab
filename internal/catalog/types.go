// Package catalog defines the core data model of a declutter session:
// photos, similarity groups, and grouping results.
package catalog

import "time"

// Photo represents one uploaded image and its derived data.
// A Photo is created once when a file finishes the analysis pipeline and is
// immutable afterwards, except for Selected which tracks the selection set.
type Photo struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name,omitempty"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	CaptureDate  time.Time `json:"capture_date"`
	Quality      int       `json:"quality"`
	Selected     bool      `json:"selected"`

	// Embedding is absent when extraction failed. Photos without an
	// embedding never enter pairwise comparison.
	Embedding []float32 `json:"-"`
}

// HasEmbedding reports whether embedding extraction succeeded for the photo.
func (p *Photo) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// PhotoGroup is a cluster of two or more photos judged mutually similar.
// Photos are ordered by quality descending; index 0 is the recommended
// keeper and provides the group id and date.
type PhotoGroup struct {
	ID     string  `json:"id"`
	Photos []Photo `json:"photos"`

	// Similarity is the minimum cosine similarity observed among the
	// anchor connections that formed the group. It is a lower bound on
	// intra-group closeness, not an all-pairs minimum.
	Similarity float64   `json:"similarity"`
	Date       time.Time `json:"date"`
}

// Keeper returns the recommended keeper (the highest quality member).
func (g *PhotoGroup) Keeper() *Photo {
	if len(g.Photos) == 0 {
		return nil
	}
	return &g.Photos[0]
}

// GroupResult is the outcome of one grouping pass over the full photo set.
// Every input photo appears in exactly one of Groups or UniquePhotos.
type GroupResult struct {
	Groups       []PhotoGroup `json:"groups"`
	UniquePhotos []Photo      `json:"unique_photos"`
}
