// Package quality scores perceptual photo quality by comparing an image
// embedding against fixed sets of positive and negative text prompts.
package quality

import (
	"context"
	"log"
	"math"
	"sync"

	"github.com/kozaktomas/photo-declutter/internal/embedding"
	"github.com/kozaktomas/photo-declutter/internal/similarity"
)

// Scorer turns an image embedding into a 0-100 quality score. Prompt
// embeddings are computed once per session on first use and reused; the
// one-time computation coalesces concurrent callers.
type Scorer struct {
	provider embedding.Provider
	positive []string
	negative []string

	once    sync.Once
	posEmb  [][]float32
	negEmb  [][]float32
	initErr error
}

// NewScorer creates a scorer over the given prompt sets. The prompt wording
// is part of the score calibration and must match what the 0-100 scale was
// tuned against.
func NewScorer(provider embedding.Provider, positive, negative []string) *Scorer {
	return &Scorer{
		provider: provider,
		positive: positive,
		negative: negative,
	}
}

func (s *Scorer) ensurePrompts(ctx context.Context) error {
	s.once.Do(func() {
		s.posEmb, s.initErr = s.provider.TextEmbeddings(ctx, s.positive)
		if s.initErr != nil {
			return
		}
		s.negEmb, s.initErr = s.provider.TextEmbeddings(ctx, s.negative)
	})
	return s.initErr
}

// Score computes the quality score for an image embedding. A missing
// embedding or a prompt-embedding failure yields 0, which callers must
// treat as "unknown quality", not as an error.
func (s *Scorer) Score(ctx context.Context, imageEmbedding []float32) int {
	if len(imageEmbedding) == 0 {
		return 0
	}
	if err := s.ensurePrompts(ctx); err != nil {
		log.Printf("quality: prompt embeddings unavailable, scoring as 0: %v", err)
		return 0
	}

	avgPos := averageSimilarity(imageEmbedding, s.posEmb)
	avgNeg := averageSimilarity(imageEmbedding, s.negEmb)
	return Calibrate(avgPos - avgNeg)
}

// averageSimilarity returns the mean cosine similarity of the embedding
// against each prompt embedding.
func averageSimilarity(imageEmbedding []float32, prompts [][]float32) float64 {
	if len(prompts) == 0 {
		return 0
	}
	var sum float64
	for _, p := range prompts {
		sum += similarity.CosineSimilarity(imageEmbedding, p)
	}
	return sum / float64(len(prompts))
}

// Calibrate maps the raw positive-minus-negative signal onto the 0-100
// integer scale: clamp(round(((raw*15+1)/2)*100), 0, 100).
//
// The constants are tuned values, not a derived probability. The displayed
// scale depends on them exactly as written; do not re-derive.
func Calibrate(raw float64) int {
	score := int(math.Round(((raw*15 + 1) / 2) * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
