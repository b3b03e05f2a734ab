// Package embedding defines the embedding provider contract and the HTTP
// client for the CLIP embedding sidecar.
package embedding

import "context"

// Provider converts images and text prompts into fixed-length embedding
// vectors sharing one space. Vectors are expected L2-normalized by the
// model before cosine-similarity use.
type Provider interface {
	// ImageEmbedding computes the embedding for raw image bytes.
	ImageEmbedding(ctx context.Context, imageData []byte) ([]float32, error)
	// TextEmbeddings computes one embedding per prompt, in prompt order.
	TextEmbeddings(ctx context.Context, prompts []string) ([][]float32, error)
}
