package embedding

import (
	"context"
	"sync"
)

// Lazy wraps a Provider whose acquisition is expensive (model load, network
// handshake) and defers it until first use. Concurrent first calls coalesce
// into a single acquisition; the result, success or failure, is memoized for
// the lifetime of the wrapper.
type Lazy struct {
	acquire func(ctx context.Context) (Provider, error)

	once     sync.Once
	provider Provider
	err      error
}

// NewLazy creates a lazily-initialized provider from an acquisition
// function.
func NewLazy(acquire func(ctx context.Context) (Provider, error)) *Lazy {
	return &Lazy{acquire: acquire}
}

func (l *Lazy) get(ctx context.Context) (Provider, error) {
	l.once.Do(func() {
		l.provider, l.err = l.acquire(ctx)
	})
	return l.provider, l.err
}

// ImageEmbedding acquires the underlying provider on first use and
// delegates to it.
func (l *Lazy) ImageEmbedding(ctx context.Context, imageData []byte) ([]float32, error) {
	p, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return p.ImageEmbedding(ctx, imageData)
}

// TextEmbeddings acquires the underlying provider on first use and
// delegates to it.
func (l *Lazy) TextEmbeddings(ctx context.Context, prompts []string) ([][]float32, error) {
	p, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return p.TextEmbeddings(ctx, prompts)
}
