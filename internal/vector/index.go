// Package vector provides the in-memory inner-product index over card embeddings.
package vector

import "context"

// Result is a single index hit, addressed by corpus row.
type Result struct {
	Row int
	// Score is the inner product of unit vectors, bounded in [-1, 1];
	// higher is more similar.
	Score float64
}

// Index supports top-k inner-product queries over a fixed set of unit vectors.
// Implementations are built once at load time and read-only afterwards.
type Index interface {
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	Dimensions() int
	Size() int
}
