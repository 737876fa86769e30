package vector

import (
	"context"
	"fmt"
	"sort"
)

// BruteForce is an exhaustive inner-product index. With unit vectors the inner
// product equals cosine similarity. Rows in results are positions in the slice
// the index was built from; the corpus arena is addressed by the same positions.
type BruteForce struct {
	dimensions int
	vectors    [][]float32
}

// NewBruteForce builds an index over vectors. All vectors must have the given
// dimension. The slice is retained, not copied; callers must not mutate it after
// construction.
func NewBruteForce(vectors [][]float32, dimensions int) (*BruteForce, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	for i, vec := range vectors {
		if len(vec) != dimensions {
			return nil, fmt.Errorf("vector dimension mismatch at row %d: got %d, expected %d", i, len(vec), dimensions)
		}
	}
	return &BruteForce{dimensions: dimensions, vectors: vectors}, nil
}

// Search returns the top-k rows by inner product with query, descending.
// Ties break toward the lower row so results are deterministic.
func (b *BruteForce) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != b.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), b.dimensions)
	}
	if k <= 0 || len(b.vectors) == 0 {
		return nil, nil
	}
	scores := make([]Result, len(b.vectors))
	for i, vec := range b.vectors {
		scores[i] = Result{Row: i, Score: Dot(query, vec)}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Row < scores[j].Row
	})
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// Dimensions returns the vector dimension the index was built with.
func (b *BruteForce) Dimensions() int {
	return b.dimensions
}

// Size returns the number of vectors in the index.
func (b *BruteForce) Size() int {
	return len(b.vectors)
}
