package vector

import (
	"errors"
	"math"
)

// ErrZeroNorm indicates a degenerate embedding that cannot be normalized.
// In a corpus of precomputed embeddings this is a data integrity failure.
var ErrZeroNorm = errors.New("vector has zero norm")

// Norm returns the Euclidean (L2) norm of vec.
func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Normalize scales vec in place to unit L2 norm, matching the normalization the
// index is built with. Returns ErrZeroNorm for a zero vector.
func Normalize(vec []float32) error {
	norm := Norm(vec)
	if norm == 0 {
		return ErrZeroNorm
	}
	inv := float32(1.0 / norm)
	for i := range vec {
		vec[i] *= inv
	}
	return nil
}

// Dot returns the inner product of a and b. Callers guarantee equal length.
func Dot(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}
