// Package dataset loads and validates the card corpus, embedding matrix, and
// vector index from cached release artifacts.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cfle/mtg-oracle/internal/corpus"
	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/vector"
	"go.uber.org/zap"
)

// Snapshot is the immutable, validated search state: the card arena plus the
// vector index built over it. Concurrent searches share a snapshot read-only;
// reloads build a fresh one and swap it in whole.
type Snapshot struct {
	Corpus   *corpus.Store
	Index    vector.Index
	Dim      int
	LoadedAt time.Time
}

// Load reads the artifacts from cacheDir, validates their alignment once at this
// boundary, and builds the snapshot. Any inconsistency (count mismatch, duplicate
// id, zero-norm row, malformed file) aborts the load; a snapshot is never built
// from partially valid data.
func Load(cacheDir string, logger *zap.Logger) (*Snapshot, error) {
	start := time.Now()

	cards, err := readCards(filepath.Join(cacheDir, CardsFile))
	if err != nil {
		return nil, err
	}
	matrix, err := ReadMatrixFile(filepath.Join(cacheDir, EmbeddingsFile))
	if err != nil {
		return nil, err
	}
	if len(matrix) == 0 {
		return nil, fmt.Errorf("dataset: embedding matrix is empty")
	}
	dim := len(matrix[0])

	store, err := corpus.NewStore(cards, matrix)
	if err != nil {
		return nil, err
	}
	index, err := vector.NewBruteForce(store.Vectors(), dim)
	if err != nil {
		return nil, err
	}

	logger.Info("dataset loaded",
		zap.Int("cards", store.Len()),
		zap.Int("dimensions", dim),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Snapshot{Corpus: store, Index: index, Dim: dim, LoadedAt: time.Now()}, nil
}

func readCards(path string) ([]*models.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cards file: %w", err)
	}
	var cards []*models.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("dataset: %s contains no cards", path)
	}
	return cards, nil
}

// Source hands out the current snapshot and supports atomic replacement when the
// dataset files change. Per-request state never outlives the snapshot pointer it
// was taken from.
type Source struct {
	snap atomic.Pointer[Snapshot]
}

// NewSource creates a source serving the given snapshot.
func NewSource(s *Snapshot) *Source {
	src := &Source{}
	src.snap.Store(s)
	return src
}

// Snapshot returns the current snapshot. Callers hold it for the duration of one
// request.
func (s *Source) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Replace swaps in a new snapshot. In-flight requests keep the one they hold.
func (s *Source) Replace(n *Snapshot) {
	s.snap.Store(n)
}
