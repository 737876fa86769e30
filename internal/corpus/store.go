// Package corpus holds the immutable card arena shared by all searches.
//
// Cards, their embedding rows, and the vector index are addressed by a single
// stable row key assigned once at construction. There is no parallel-array
// bookkeeping to drift: each entry carries its card and its unit-normalized
// vector together.
package corpus

import (
	"errors"
	"fmt"

	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/vector"
)

// Construction-time data integrity failures. Any of these aborts initialization;
// the store is never built in a partially valid state.
var (
	ErrCountMismatch = errors.New("corpus: card and embedding row counts differ")
	ErrDuplicateID   = errors.New("corpus: duplicate card id")
	ErrZeroVector    = errors.New("corpus: zero-norm embedding row")
)

// Entry is one corpus record: a card, its stable row key, and its unit-normalized
// embedding. Entries never change after construction.
type Entry struct {
	Row    int
	Card   *models.Card
	Vector []float32
}

// Store is the read-only card arena. Safe for concurrent use without locking:
// nothing mutates it after NewStore returns.
type Store struct {
	entries []Entry
	byID    map[string]int
}

// NewStore builds the arena from cards and their embedding rows, aligned by
// position. Vectors are normalized in place. Construction fails on a count
// mismatch, a duplicate card id, or a zero-norm row.
func NewStore(cards []*models.Card, matrix [][]float32) (*Store, error) {
	if len(cards) != len(matrix) {
		return nil, fmt.Errorf("%w: %d cards, %d rows", ErrCountMismatch, len(cards), len(matrix))
	}
	s := &Store{
		entries: make([]Entry, len(cards)),
		byID:    make(map[string]int, len(cards)),
	}
	for i, card := range cards {
		if card.ID == "" {
			return nil, fmt.Errorf("corpus: card at row %d has no id", i)
		}
		if _, exists := s.byID[card.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, card.ID)
		}
		if err := vector.Normalize(matrix[i]); err != nil {
			return nil, fmt.Errorf("%w: row %d (%s)", ErrZeroVector, i, card.Name)
		}
		s.entries[i] = Entry{Row: i, Card: card, Vector: matrix[i]}
		s.byID[card.ID] = i
	}
	return s, nil
}

// Get returns the card with the given id, or false when absent.
func (s *Store) Get(id string) (*models.Card, bool) {
	row, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.entries[row].Card, true
}

// RowOf returns the row key for the card id, or false when the card has no
// entry in the corpus.
func (s *Store) RowOf(id string) (int, bool) {
	row, ok := s.byID[id]
	return row, ok
}

// At returns the entry at a valid row key. Row keys come from RowOf or from
// index results; passing anything else is a programming error.
func (s *Store) At(row int) *Entry {
	return &s.entries[row]
}

// Len returns the number of corpus entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Vectors returns the unit-normalized embedding rows aligned with the arena,
// for index construction. The slice is shared and must not be mutated.
func (s *Store) Vectors() [][]float32 {
	vecs := make([][]float32, len(s.entries))
	for i := range s.entries {
		vecs[i] = s.entries[i].Vector
	}
	return vecs
}

// Cards returns the cards in row order, for suggest index construction.
func (s *Store) Cards() []*models.Card {
	cards := make([]*models.Card, len(s.entries))
	for i := range s.entries {
		cards[i] = s.entries[i].Card
	}
	return cards
}
