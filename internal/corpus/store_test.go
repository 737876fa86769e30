package corpus

import (
	"errors"
	"math"
	"testing"

	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/vector"
)

func testCards() []*models.Card {
	return []*models.Card{
		{ID: "a", Name: "Alpha", ColorIdentity: []string{"U"}},
		{ID: "b", Name: "Beta", ColorIdentity: []string{}},
		{ID: "c", Name: "Gamma", ColorIdentity: []string{"R"}},
	}
}

func testMatrix() [][]float32 {
	return [][]float32{
		{1, 0, 0},
		{0, 2, 0},
		{0, 0, 3},
	}
}

func TestNewStore_RowAlignment(t *testing.T) {
	s, err := NewStore(testCards(), testMatrix())
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len=%d", s.Len())
	}
	// row_of(record_at(p).id) == p for every valid p.
	for p := 0; p < s.Len(); p++ {
		entry := s.At(p)
		row, ok := s.RowOf(entry.Card.ID)
		if !ok || row != p {
			t.Errorf("RowOf(At(%d).Card.ID) = %d, %v", p, row, ok)
		}
	}
}

func TestNewStore_NormalizesRows(t *testing.T) {
	s, err := NewStore(testCards(), testMatrix())
	if err != nil {
		t.Fatal(err)
	}
	for p := 0; p < s.Len(); p++ {
		if n := vector.Norm(s.At(p).Vector); math.Abs(n-1.0) > 1e-6 {
			t.Errorf("row %d norm = %v, want 1", p, n)
		}
	}
}

func TestNewStore_CountMismatch(t *testing.T) {
	_, err := NewStore(testCards(), testMatrix()[:2])
	if !errors.Is(err, ErrCountMismatch) {
		t.Errorf("err = %v, want ErrCountMismatch", err)
	}
}

func TestNewStore_DuplicateID(t *testing.T) {
	cards := testCards()
	cards[2].ID = "a"
	_, err := NewStore(cards, testMatrix())
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestNewStore_ZeroNormRow(t *testing.T) {
	matrix := testMatrix()
	matrix[1] = []float32{0, 0, 0}
	_, err := NewStore(testCards(), matrix)
	if !errors.Is(err, ErrZeroVector) {
		t.Errorf("err = %v, want ErrZeroVector", err)
	}
}

func TestStore_Lookups(t *testing.T) {
	s, err := NewStore(testCards(), testMatrix())
	if err != nil {
		t.Fatal(err)
	}
	card, ok := s.Get("b")
	if !ok || card.Name != "Beta" {
		t.Errorf("Get(b) = %v, %v", card, ok)
	}
	if _, ok := s.Get("nope"); ok {
		t.Error("Get for absent id should return false")
	}
	if _, ok := s.RowOf("nope"); ok {
		t.Error("RowOf for absent id should return false")
	}
}
