// Package suggest provides typo-tolerant card name lookup backed by Bleve.
// It serves autocomplete for the search box; it is not part of the similarity
// pipeline and its failures never fail a search.
package suggest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/cfle/mtg-oracle/internal/models"
)

// fingerprintKey is the internal key holding the corpus fingerprint the index
// was last built from.
var fingerprintKey = []byte("corpus_fingerprint")

// Suggestion is a single name suggestion.
type Suggestion struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// cardDoc is the indexed shape of a card: its name plus the search text the
// embeddings were built from.
type cardDoc struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Index is a Bleve index over corpus card names.
type Index struct {
	index bleve.Index
}

// New creates or opens a Bleve index at path. An existing index is reused so
// the corpus is not re-indexed on every start; remove the directory to force a
// rebuild after a mapping change.
func New(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open suggest index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming): card names must
	// match as written, "Sower" should not stem into "Sow".
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggest index: %w", err)
	}
	return &Index{index: index}, nil
}

// fingerprint hashes the corpus content that drives the indexed documents, so
// a reload with the same card count but different cards still reindexes.
func fingerprint(cards []*models.Card) []byte {
	h := sha256.New()
	for _, card := range cards {
		io.WriteString(h, card.ID)
		io.WriteString(h, "\x00")
		io.WriteString(h, card.Name)
		io.WriteString(h, "\x00")
		io.WriteString(h, card.SearchText())
		io.WriteString(h, "\x00")
	}
	return h.Sum(nil)
}

// IndexCards indexes the corpus in batches. When the index already holds this
// exact corpus (by content fingerprint) it is skipped wholesale; otherwise
// documents are upserted and entries from a previous corpus are removed.
func (s *Index) IndexCards(ctx context.Context, cards []*models.Card) error {
	fp := fingerprint(cards)
	if prev, err := s.index.GetInternal(fingerprintKey); err == nil && bytes.Equal(prev, fp) {
		return nil
	}

	if err := s.deleteStale(cards); err != nil {
		return err
	}

	const batchSize = 500
	batch := s.index.NewBatch()
	for i, card := range cards {
		doc := cardDoc{Name: card.Name, Text: card.SearchText()}
		if err := batch.Index(card.ID, doc); err != nil {
			return fmt.Errorf("batch card %s: %w", card.ID, err)
		}
		if (i+1)%batchSize == 0 {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("flush batch: %w", err)
			}
			batch = s.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("flush batch: %w", err)
		}
	}
	if err := s.index.SetInternal(fingerprintKey, fp); err != nil {
		return fmt.Errorf("record corpus fingerprint: %w", err)
	}
	return nil
}

// deleteStale removes indexed documents whose card ids are absent from the new
// corpus. Upserts alone would leave them behind after a dataset replacement.
func (s *Index) deleteStale(cards []*models.Card) error {
	count, err := s.index.DocCount()
	if err != nil {
		return fmt.Errorf("count indexed cards: %w", err)
	}
	if count == 0 {
		return nil
	}
	keep := make(map[string]bool, len(cards))
	for _, card := range cards {
		keep[card.ID] = true
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	results, err := s.index.Search(req)
	if err != nil {
		return fmt.Errorf("list indexed cards: %w", err)
	}
	batch := s.index.NewBatch()
	for _, hit := range results.Hits {
		if !keep[hit.ID] {
			batch.Delete(hit.ID)
		}
	}
	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("delete stale cards: %w", err)
		}
	}
	return nil
}

// Suggest returns up to limit name suggestions for the partial query, combining
// a name prefix match with a fuzzy match for typo tolerance.
func (s *Index) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if query == "" || limit <= 0 {
		return nil, nil
	}

	prefix := bleve.NewPrefixQuery(query)
	prefix.SetField("name")
	fuzzy := bleve.NewFuzzyQuery(query)
	fuzzy.SetField("name")
	fuzzy.SetFuzziness(2)
	match := bleve.NewMatchQuery(query)

	q := bleve.NewDisjunctionQuery([]blevequery.Query{prefix, fuzzy, match}...)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"name"}

	results, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("suggest search failed: %w", err)
	}

	out := make([]Suggestion, 0, len(results.Hits))
	for _, hit := range results.Hits {
		name, _ := hit.Fields["name"].(string)
		out = append(out, Suggestion{ID: hit.ID, Name: name, Score: hit.Score})
	}
	return out, nil
}

// Count returns the number of indexed cards.
func (s *Index) Count() (uint64, error) {
	return s.index.DocCount()
}

// Close closes the underlying index.
func (s *Index) Close() error {
	return s.index.Close()
}
