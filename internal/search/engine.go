// Package search runs the card similarity pipeline: resolution, embedding
// lookup, vector query, and post-filtering.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cfle/mtg-oracle/internal/config"
	"github.com/cfle/mtg-oracle/internal/dataset"
	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/resolver"
	"github.com/cfle/mtg-oracle/internal/vector"
	"go.uber.org/zap"
)

// ErrNoEmbedding indicates a card resolved by name but has no precomputed
// embedding in the corpus. Distinct from an unresolved name: the card exists,
// the dataset just does not cover it.
var ErrNoEmbedding = errors.New("no embedding for card")

// ErrInvalidQuery marks request errors the caller can correct. Any other error
// from Search is an internal fault.
var ErrInvalidQuery = errors.New("invalid query")

// Engine runs the similarity search pipeline over the current dataset snapshot.
// All per-query state is request-scoped; the snapshot itself is immutable.
type Engine struct {
	source   *dataset.Source
	resolver *resolver.Resolver
	config   *config.SearchConfig
	logger   *zap.Logger
}

// NewEngine creates an engine with the given dependencies.
func NewEngine(source *dataset.Source, res *resolver.Resolver, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	return &Engine{source: source, resolver: res, config: cfg, logger: logger}
}

// Search resolves the query text and returns ranked similar cards with an
// explicit outcome. Resolution failures, missing embeddings, and empty results
// are distinct outcomes, never collapsed; only internal faults return an error.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := query.Validate(e.config.DefaultLimit, e.config.MaxLimit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	response := &models.SearchResponse{Query: query.Query, Results: []*models.CardResult{}}
	done := func() *models.SearchResponse {
		response.QueryTime = time.Since(start).Milliseconds()
		return response
	}

	res := e.resolver.Resolve(ctx, query.Query)
	switch res.State {
	case resolver.StateNoMatch:
		response.Outcome = models.OutcomeUnresolved
		return done(), nil
	case resolver.StateServiceError:
		response.Outcome = models.OutcomeResolverUnavailable
		if res.Err != nil {
			response.Error = res.Err.Error()
		}
		return done(), nil
	}
	response.Card = res.Card

	snapshot := e.source.Snapshot()
	candidates, err := e.Similar(ctx, snapshot, res.Card, e.config.TopKCandidates)
	if err != nil {
		if errors.Is(err, ErrNoEmbedding) {
			e.logger.Debug("no embedding for resolved card",
				zap.String("card", res.Card.Name), zap.String("id", res.Card.ID))
			response.Outcome = models.OutcomeEmbeddingMissing
			return done(), nil
		}
		return nil, err
	}

	colors := query.Colors
	if colors == nil {
		colors = models.AllColors()
	}
	minScore := query.MinScore
	if minScore == 0 {
		minScore = e.config.MinScore
	}
	results := Filter(snapshot.Corpus, candidates, res.Card.ID, minScore, models.NewColorFilter(colors))

	response.Total = len(results)
	if len(results) > query.Limit {
		results = results[:query.Limit]
	}
	response.Results = results
	if len(results) == 0 {
		response.Outcome = models.OutcomeEmpty
	} else {
		response.Outcome = models.OutcomeResults
	}
	return done(), nil
}

// Similar returns the raw ranked (score, row) candidates for card, unfiltered.
// k over-fetches relative to the final result count because downstream filtering
// removes entries; it is clamped to the corpus size. The query card itself will
// be among the candidates (self-similarity 1.0) and is excluded by Filter, not
// here.
func (e *Engine) Similar(ctx context.Context, snapshot *dataset.Snapshot, card *models.Card, k int) ([]vector.Result, error) {
	row, ok := snapshot.Corpus.RowOf(card.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoEmbedding, card.Name, card.ID)
	}

	entry := snapshot.Corpus.At(row)
	query := make([]float32, len(entry.Vector))
	copy(query, entry.Vector)
	// Rows are already unit vectors; this re-check catches a zero-norm row.
	if err := vector.Normalize(query); err != nil {
		return nil, fmt.Errorf("embedding row %d for %s: %w", row, card.Name, err)
	}

	if k <= 0 {
		k = e.config.TopKCandidates
	}
	if k > snapshot.Corpus.Len() {
		k = snapshot.Corpus.Len()
	}
	return snapshot.Index.Search(ctx, query, k)
}
