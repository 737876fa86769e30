// Package resolver maps free-text queries to canonical cards via an external
// fuzzy name lookup service.
package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/scryfall"
	"github.com/cfle/mtg-oracle/internal/storage"
	"go.uber.org/zap"
)

// State classifies a resolution outcome. "No such card" and "service failed" are
// distinct states: the first is terminal for the query, the second may succeed
// on retry, and callers present them differently.
type State int

const (
	// StateFound means the query resolved to exactly one canonical card.
	StateFound State = iota
	// StateNoMatch means the service knows no card for the query.
	StateNoMatch
	// StateServiceError means the service could not be reached or answered
	// with a failure; Err carries the cause.
	StateServiceError
)

// Resolution is the tagged outcome of resolving a query.
type Resolution struct {
	State State
	Card  *models.Card
	Err   error
}

// Lookup is the external fuzzy name lookup. The production implementation is
// *scryfall.Client; tests substitute fakes.
type Lookup interface {
	NamedFuzzy(ctx context.Context, name string) (*models.Card, error)
}

// Resolver resolves query text to cards, consulting a persistent cache before
// the external service. It never mutates the corpus.
type Resolver struct {
	lookup  Lookup
	cache   storage.ResolutionCache // optional
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a resolver. cache may be nil to disable caching; timeout bounds
// each external call.
func New(lookup Lookup, cache storage.ResolutionCache, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{lookup: lookup, cache: cache, timeout: timeout, logger: logger}
}

// Resolve maps query text to a tagged Resolution. The external call is bounded
// by the resolver's timeout; a timeout is a service error, not a no-match.
// Found and no-match outcomes are cached; service errors are not.
func (r *Resolver) Resolve(ctx context.Context, query string) Resolution {
	query = strings.TrimSpace(query)
	if query == "" {
		return Resolution{State: StateNoMatch}
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, query); err == nil {
			if cached.NoMatch {
				return Resolution{State: StateNoMatch}
			}
			return Resolution{State: StateFound, Card: cached.Card}
		} else if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("resolution cache read failed", zap.Error(err))
		}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	card, err := r.lookup.NamedFuzzy(callCtx, query)
	if err != nil {
		var notFound *scryfall.NotFoundError
		if errors.As(err, &notFound) {
			r.cachePut(ctx, &storage.Resolution{Query: query, NoMatch: true})
			return Resolution{State: StateNoMatch}
		}
		r.logger.Warn("name lookup failed", zap.String("query", query), zap.Error(err))
		return Resolution{State: StateServiceError, Err: err}
	}

	r.cachePut(ctx, &storage.Resolution{Query: query, Card: card})
	return Resolution{State: StateFound, Card: card}
}

// cachePut writes through to the cache, best effort.
func (r *Resolver) cachePut(ctx context.Context, res *storage.Resolution) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Put(ctx, res); err != nil {
		r.logger.Warn("resolution cache write failed", zap.Error(err))
	}
}
