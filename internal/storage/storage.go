// Package storage persists resolver outcomes between runs so repeated queries
// skip the network.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cfle/mtg-oracle/internal/models"
)

// ErrNotFound is returned when no valid cached resolution exists for a query.
var ErrNotFound = errors.New("storage: resolution not found")

// Resolution is a cached resolver outcome for a normalized query string.
// NoMatch entries record that the service had no card for the query; caching
// those avoids re-asking for garbage input.
type Resolution struct {
	Query     string
	NoMatch   bool
	Card      *models.Card // nil for no-match entries
	CreatedAt time.Time
}

// ResolutionCache stores resolver outcomes keyed by query text. Entries expire
// after the cache's TTL; expired entries behave as absent.
type ResolutionCache interface {
	Get(ctx context.Context, query string) (*Resolution, error)
	Put(ctx context.Context, res *Resolution) error
	Purge(ctx context.Context, olderThan time.Time) error
	Count(ctx context.Context) (int64, error)
	Close() error
}
