package models

import (
	"fmt"
	"strings"
)

// SearchQuery represents a similarity search request.
type SearchQuery struct {
	// Query is the card name or description to resolve.
	Query string `json:"query"`
	// Colors is the color identity selection. Nil means every color plus
	// colorless; an explicitly empty list admits nothing.
	Colors []string `json:"colors,omitempty"`
	// Limit caps the number of ranked results returned.
	Limit int `json:"limit,omitempty"`
	// MinScore is the similarity floor. Zero means "use the server default";
	// pass a negative value to disable the floor entirely.
	MinScore float64 `json:"min_score,omitempty"`
}

// Validate ensures the query has valid fields and normalizes the limit.
// Returns an error if the query text is empty.
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	for _, c := range q.Colors {
		if !validColor(c) {
			return fmt.Errorf("unknown color symbol %q", c)
		}
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return nil
}

func validColor(c string) bool {
	switch strings.ToUpper(strings.TrimSpace(c)) {
	case "W", "U", "B", "R", "G", Colorless:
		return true
	}
	return false
}
