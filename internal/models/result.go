package models

// Outcome classifies how a search terminated. Every response carries exactly one;
// the caller's behavior (message, retry) depends on the kind, so outcomes are
// never collapsed into a generic failure.
type Outcome string

const (
	// OutcomeResults means the search produced at least one similar card.
	OutcomeResults Outcome = "results"
	// OutcomeEmpty means the search ran but no candidate cleared the filters.
	// This is a legitimate terminal state, not an error.
	OutcomeEmpty Outcome = "empty"
	// OutcomeUnresolved means the query text did not match any known card.
	OutcomeUnresolved Outcome = "unresolved"
	// OutcomeResolverUnavailable means the name resolution service failed or
	// timed out; the query may succeed on retry.
	OutcomeResolverUnavailable Outcome = "resolver_unavailable"
	// OutcomeEmbeddingMissing means the card resolved but has no precomputed
	// embedding in the corpus.
	OutcomeEmbeddingMissing Outcome = "embedding_missing"
)

// CardResult is a single similar-card hit.
type CardResult struct {
	Card  *Card   `json:"card"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchResponse is the response for a similarity search. Results are ordered by
// descending score as produced by the index; filtering never re-sorts them.
type SearchResponse struct {
	Outcome Outcome `json:"outcome"`
	Query   string  `json:"query"`
	// Card is the resolved query card, present for every outcome past resolution.
	Card      *Card         `json:"card,omitempty"`
	Results   []*CardResult `json:"results"`
	Total     int           `json:"total"`
	QueryTime int64         `json:"query_time_ms"`
	// Error carries the resolver failure detail for OutcomeResolverUnavailable.
	Error string `json:"error,omitempty"`
}
