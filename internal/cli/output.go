// Package cli provides CLI output formatting for the oracle.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes a search response to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	switch response.Outcome {
	case models.OutcomeUnresolved:
		fmt.Fprintf(w, "No card matches %q. Check the spelling or try a fuller name.\n", response.Query)
		return
	case models.OutcomeResolverUnavailable:
		fmt.Fprintln(w, "Card name resolution is unavailable right now. Try again in a moment.")
		if response.Error != "" {
			fmt.Fprintf(w, "  (%s)\n", response.Error)
		}
		return
	case models.OutcomeEmbeddingMissing:
		if response.Card != nil {
			fmt.Fprintf(w, "%s is not in the similarity dataset.\n", response.Card.Name)
		} else {
			fmt.Fprintf(w, "The matched card is not in the similarity dataset.\n")
		}
		return
	case models.OutcomeEmpty:
		if response.Card != nil {
			fmt.Fprintf(w, "Resolved %q to %s.\n", response.Query, response.Card.Name)
		}
		fmt.Fprintln(w, "No sufficiently similar cards found.")
		return
	}

	if response.Card != nil {
		fmt.Fprintf(w, "\nCards similar to %s", response.Card.Name)
		if response.Card.TypeLine != "" {
			fmt.Fprintf(w, " (%s)", response.Card.TypeLine)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Found %d matches in %dms\n\n", response.Total, response.QueryTime)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
}

func writeOneResult(w io.Writer, result *models.CardResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.3f\n", result.Rank, result.Score)
	fmt.Fprintf(w, "%s", result.Card.Name)
	if result.Card.ManaCost != "" {
		fmt.Fprintf(w, "  %s", result.Card.ManaCost)
	}
	fmt.Fprintln(w)
	if result.Card.TypeLine != "" {
		fmt.Fprintf(w, "%s\n", result.Card.TypeLine)
	}
	if identity := strings.Join(result.Card.ColorIdentity, ""); identity != "" {
		fmt.Fprintf(w, "Identity: %s\n", identity)
	}
	if result.Card.OracleText != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(result.Card.OracleText, 200))
	}
	fmt.Fprintln(w)
}
