// Package integration provides end-to-end tests over real dataset files,
// a real resolution cache, and a fake Scryfall server.
package integration

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cfle/mtg-oracle/internal/config"
	"github.com/cfle/mtg-oracle/internal/dataset"
	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/resolver"
	"github.com/cfle/mtg-oracle/internal/scryfall"
	"github.com/cfle/mtg-oracle/internal/search"
	"github.com/cfle/mtg-oracle/internal/storage"
	"github.com/cfle/mtg-oracle/internal/suggest"
)

var testCards = []*models.Card{
	{
		ID:            "a1",
		Name:          "Lightning Bolt",
		TypeLine:      "Instant",
		OracleText:    "Lightning Bolt deals 3 damage to any target.",
		ColorIdentity: []string{"R"},
	},
	{
		ID:            "b2",
		Name:          "Lightning Strike",
		TypeLine:      "Instant",
		OracleText:    "Lightning Strike deals 3 damage to any target.",
		ColorIdentity: []string{"R"},
	},
	{
		ID:            "c3",
		Name:          "Sol Ring",
		TypeLine:      "Artifact",
		OracleText:    "{T}: Add {C}{C}.",
		ColorIdentity: []string{},
	},
	{
		ID:            "d4",
		Name:          "Counterspell",
		TypeLine:      "Instant",
		OracleText:    "Counter target spell.",
		ColorIdentity: []string{"U"},
	},
}

// Unit vectors: Strike is close to Bolt (0.98), Counterspell moderately
// (0.5), Sol Ring far (0.1).
var testMatrix = [][]float32{
	{1, 0},
	{0.98, 0.19899749},
	{0.1, 0.99498743},
	{0.5, 0.8660254},
}

func npyBytes(t *testing.T, matrix [][]float32) []byte {
	t.Helper()
	rows := len(matrix)
	cols := 0
	if rows > 0 {
		cols = len(matrix[0])
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)
	total := 8 + 2 + len(header) + 1
	pad := (64 - total%64) % 64
	header = header + string(bytes.Repeat([]byte{' '}, pad)) + "\n"

	var buf bytes.Buffer
	buf.Write([]byte("\x93NUMPY"))
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	for _, row := range matrix {
		for _, v := range row {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
		}
	}
	return buf.Bytes()
}

func writeDataset(t *testing.T, dir string) {
	t.Helper()
	cardsJSON, err := json.Marshal(testCards)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, dataset.CardsFile), cardsJSON, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, dataset.EmbeddingsFile), npyBytes(t, testMatrix), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fakeScryfall answers fuzzy name lookups against the test card set by
// case-insensitive prefix.
func fakeScryfall(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/named" {
			http.NotFound(w, r)
			return
		}
		fuzzy := r.URL.Query().Get("fuzzy")
		for _, card := range testCards {
			if len(fuzzy) > 0 && len(card.Name) >= len(fuzzy) &&
				strings.EqualFold(card.Name[:len(fuzzy)], fuzzy) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(card)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "error", "status": 404, "code": "not_found",
			"details": "No cards found matching " + fuzzy,
		})
	}))
}

func buildPipeline(t *testing.T, scryfallURL string) (*search.Engine, storage.ResolutionCache) {
	t.Helper()
	dir := t.TempDir()
	writeDataset(t, dir)

	logger := zap.NewNop()
	snap, err := dataset.Load(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	source := dataset.NewSource(snap)

	cache, err := storage.NewSQLiteCache(filepath.Join(dir, "resolutions.db"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })

	client := scryfall.NewClient(scryfallURL, "mtg-oracle-test/1.0", 5*time.Second)
	res := resolver.New(client, cache, 5*time.Second, logger)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return search.NewEngine(source, res, &cfg.Search, logger), cache
}

func TestPipeline_SimilaritySearch(t *testing.T) {
	srv := fakeScryfall(t)
	defer srv.Close()
	engine, _ := buildPipeline(t, srv.URL)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "lightning bol"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Outcome != models.OutcomeResults {
		t.Fatalf("outcome = %q, error = %q", resp.Outcome, resp.Error)
	}
	if resp.Card == nil || resp.Card.Name != "Lightning Bolt" {
		t.Fatalf("resolved card = %+v", resp.Card)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2 (Strike and Counterspell above the floor)", len(resp.Results))
	}
	if resp.Results[0].Card.Name != "Lightning Strike" {
		t.Errorf("top result = %q, want Lightning Strike", resp.Results[0].Card.Name)
	}
	if resp.Results[1].Card.Name != "Counterspell" {
		t.Errorf("second result = %q, want Counterspell", resp.Results[1].Card.Name)
	}
	for i, r := range resp.Results {
		if r.Rank != i+1 {
			t.Errorf("rank[%d] = %d", i, r.Rank)
		}
		if r.Card.ID == "a1" {
			t.Error("query card included in its own results")
		}
	}
}

func TestPipeline_ColorFilter(t *testing.T) {
	srv := fakeScryfall(t)
	defer srv.Close()
	engine, _ := buildPipeline(t, srv.URL)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{
		Query:  "lightning bolt",
		Colors: []string{"U"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Outcome != models.OutcomeResults {
		t.Fatalf("outcome = %q", resp.Outcome)
	}
	if len(resp.Results) != 1 || resp.Results[0].Card.Name != "Counterspell" {
		t.Fatalf("results = %+v, want only Counterspell", resp.Results)
	}
}

func TestPipeline_ColorlessFilter(t *testing.T) {
	srv := fakeScryfall(t)
	defer srv.Close()
	engine, _ := buildPipeline(t, srv.URL)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{
		Query:    "lightning bolt",
		Colors:   []string{"C"},
		MinScore: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Card.Name != "Sol Ring" {
		t.Fatalf("results = %+v, want only Sol Ring", resp.Results)
	}
}

func TestPipeline_UnresolvedName(t *testing.T) {
	srv := fakeScryfall(t)
	defer srv.Close()
	engine, _ := buildPipeline(t, srv.URL)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "xyzzy plugh"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Outcome != models.OutcomeUnresolved {
		t.Errorf("outcome = %q, want %q", resp.Outcome, models.OutcomeUnresolved)
	}
}

func TestPipeline_ResolverDown(t *testing.T) {
	srv := fakeScryfall(t)
	srv.Close() // refuse connections
	engine, _ := buildPipeline(t, srv.URL)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "lightning bolt"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Outcome != models.OutcomeResolverUnavailable {
		t.Errorf("outcome = %q, want %q", resp.Outcome, models.OutcomeResolverUnavailable)
	}
}

func TestPipeline_ResolutionCached(t *testing.T) {
	srv := fakeScryfall(t)
	engine, cache := buildPipeline(t, srv.URL)
	ctx := context.Background()

	if _, err := engine.Search(ctx, &models.SearchQuery{Query: "sol ring"}); err != nil {
		t.Fatal(err)
	}
	srv.Close()

	// Second search for the same name must serve resolution from the cache.
	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "sol ring"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Outcome == models.OutcomeResolverUnavailable {
		t.Fatal("resolution not served from cache after service went down")
	}
	n, err := cache.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("cached resolutions = %d, want 1", n)
	}
}

func TestPipeline_SuggestIndex(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	snap, err := dataset.Load(dir, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	idx, err := suggest.New(filepath.Join(dir, "suggest.bleve"))
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()
	if err := idx.IndexCards(ctx, snap.Corpus.Cards()); err != nil {
		t.Fatal(err)
	}

	suggestions, err := idx.Suggest(ctx, "light", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) < 2 {
		t.Fatalf("suggestions = %+v, want both Lightning cards", suggestions)
	}
}
