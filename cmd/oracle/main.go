// Package main is the mtg-oracle CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cfle/mtg-oracle/internal/cli"
	"github.com/cfle/mtg-oracle/internal/config"
	"github.com/cfle/mtg-oracle/internal/dataset"
	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/resolver"
	"github.com/cfle/mtg-oracle/internal/scryfall"
	"github.com/cfle/mtg-oracle/internal/search"
	"github.com/cfle/mtg-oracle/internal/server"
	"github.com/cfle/mtg-oracle/internal/storage"
	"github.com/cfle/mtg-oracle/internal/suggest"
	"github.com/cfle/mtg-oracle/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/mtg-oracle/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so running from the project dir picks up the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "suggest":
		runSuggest()
	case "fetch":
		runFetch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("mtg-oracle version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx := context.Background()
	if missing := dataset.Missing(cfg.Dataset.CacheDir); len(missing) > 0 {
		logger.Info("fetching dataset artifacts", zap.Strings("missing", missing))
		if err := dataset.Fetch(ctx, cfg.Dataset.BaseURL, cfg.Dataset.CacheDir, false, false); err != nil {
			logger.Fatal("Failed to fetch dataset", zap.Error(err))
		}
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	if cfg.Dataset.WatchReloadOrDefault() {
		w := dataset.NewWatcher(cfg.Dataset.CacheDir, func() {
			snap, loadErr := dataset.Load(cfg.Dataset.CacheDir, logger)
			if loadErr != nil {
				logger.Warn("dataset reload failed, keeping current snapshot", zap.Error(loadErr))
				return
			}
			components.Source.Replace(snap)
			if components.Suggest != nil {
				if err := components.Suggest.IndexCards(context.Background(), snap.Corpus.Cards()); err != nil {
					logger.Warn("suggest reindex failed, suggestions may be stale", zap.Error(err))
				}
			}
			logger.Info("dataset reloaded", zap.Int("cards", snap.Corpus.Len()))
		}, logger)
		if err := w.Start(watchCtx); err != nil {
			logger.Warn("dataset watcher unavailable", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	srv := server.NewServer(
		components.Engine,
		components.Source,
		components.Suggest,
		components.Cache,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// Components holds all initialized server components.
type Components struct {
	Source  *dataset.Source
	Cache   storage.ResolutionCache
	Engine  *search.Engine
	Suggest *suggest.Index
	logger  *zap.Logger
}

// Close releases component resources.
func (c *Components) Close() {
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.Suggest != nil {
		_ = c.Suggest.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	snap, err := dataset.Load(cfg.Dataset.CacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	source := dataset.NewSource(snap)

	var cache storage.ResolutionCache
	sqliteCache, err := storage.NewSQLiteCache(
		cfg.Storage.ResolutionsDBPath,
		time.Duration(cfg.Scryfall.CacheTTLHours)*time.Hour,
	)
	if err != nil {
		// The resolver works without a cache, every lookup just hits the API.
		logger.Warn("resolution cache unavailable", zap.Error(err))
	} else {
		cache = sqliteCache
	}

	client := scryfall.NewClient(
		cfg.Scryfall.BaseURL,
		cfg.Scryfall.UserAgent,
		time.Duration(cfg.Scryfall.TimeoutSeconds)*time.Second,
	)
	res := resolver.New(client, cache, time.Duration(cfg.Scryfall.TimeoutSeconds)*time.Second, logger)
	engine := search.NewEngine(source, res, &cfg.Search, logger)

	var suggestIdx *suggest.Index
	idx, err := suggest.New(cfg.Storage.SuggestIndexPath)
	if err != nil {
		logger.Warn("suggest index unavailable", zap.Error(err))
	} else {
		if err := idx.IndexCards(context.Background(), snap.Corpus.Cards()); err != nil {
			logger.Warn("suggest indexing failed", zap.Error(err))
			_ = idx.Close()
		} else {
			suggestIdx = idx
		}
	}

	logger.Info("components initialized",
		zap.Int("cards", snap.Corpus.Len()),
		zap.Int("dimensions", snap.Dim),
		zap.Bool("resolution_cache", cache != nil),
		zap.Bool("suggest_index", suggestIdx != nil),
	)

	return &Components{
		Source:  source,
		Cache:   cache,
		Engine:  engine,
		Suggest: suggestIdx,
		logger:  logger,
	}, nil
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the
// query to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so "oracle search \"shock\"
// -limit 5" would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseColors splits a comma-separated color selection into symbols.
// Returns nil for an empty string (meaning every color plus colorless) and an
// empty non-nil slice for "none".
func parseColors(raw string) []string {
	if raw == "" {
		return nil
	}
	if strings.EqualFold(raw, "none") {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	colors := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			colors = append(colors, strings.ToUpper(p))
		}
	}
	return colors
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: oracle search [flags] <card name>\n\n")
	fmt.Fprintf(fs.Output(), "The card name is all remaining arguments joined by spaces. Misspellings are tolerated; the name is resolved through Scryfall fuzzy matching.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  oracle search lightning bolt
  oracle search "Lightning Bolt"            # same as above
  oracle search -colors R,G lightning bolt  # only red or green results
  oracle search -colors C sol ring          # colorless results only
  oracle search -min-score 0.6 -limit 5 counterspell
  oracle search -output json shock          # structured JSON for other apps
`)
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	colorsFlag := fs.String("colors", "", "comma-separated color identity filter (W,U,B,R,G,C), empty = all, \"none\" = nothing")
	limit := fs.Int("limit", 0, "number of results (0 = server default)")
	minScore := fs.Float64("min-score", 0, "minimum similarity score (0 = server default, negative = no floor)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query:    queryStr,
		Colors:   parseColors(*colorsFlag),
		Limit:    *limit,
		MinScore: *minScore,
	}

	response, err := searchViaHTTP(*serverURL, searchQuery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if response.Outcome != models.OutcomeResults && response.Outcome != models.OutcomeEmpty && format == cli.OutputText {
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	// Unresolved and unavailable outcomes come back as 404/502 with a full
	// response body; only statuses without one are errors here.
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound, http.StatusBadGateway:
	default:
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if response.Outcome == "" {
		return nil, fmt.Errorf("server returned %d without an outcome", resp.StatusCode)
	}
	return &response, nil
}

func runSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	limit := fs.Int("limit", 10, "number of suggestions")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: oracle suggest [flags] <partial name>")
		os.Exit(1)
	}
	q := buildSearchQuery(fs.Args())

	u := fmt.Sprintf("%s/api/v1/suggest?q=%s&limit=%d", *serverURL, url.QueryEscape(q), *limit)
	resp, err := http.Get(u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Suggest failed: server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var payload struct {
		Query       string               `json:"query"`
		Suggestions []suggest.Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
		os.Exit(1)
	}
	if len(payload.Suggestions) == 0 {
		fmt.Printf("No suggestions for %q\n", q)
		return
	}
	for _, s := range payload.Suggestions {
		fmt.Println(s.Name)
	}
}

func runFetch() {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	force := fs.Bool("force", false, "re-download even when cached files exist")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if !*force {
		if missing := dataset.Missing(cfg.Dataset.CacheDir); len(missing) == 0 {
			fmt.Println("Dataset already cached; use -force to re-download.")
			return
		}
	}
	if err := dataset.Fetch(context.Background(), cfg.Dataset.BaseURL, cfg.Dataset.CacheDir, *force, true); err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Dataset cached in %s\n", cfg.Dataset.CacheDir)
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Status            string `json:"status"`
	CorpusSize        int    `json:"corpus_size"`
	Dimensions        int    `json:"dimensions"`
	LoadedAt          string `json:"loaded_at"`
	CachedResolutions int64  `json:"cached_resolutions"`
	SuggestIndexSize  uint64 `json:"suggest_index_size"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Status failed: server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("status:              %s\n", status.Status)
		fmt.Printf("corpus_size:         %d   # cards with embeddings\n", status.CorpusSize)
		fmt.Printf("dimensions:          %d\n", status.Dimensions)
		if status.LoadedAt != "" {
			fmt.Printf("loaded_at:           %s\n", status.LoadedAt)
		}
		fmt.Printf("cached_resolutions:  %d\n", status.CachedResolutions)
		fmt.Printf("suggest_index_size:  %d\n", status.SuggestIndexSize)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mtg-oracle - Semantic similarity search for Magic cards

Usage:
  oracle server [flags]           Start the HTTP server
  oracle search [flags] <name>    Find cards similar to a card
  oracle suggest [flags] <text>   Suggest card names for a partial query
  oracle fetch [flags]            Download the embeddings dataset
  oracle status [flags]           Show dataset and cache status
  oracle version                  Show version
  oracle help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/mtg-oracle/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --server string      Server URL (default: http://localhost:8080)
  --colors string      Comma-separated color filter from W,U,B,R,G,C. Empty = all, "none" = nothing.
  --limit int          Number of results (0 = server default)
  --min-score float    Minimum similarity (0 = server default, negative = no floor)
  --output string      Output format: text or json (default: text)

Fetch Flags:
  --config string    Config file path
  --force            Re-download even when cached files exist

Examples:
  oracle server
  oracle fetch
  oracle search lightning bolt
  oracle search -colors U,C "sol ring"
  oracle search -output json shock
  oracle suggest counter
  oracle status --output json`)
}
