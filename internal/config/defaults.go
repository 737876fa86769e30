package config

// Dataset artifact defaults matching the published release.
const (
	DefaultDatasetBaseURL = "https://github.com/cfle/mtg_oracle/releases/download/v1.0"
	DefaultScryfallURL    = "https://api.scryfall.com"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Dataset.CacheDir == "" {
		cfg.Dataset.CacheDir = ".mtg-oracle/cache"
	}
	if cfg.Dataset.BaseURL == "" {
		cfg.Dataset.BaseURL = DefaultDatasetBaseURL
	}
	if cfg.Scryfall.BaseURL == "" {
		cfg.Scryfall.BaseURL = DefaultScryfallURL
	}
	if cfg.Scryfall.TimeoutSeconds == 0 {
		cfg.Scryfall.TimeoutSeconds = 10
	}
	if cfg.Scryfall.UserAgent == "" {
		cfg.Scryfall.UserAgent = "mtg-oracle/1.0"
	}
	if cfg.Scryfall.CacheTTLHours == 0 {
		cfg.Scryfall.CacheTTLHours = 24
	}
	if cfg.Search.TopKCandidates == 0 {
		cfg.Search.TopKCandidates = 200
	}
	if cfg.Search.MinScore == 0 {
		cfg.Search.MinScore = 0.4
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Storage.ResolutionsDBPath == "" {
		cfg.Storage.ResolutionsDBPath = ".mtg-oracle/resolutions.db"
	}
	if cfg.Storage.SuggestIndexPath == "" {
		cfg.Storage.SuggestIndexPath = ".mtg-oracle/suggest.bleve"
	}
}
