package config

import (
	"os"
	"path/filepath"
	"testing"
)

// Load / Defaults

func TestLoadReturnsDefaults(t *testing.T) {
	// Unset any env vars that would interfere
	envVars := []string{
		"ONCHAINREV_COINGECKO_BASE_URL", "ONCHAINREV_DEFILLAMA_BASE_URL",
		"ONCHAINREV_CACHE_PATH", "ONCHAINREV_UI_REFRESH_SEC",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Client defaults
	if cfg.Client.MinRequestGapMs != 2000 {
		t.Errorf("Client.MinRequestGapMs: got %d, want 2000", cfg.Client.MinRequestGapMs)
	}
	if cfg.Client.Retries != 3 {
		t.Errorf("Client.Retries: got %d, want 3", cfg.Client.Retries)
	}
	if cfg.Client.RateLimitDelayMs != 5000 {
		t.Errorf("Client.RateLimitDelayMs: got %d, want 5000", cfg.Client.RateLimitDelayMs)
	}

	// Cache defaults
	if cfg.Cache.MarketsFreshSec != 300 {
		t.Errorf("Cache.MarketsFreshSec: got %d, want 300", cfg.Cache.MarketsFreshSec)
	}
	if cfg.Cache.StablesFreshSec != 600 {
		t.Errorf("Cache.StablesFreshSec: got %d, want 600", cfg.Cache.StablesFreshSec)
	}

	// Provider defaults
	if cfg.CoinGecko.BaseURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("CoinGecko.BaseURL: got %q", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.Currency != "usd" {
		t.Errorf("CoinGecko.Currency: got %q, want %q", cfg.CoinGecko.Currency, "usd")
	}
	if cfg.CoinGecko.PageSize != 100 {
		t.Errorf("CoinGecko.PageSize: got %d, want 100", cfg.CoinGecko.PageSize)
	}
	if cfg.DefiLlama.BaseURL != "https://api.llama.fi" {
		t.Errorf("DefiLlama.BaseURL: got %q", cfg.DefiLlama.BaseURL)
	}
	if cfg.DefiLlama.TopN != 10 {
		t.Errorf("DefiLlama.TopN: got %d, want 10", cfg.DefiLlama.TopN)
	}

	// UI defaults
	if cfg.UI.Width != 1280 || cfg.UI.Height != 800 {
		t.Errorf("UI size: got %dx%d, want 1280x800", cfg.UI.Width, cfg.UI.Height)
	}
	if cfg.UI.RefreshSec != 60 {
		t.Errorf("UI.RefreshSec: got %d, want 60", cfg.UI.RefreshSec)
	}

	// Stream defaults
	if !cfg.Stream.Enabled {
		t.Error("Stream.Enabled should default to true")
	}
	if len(cfg.Stream.Symbols) == 0 {
		t.Error("Stream.Symbols should have defaults")
	}

	// News defaults
	if len(cfg.News.Feeds) == 0 {
		t.Error("News.Feeds should have defaults")
	}
}

// LoadFromFile

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
client:
  min_request_gap_ms: 1500
  retries: 5
cache:
  markets_fresh_sec: 60
coingecko:
  currency: "eur"
  page_size: 50
ui:
  refresh_sec: 30
stream:
  enabled: false
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Client.MinRequestGapMs != 1500 {
		t.Errorf("Client.MinRequestGapMs: got %d, want 1500", cfg.Client.MinRequestGapMs)
	}
	if cfg.Client.Retries != 5 {
		t.Errorf("Client.Retries: got %d, want 5", cfg.Client.Retries)
	}
	if cfg.Cache.MarketsFreshSec != 60 {
		t.Errorf("Cache.MarketsFreshSec: got %d, want 60", cfg.Cache.MarketsFreshSec)
	}
	if cfg.CoinGecko.Currency != "eur" {
		t.Errorf("CoinGecko.Currency: got %q, want %q", cfg.CoinGecko.Currency, "eur")
	}
	if cfg.CoinGecko.PageSize != 50 {
		t.Errorf("CoinGecko.PageSize: got %d, want 50", cfg.CoinGecko.PageSize)
	}
	if cfg.UI.RefreshSec != 30 {
		t.Errorf("UI.RefreshSec: got %d, want 30", cfg.UI.RefreshSec)
	}
	if cfg.Stream.Enabled {
		t.Error("Stream.Enabled should be false from file")
	}
	// Untouched values keep their defaults.
	if cfg.DefiLlama.TopN != 10 {
		t.Errorf("DefiLlama.TopN: got %d, want default 10", cfg.DefiLlama.TopN)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// Duration helpers

func TestDurationHelpers(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.Client.MinRequestGap().Milliseconds(); got != 2000 {
		t.Errorf("MinRequestGap: got %dms, want 2000ms", got)
	}
	if got := cfg.Cache.MarketsFresh().Seconds(); got != 300 {
		t.Errorf("MarketsFresh: got %fs, want 300s", got)
	}
	if got := cfg.UI.Refresh().Seconds(); got != 60 {
		t.Errorf("UI.Refresh: got %fs, want 60s", got)
	}
}

func TestStorePathDefaultsToHome(t *testing.T) {
	cfg := &Config{}
	p := cfg.StorePath()
	if p == "" {
		t.Fatal("StorePath should never be empty")
	}
	if filepath.Base(p) != "cache.json" {
		t.Errorf("unexpected store file name in %q", p)
	}

	cfg.Cache.Path = "/tmp/custom.json"
	if cfg.StorePath() != "/tmp/custom.json" {
		t.Errorf("explicit cache path ignored: %q", cfg.StorePath())
	}
}

// homeDir

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	h := homeDir()
	if h == "" {
		t.Error("homeDir() should not return empty string")
	}
}
