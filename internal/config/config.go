// Package config handles configuration loading for the OnchainRev terminal.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Client    ClientConfig    `mapstructure:"client"    yaml:"client"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko" yaml:"coingecko"`
	DefiLlama DefiLlamaConfig `mapstructure:"defillama" yaml:"defillama"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Stream    StreamConfig    `mapstructure:"stream"    yaml:"stream"`
	UI        UIConfig        `mapstructure:"ui"        yaml:"ui"`
	Watchlist WatchlistConfig `mapstructure:"watchlist" yaml:"watchlist"`
}

// ClientConfig tunes the shared throttled HTTP client.
type ClientConfig struct {
	MinRequestGapMs  int `mapstructure:"min_request_gap_ms"  yaml:"min_request_gap_ms"`
	Retries          int `mapstructure:"retries"             yaml:"retries"`
	RetryDelayMs     int `mapstructure:"retry_delay_ms"      yaml:"retry_delay_ms"`
	RateLimitDelayMs int `mapstructure:"rate_limit_delay_ms" yaml:"rate_limit_delay_ms"`
	TimeoutSec       int `mapstructure:"timeout_sec"         yaml:"timeout_sec"`
}

// CacheConfig holds the on-device store location and freshness thresholds.
type CacheConfig struct {
	Path            string `mapstructure:"path"              yaml:"path"`              // store file path ("" = <home>/.onchainrev/cache.json)
	MarketsFreshSec int    `mapstructure:"markets_fresh_sec" yaml:"markets_fresh_sec"` // high-churn market snapshots
	ChainsFreshSec  int    `mapstructure:"chains_fresh_sec"  yaml:"chains_fresh_sec"`  // chain/protocol aggregates
	StablesFreshSec int    `mapstructure:"stables_fresh_sec" yaml:"stables_fresh_sec"`
	NewsFreshSec    int    `mapstructure:"news_fresh_sec"    yaml:"news_fresh_sec"`
}

// CoinGeckoConfig holds market-data provider settings.
type CoinGeckoConfig struct {
	BaseURL      string `mapstructure:"base_url"       yaml:"base_url"`
	Currency     string `mapstructure:"currency"       yaml:"currency"`
	PageSize     int    `mapstructure:"page_size"      yaml:"page_size"`      // bubble pages
	CategorySize int    `mapstructure:"category_size"  yaml:"category_size"`  // category tables
}

// DefiLlamaConfig holds on-chain aggregator settings.
type DefiLlamaConfig struct {
	BaseURL        string `mapstructure:"base_url"        yaml:"base_url"`
	StablesBaseURL string `mapstructure:"stables_base_url" yaml:"stables_base_url"`
	TopN           int    `mapstructure:"top_n"           yaml:"top_n"`
}

// NewsConfig lists the editorial feeds shown in the headline strip.
type NewsConfig struct {
	Feeds []string `mapstructure:"feeds" yaml:"feeds"`
	Limit int      `mapstructure:"limit" yaml:"limit"`
}

// StreamConfig holds the live ticker websocket settings.
type StreamConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	URL     string   `mapstructure:"url"     yaml:"url"`
	Symbols []string `mapstructure:"symbols" yaml:"symbols"`
}

// UIConfig holds window and refresh settings for the dashboard.
type UIConfig struct {
	Width          int `mapstructure:"width"            yaml:"width"`
	Height         int `mapstructure:"height"           yaml:"height"`
	RefreshSec     int `mapstructure:"refresh_sec"      yaml:"refresh_sec"` // periodic data refresh
	MaxBubbleCount int `mapstructure:"max_bubble_count" yaml:"max_bubble_count"`
	// FontPath points at a TTF for the dashboard; empty falls back to the
	// built-in bitmap face.
	FontPath string `mapstructure:"font_path" yaml:"font_path"`
}

// WatchlistConfig holds pinned-asset persistence settings.
type WatchlistConfig struct {
	SeedFile string `mapstructure:"seed_file" yaml:"seed_file"` // optional YAML seed, may be ""
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.onchainrev/config.yaml (home directory)
//  3. /etc/onchainrev/config.yaml (system)
//
// Environment variables override config file values.
// Format: ONCHAINREV_<SECTION>_<KEY>, e.g., ONCHAINREV_COINGECKO_BASE_URL
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".onchainrev"))
	v.AddConfigPath("/etc/onchainrev")

	v.SetEnvPrefix("ONCHAINREV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found: use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("ONCHAINREV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Shared HTTP client: the free API tiers are strict about cadence.
	v.SetDefault("client.min_request_gap_ms", 2000)
	v.SetDefault("client.retries", 3)
	v.SetDefault("client.retry_delay_ms", 2000)
	v.SetDefault("client.rate_limit_delay_ms", 5000)
	v.SetDefault("client.timeout_sec", 15)

	// Cache freshness per data kind.
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.markets_fresh_sec", 300)
	v.SetDefault("cache.chains_fresh_sec", 300)
	v.SetDefault("cache.stables_fresh_sec", 600)
	v.SetDefault("cache.news_fresh_sec", 600)

	// CoinGecko defaults
	v.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.currency", "usd")
	v.SetDefault("coingecko.page_size", 100)
	v.SetDefault("coingecko.category_size", 20)

	// DeFiLlama defaults
	v.SetDefault("defillama.base_url", "https://api.llama.fi")
	v.SetDefault("defillama.stables_base_url", "https://stablecoins.llama.fi")
	v.SetDefault("defillama.top_n", 10)

	// News defaults
	v.SetDefault("news.feeds", []string{
		"https://cointelegraph.com/rss",
		"https://www.coindesk.com/arc/outboundfeeds/rss/",
	})
	v.SetDefault("news.limit", 20)

	// Stream defaults
	v.SetDefault("stream.enabled", true)
	v.SetDefault("stream.url", "wss://stream.binance.com:9443/ws")
	v.SetDefault("stream.symbols", []string{"btcusdt", "ethusdt", "solusdt", "bnbusdt", "xrpusdt"})

	// UI defaults
	v.SetDefault("ui.width", 1280)
	v.SetDefault("ui.height", 800)
	v.SetDefault("ui.refresh_sec", 60)
	v.SetDefault("ui.max_bubble_count", 100)
	v.SetDefault("ui.font_path", "")

	// Watchlist defaults
	v.SetDefault("watchlist.seed_file", "")
}

// StorePath resolves the cache store file location.
func (c *Config) StorePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(homeDir(), ".onchainrev", "cache.json")
}

// MinRequestGap returns the client gap as a duration.
func (c *ClientConfig) MinRequestGap() time.Duration {
	return time.Duration(c.MinRequestGapMs) * time.Millisecond
}

// MarketsFresh returns the market snapshot freshness threshold.
func (c *CacheConfig) MarketsFresh() time.Duration {
	return time.Duration(c.MarketsFreshSec) * time.Second
}

// ChainsFresh returns the chain aggregate freshness threshold.
func (c *CacheConfig) ChainsFresh() time.Duration {
	return time.Duration(c.ChainsFreshSec) * time.Second
}

// StablesFresh returns the stablecoin freshness threshold.
func (c *CacheConfig) StablesFresh() time.Duration {
	return time.Duration(c.StablesFreshSec) * time.Second
}

// NewsFresh returns the headline freshness threshold.
func (c *CacheConfig) NewsFresh() time.Duration {
	return time.Duration(c.NewsFreshSec) * time.Second
}

// Refresh returns the periodic dashboard refresh interval.
func (c *UIConfig) Refresh() time.Duration {
	return time.Duration(c.RefreshSec) * time.Second
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
