// onchainrev terminal: a desktop dashboard for crypto market structure.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/onchainrev/terminal/internal/config"
	"github.com/onchainrev/terminal/internal/infra"
	"github.com/onchainrev/terminal/internal/matrix"
	"github.com/onchainrev/terminal/internal/news"
	"github.com/onchainrev/terminal/internal/providers/coingecko"
	"github.com/onchainrev/terminal/internal/providers/defillama"
	"github.com/onchainrev/terminal/internal/stream"
	"github.com/onchainrev/terminal/internal/ui"
	"github.com/onchainrev/terminal/internal/watchlist"
	"github.com/onchainrev/terminal/pkg/models"
	"github.com/onchainrev/terminal/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	// .env is optional; real deployments use the config file or env vars.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "onchainrev",
	Short: "onchainrev - crypto market structure terminal",
	Long: `onchainrev terminal
A desktop dashboard for crypto market structure: a force-directed bubble
map of price action, a capital-efficiency matrix of chains, and a
research table over aggregated on-chain economics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(marketsCmd)
	rootCmd.AddCommand(chainsCmd)
	rootCmd.AddCommand(protocolsCmd)
	rootCmd.AddCommand(stablesCmd)
}

// services bundles everything the commands share.
type services struct {
	store infra.Store
	cache *infra.SWRCache
	gecko *coingecko.Service
	llama *defillama.Service
	news  *news.Service
	pins  *watchlist.PinnedSet
}

func buildServices() (*services, error) {
	store, err := infra.OpenFileStore(cfg.StorePath())
	if err != nil {
		return nil, err
	}
	cache := infra.NewSWRCache(store)
	client := infra.NewClient(infra.ClientConfig{
		MinRequestGap:  cfg.Client.MinRequestGap(),
		Retries:        cfg.Client.Retries,
		RetryDelay:     time.Duration(cfg.Client.RetryDelayMs) * time.Millisecond,
		RateLimitDelay: time.Duration(cfg.Client.RateLimitDelayMs) * time.Millisecond,
		Timeout:        time.Duration(cfg.Client.TimeoutSec) * time.Second,
	})

	svc := &services{
		store: store,
		cache: cache,
		gecko: coingecko.NewService(client, cache, cfg.CoinGecko, cfg.Cache.MarketsFresh()),
		llama: defillama.NewService(client, cache, cfg.DefiLlama, cfg.Cache.ChainsFresh(), cfg.Cache.StablesFresh()),
		news:  news.NewService(cache, cfg.News, cfg.Cache.NewsFresh()),
		pins:  watchlist.Load(store),
	}

	if cfg.Watchlist.SeedFile != "" {
		ids, err := watchlist.LoadSeed(cfg.Watchlist.SeedFile)
		if err != nil {
			log.Printf("watchlist seed %s: %v", cfg.Watchlist.SeedFile, err)
		} else {
			svc.pins.Seed(ids)
		}
	}
	return svc, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("onchainrev %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Dashboard Command ---

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the graphical dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}

		slot := ui.NewSlot()
		refresher := ui.NewRefresher(svc.gecko, svc.llama, svc.news, slot, cfg.UI.Refresh())
		if category, _ := cmd.Flags().GetString("category"); category != "" {
			refresher.SetCategory(category)
		}

		var streamClient *stream.Client
		if cfg.Stream.Enabled {
			streamClient = stream.NewClient(cfg.Stream)
		}

		app, err := ui.NewApp(*cfg, refresher, slot, svc.pins, streamClient)
		if err != nil {
			return err
		}
		return app.Run()
	},
}

func init() {
	dashboardCmd.Flags().String("category", "", "restrict the bubble map to a category (e.g. ai-agents)")
}

// --- Markets Command ---

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Print the top market entities",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}

		category, _ := cmd.Flags().GetString("category")
		page, _ := cmd.Flags().GetInt("page")
		var coins []models.MarketEntity
		if category == "" {
			coins, err = svc.gecko.MarketsPage(cmd.Context(), page, nil)
		} else {
			coins, err = svc.gecko.CategoryMarkets(cmd.Context(), category, nil)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%-4s %-8s %-24s %14s %12s %10s\n", "#", "SYMBOL", "NAME", "PRICE", "MCAP", "24H")
		for _, c := range coins {
			change, _ := c.Change("24h")
			fmt.Printf("%-4d %-8s %-24s %14s %12s %10s\n",
				c.Rank, c.Symbol, truncateName(c.Name, 24),
				utils.FormatPrice(c.Price), utils.FormatUSD(c.MarketCap), utils.FormatPct(change))
		}
		return nil
	},
}

func init() {
	marketsCmd.Flags().String("category", "", "category slug (e.g. ai-agents, layer-2)")
	marketsCmd.Flags().Int("page", 1, "rank-range page (1 = ranks 1-100, 2 = 101-200, ...)")
}

// --- Chains Command ---

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "Print aggregated chain economics",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		chains, err := svc.llama.ChainOverview(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%-16s %12s %12s %12s %10s\n", "CHAIN", "TVL", "VOL 24H", "REV 24H", "EFF %")
		for _, c := range chains {
			tvl := 0.0
			if c.TVL != nil {
				tvl = *c.TVL
			}
			eff := "-"
			if c.Revenue24h != nil {
				eff = fmt.Sprintf("%.2f", matrix.Efficiency(tvl, *c.Revenue24h))
			}
			fmt.Printf("%-16s %12s %12s %12s %10s\n",
				c.Name, utils.FormatUSD(tvl), optUSD(c.Volume24h), optUSD(c.Revenue24h), eff)
		}
		return nil
	},
}

// --- Protocols Command ---

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "Print the top DeFi protocols by TVL",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		protocols, err := svc.llama.TopProtocols(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%-28s %-18s %12s %10s\n", "PROTOCOL", "CATEGORY", "TVL", "7D")
		for _, p := range protocols {
			fmt.Printf("%-28s %-18s %12s %10s\n",
				truncateName(p.Name, 28), p.Category, utils.FormatUSD(p.TVL), optPct(p.Change7d))
		}
		return nil
	},
}

// --- Stables Command ---

var stablesCmd = &cobra.Command{
	Use:   "stables",
	Short: "Print the top stablecoins by circulating supply",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		stables, err := svc.llama.TopStablecoins(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%-24s %-8s %14s\n", "STABLECOIN", "SYMBOL", "CIRCULATING")
		for _, s := range stables {
			fmt.Printf("%-24s %-8s %14s\n", truncateName(s.Name, 24), s.Symbol, utils.FormatUSD(s.Circulating))
		}
		return nil
	},
}

// --- helpers ---

func truncateName(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func optUSD(v *float64) string {
	if v == nil {
		return "-"
	}
	return utils.FormatUSD(*v)
}

func optPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return utils.FormatPct(*v)
}
