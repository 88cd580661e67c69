// Package coingecko implements the market-data proxy over the CoinGecko
// REST API: paged market snapshots, category-filtered markets, and category
// aggregate stats, all served through the stale-while-revalidate cache.
//
// Every query returns cached data immediately when present and accepts an
// onUpdate callback that fires once a background refresh lands; callers
// re-render on the callback, not only on the initial return value.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/onchainrev/terminal/internal/config"
	"github.com/onchainrev/terminal/internal/infra"
	"github.com/onchainrev/terminal/pkg/models"
)

const (
	categoryCacheKey  = "cg_category_stats"
	marketCachePrefix = "cg_market_"
)

// categorySlugs maps UI category IDs to CoinGecko category slugs. Unknown
// IDs pass through unchanged.
var categorySlugs = map[string]string{
	"ai-agents":               "ai-agents",
	"artificial-intelligence": "artificial-intelligence",
	"layer-2":                 "layer-2",
	"x402-ecosystem":          "x402-ecosystem",
}

// Service is the CoinGecko market-data proxy. It shares the throttled
// client and SWR cache with the other providers; construct one per process.
type Service struct {
	client *infra.Client
	cache  *infra.SWRCache
	cfg    config.CoinGeckoConfig
	fresh  time.Duration
}

// NewService creates the proxy with injected infrastructure.
func NewService(client *infra.Client, cache *infra.SWRCache, cfg config.CoinGeckoConfig, fresh time.Duration) *Service {
	return &Service{client: client, cache: cache, cfg: cfg, fresh: fresh}
}

// BubbleQuery selects one page of the market universe.
type BubbleQuery struct {
	Limit    int
	Page     int
	Category string // optional
}

// TopMarkets returns the top-ranked assets by market cap at the standard
// page size.
func (s *Service) TopMarkets(ctx context.Context, onUpdate func([]models.MarketEntity)) ([]models.MarketEntity, error) {
	return s.MarketsPage(ctx, 1, onUpdate)
}

// MarketsPage returns one rank-range page of the market universe at the
// standard page size: page 1 covers ranks 1-100, page 2 ranks 101-200,
// and so on.
func (s *Service) MarketsPage(ctx context.Context, page int, onUpdate func([]models.MarketEntity)) ([]models.MarketEntity, error) {
	return s.BubbleMarkets(ctx, BubbleQuery{Limit: s.cfg.PageSize, Page: page}, onUpdate)
}

// CategoryMarkets returns assets filtered to a named category at the
// category table page size.
func (s *Service) CategoryMarkets(ctx context.Context, categoryID string, onUpdate func([]models.MarketEntity)) ([]models.MarketEntity, error) {
	return s.BubbleMarkets(ctx, BubbleQuery{Limit: s.cfg.CategorySize, Page: 1, Category: categoryID}, onUpdate)
}

// BubbleMarkets is the common paged market query. Cached data is returned
// synchronously; a stale entry additionally triggers a background refresh
// whose result arrives via onUpdate. With no cache at all the fetch happens
// inline and its error is surfaced.
func (s *Service) BubbleMarkets(ctx context.Context, q BubbleQuery, onUpdate func([]models.MarketEntity)) ([]models.MarketEntity, error) {
	if q.Limit <= 0 {
		q.Limit = s.cfg.PageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	slug := q.Category
	if mapped, ok := categorySlugs[slug]; ok {
		slug = mapped
	}

	reqURL := s.marketsURL(q.Limit, q.Page, slug)
	key := marketCacheKey(q.Limit, q.Page, slug)

	if raw, stale, ok := s.cache.Get(key, s.fresh); ok {
		coins, err := normalizeMarkets(raw)
		if err == nil {
			if stale {
				s.refreshMarkets(ctx, key, reqURL, onUpdate)
			}
			return coins, nil
		}
		// Cached payload no longer decodes; fall through to a live fetch.
	}

	body, err := s.client.FetchJSON(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}
	if body == nil {
		// Identical request already in flight; its completion will
		// populate the cache.
		return nil, nil
	}
	coins, err := normalizeMarkets(body)
	if err != nil {
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}
	if err := s.cache.Set(key, body); err != nil {
		return coins, fmt.Errorf("coingecko cache write: %w", err)
	}
	return coins, nil
}

// CategoriesStats returns aggregate market cap and volume per category.
func (s *Service) CategoriesStats(ctx context.Context, onUpdate func([]models.CategoryStat)) ([]models.CategoryStat, error) {
	reqURL := s.cfg.BaseURL + "/coins/categories"

	if raw, stale, ok := s.cache.Get(categoryCacheKey, s.fresh); ok {
		stats, err := normalizeCategories(raw)
		if err == nil {
			if stale {
				s.refreshCategories(ctx, reqURL, onUpdate)
			}
			return stats, nil
		}
	}

	body, err := s.client.FetchJSON(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("coingecko categories: %w", err)
	}
	if body == nil {
		return nil, nil
	}
	stats, err := normalizeCategories(body)
	if err != nil {
		return nil, fmt.Errorf("coingecko categories: %w", err)
	}
	if err := s.cache.Set(categoryCacheKey, body); err != nil {
		return stats, fmt.Errorf("coingecko cache write: %w", err)
	}
	return stats, nil
}

func (s *Service) refreshMarkets(ctx context.Context, key, reqURL string, onUpdate func([]models.MarketEntity)) {
	s.cache.Refresh(key,
		func() (json.RawMessage, error) { return s.client.FetchJSON(ctx, reqURL) },
		func(raw json.RawMessage) {
			coins, err := normalizeMarkets(raw)
			if err != nil || onUpdate == nil {
				return
			}
			onUpdate(coins)
		})
}

func (s *Service) refreshCategories(ctx context.Context, reqURL string, onUpdate func([]models.CategoryStat)) {
	s.cache.Refresh(categoryCacheKey,
		func() (json.RawMessage, error) { return s.client.FetchJSON(ctx, reqURL) },
		func(raw json.RawMessage) {
			stats, err := normalizeCategories(raw)
			if err != nil || onUpdate == nil {
				return
			}
			onUpdate(stats)
		})
}

func (s *Service) marketsURL(limit, page int, slug string) string {
	params := url.Values{}
	params.Set("vs_currency", s.cfg.Currency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "1h,24h,7d,30d,1y")
	if slug != "" {
		params.Set("category", slug)
	}
	return s.cfg.BaseURL + "/coins/markets?" + params.Encode()
}

func marketCacheKey(limit, page int, slug string) string {
	if slug == "" {
		slug = "all"
	}
	return fmt.Sprintf("%s%s_p%d_l%d", marketCachePrefix, slug, page, limit)
}

// normalizeMarkets maps the raw provider rows into MarketEntity values.
// Rows missing an ID or symbol are dropped silently.
func normalizeMarkets(raw []byte) ([]models.MarketEntity, error) {
	var coins []geckoCoin
	if err := json.Unmarshal(raw, &coins); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}
	out := make([]models.MarketEntity, 0, len(coins))
	for _, c := range coins {
		if c.ID == "" || c.Symbol == "" {
			continue
		}
		out = append(out, models.MarketEntity{
			ID:        c.ID,
			Symbol:    c.Symbol,
			Name:      c.Name,
			Image:     c.Image,
			Price:     c.CurrentPrice,
			MarketCap: c.MarketCap,
			Rank:      c.MarketCapRank,
			Volume:    c.TotalVolume,
			Change1h:  c.Change1h,
			Change24h: c.Change24h,
			Change7d:  c.Change7d,
			Change30d: c.Change30d,
			Change1y:  c.Change1y,
		})
	}
	return out, nil
}

func normalizeCategories(raw []byte) ([]models.CategoryStat, error) {
	var cats []geckoCategory
	if err := json.Unmarshal(raw, &cats); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	out := make([]models.CategoryStat, 0, len(cats))
	for _, c := range cats {
		if c.ID == "" {
			continue
		}
		out = append(out, models.CategoryStat{
			ID:        c.ID,
			Name:      c.Name,
			MarketCap: c.MarketCap,
			Volume24h: c.Volume24h,
			Content:   c.Content,
		})
	}
	return out, nil
}
