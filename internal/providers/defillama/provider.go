// Package defillama implements the on-chain aggregation service over the
// DeFiLlama APIs: top chains and protocols by TVL, stablecoins by
// circulating value, and per-chain volume/revenue totals accumulated from
// protocol-level records.
//
// Unlike the market proxy, these queries fail loudly: on fetch or parse
// error the call returns an error and callers render an explicit error
// state, so "no data yet" stays distinguishable from "fetch failed".
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/onchainrev/terminal/internal/config"
	"github.com/onchainrev/terminal/internal/infra"
	"github.com/onchainrev/terminal/pkg/models"
)

const (
	chainsCacheKey  = "dl_chains"
	protosCacheKey  = "dl_protocols"
	stablesCacheKey = "dl_stables"
	volumesCacheKey = "dl_volumes"
	feesCacheKey    = "dl_fees"
)

// Service is the DeFiLlama aggregation service.
type Service struct {
	client  *infra.Client
	cache   *infra.SWRCache
	cfg     config.DefiLlamaConfig
	fresh   time.Duration
	stables time.Duration
}

// NewService creates the aggregation service with injected infrastructure.
// fresh applies to chain/protocol data, stablesFresh to the slower-moving
// stablecoin list.
func NewService(client *infra.Client, cache *infra.SWRCache, cfg config.DefiLlamaConfig, fresh, stablesFresh time.Duration) *Service {
	return &Service{client: client, cache: cache, cfg: cfg, fresh: fresh, stables: stablesFresh}
}

// TopChains returns the top chains by TVL.
func (s *Service) TopChains(ctx context.Context) ([]models.ChainMetric, error) {
	var out []models.ChainMetric
	err := s.cached(ctx, chainsCacheKey, s.fresh, s.cfg.BaseURL+"/v2/chains", &out, func(raw []byte) (any, error) {
		var chains []llamaChain
		if err := json.Unmarshal(raw, &chains); err != nil {
			return nil, err
		}
		rows := make([]models.ChainMetric, 0, len(chains))
		for _, c := range chains {
			if excludedChainName(c.Name) {
				continue
			}
			tvl := c.TVL
			rows = append(rows, models.ChainMetric{
				Name:     c.Name,
				TVL:      &tvl,
				Change1d: c.Change1d,
				Change7d: c.Change7d,
			})
		}
		sortDescStable(rows, func(m models.ChainMetric) float64 { return deref(m.TVL) })
		return truncate(rows, s.topN()), nil
	})
	return out, err
}

// TopProtocols returns the top protocols by TVL, excluding CEX listings and
// child protocols that would double-count their parent.
func (s *Service) TopProtocols(ctx context.Context) ([]models.Protocol, error) {
	var out []models.Protocol
	err := s.cached(ctx, protosCacheKey, s.fresh, s.cfg.BaseURL+"/protocols", &out, func(raw []byte) (any, error) {
		var protos []llamaProtocol
		if err := json.Unmarshal(raw, &protos); err != nil {
			return nil, err
		}
		rows := make([]models.Protocol, 0, len(protos))
		for _, p := range protos {
			if excludedProtocol(p.Category) || p.ParentProtocol != "" {
				continue
			}
			rows = append(rows, models.Protocol{
				Name:     p.Name,
				Category: p.Category,
				TVL:      p.TVL,
				Change1d: p.Change1d,
				Change7d: p.Change7d,
			})
		}
		sortDescStable(rows, func(p models.Protocol) float64 { return p.TVL })
		return truncate(rows, s.topN()), nil
	})
	return out, err
}

// TopStablecoins returns the top pegged assets by circulating USD value.
func (s *Service) TopStablecoins(ctx context.Context) ([]models.Stablecoin, error) {
	var out []models.Stablecoin
	err := s.cached(ctx, stablesCacheKey, s.stables, s.cfg.StablesBaseURL+"/stablecoins", &out, func(raw []byte) (any, error) {
		var resp llamaStablecoins
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
		rows := make([]models.Stablecoin, 0, len(resp.PeggedAssets))
		for _, a := range resp.PeggedAssets {
			rows = append(rows, models.Stablecoin{
				Name:        a.Name,
				Symbol:      a.Symbol,
				Circulating: a.Circulating.PeggedUSD,
				Change1d:    a.Change1d,
				Change7d:    a.Change7d,
			})
		}
		sortDescStable(rows, func(sc models.Stablecoin) float64 { return sc.Circulating })
		return truncate(rows, s.topN()), nil
	})
	return out, err
}

// ChainsByVolume returns per-chain 24h DEX volume totals accumulated from
// protocol-level records.
func (s *Service) ChainsByVolume(ctx context.Context) ([]models.ChainMetric, error) {
	var out []models.ChainMetric
	url := s.cfg.BaseURL + "/overview/dexs?excludeTotalDataChart=true&excludeTotalDataChartBreakdown=true"
	err := s.cached(ctx, volumesCacheKey, s.fresh, url, &out, func(raw []byte) (any, error) {
		var resp llamaOverview
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
		totals := accumulateByChain(resp.Protocols, func(p llamaOverviewProtocol) float64 { return p.Total24h })
		rows := make([]models.ChainMetric, 0, len(totals.order))
		for _, name := range totals.order {
			v := totals.sums[name]
			rows = append(rows, models.ChainMetric{Name: name, Volume24h: &v})
		}
		sortDescStable(rows, func(m models.ChainMetric) float64 { return deref(m.Volume24h) })
		return truncate(rows, s.topN()), nil
	})
	return out, err
}

// ChainsByRevenue returns per-chain fee revenue totals (24h/7d/30d)
// accumulated from protocol-level records.
func (s *Service) ChainsByRevenue(ctx context.Context) ([]models.ChainMetric, error) {
	var out []models.ChainMetric
	url := s.cfg.BaseURL + "/overview/fees?excludeTotalDataChart=true&excludeTotalDataChartBreakdown=true&dataType=dailyRevenue"
	err := s.cached(ctx, feesCacheKey, s.fresh, url, &out, func(raw []byte) (any, error) {
		var resp llamaOverview
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
		day := accumulateByChain(resp.Protocols, func(p llamaOverviewProtocol) float64 { return p.Total24h })
		week := accumulateByChain(resp.Protocols, func(p llamaOverviewProtocol) float64 { return p.Total7d })
		month := accumulateByChain(resp.Protocols, func(p llamaOverviewProtocol) float64 { return p.Total30d })

		rows := make([]models.ChainMetric, 0, len(day.order))
		for _, name := range day.order {
			r24 := day.sums[name]
			r7 := week.sums[name]
			r30 := month.sums[name]
			rows = append(rows, models.ChainMetric{
				Name:       name,
				Revenue24h: &r24,
				Revenue7d:  &r7,
				Revenue30d: &r30,
			})
		}
		sortDescStable(rows, func(m models.ChainMetric) float64 { return deref(m.Revenue24h) })
		return truncate(rows, s.topN()), nil
	})
	return out, err
}

// ChainOverview merges TVL, volume, and revenue figures per chain name.
// The three underlying queries run concurrently; any failure fails the
// whole call.
func (s *Service) ChainOverview(ctx context.Context) ([]models.ChainMetric, error) {
	var (
		chains   []models.ChainMetric
		volumes  []models.ChainMetric
		revenues []models.ChainMetric
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { var err error; chains, err = s.TopChains(gctx); return err })
	g.Go(func() error { var err error; volumes, err = s.ChainsByVolume(gctx); return err })
	g.Go(func() error { var err error; revenues, err = s.ChainsByRevenue(gctx); return err })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]*models.ChainMetric, len(chains))
	order := make([]string, 0, len(chains))
	for i := range chains {
		c := chains[i]
		merged[c.Name] = &c
		order = append(order, c.Name)
	}
	for _, v := range volumes {
		if m, ok := merged[v.Name]; ok {
			m.Volume24h = v.Volume24h
		}
	}
	for _, r := range revenues {
		if m, ok := merged[r.Name]; ok {
			m.Revenue24h = r.Revenue24h
			m.Revenue7d = r.Revenue7d
			m.Revenue30d = r.Revenue30d
		}
	}

	out := make([]models.ChainMetric, 0, len(order))
	for _, name := range order {
		out = append(out, *merged[name])
	}
	return out, nil
}

// cached runs one TTL-cached query: a fresh cache entry is decoded and
// returned as-is, anything else triggers a live fetch whose normalized
// result is cached and returned. dest must be a pointer to the result
// slice; normalize maps the raw body to the same type.
func (s *Service) cached(ctx context.Context, key string, fresh time.Duration, url string, dest any, normalize func([]byte) (any, error)) error {
	if raw, stale, ok := s.cache.Get(key, fresh); ok && !stale {
		if err := json.Unmarshal(raw, dest); err == nil {
			return nil
		}
	}

	body, err := s.client.FetchJSON(ctx, url)
	if err != nil {
		return fmt.Errorf("defillama %s: %w", key, err)
	}
	if body == nil {
		// De-duplicated: an identical request is already running. Serve
		// the stale entry if one exists rather than failing.
		if raw, _, ok := s.cache.Get(key, fresh); ok {
			if err := json.Unmarshal(raw, dest); err == nil {
				return nil
			}
		}
		return fmt.Errorf("defillama %s: request already in flight", key)
	}

	result, err := normalize(body)
	if err != nil {
		return fmt.Errorf("defillama %s: parse: %w", key, err)
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("defillama %s: encode: %w", key, err)
	}
	if err := s.cache.Set(key, encoded); err != nil {
		return fmt.Errorf("defillama %s: cache write: %w", key, err)
	}
	return json.Unmarshal(encoded, dest)
}

func (s *Service) topN() int {
	if s.cfg.TopN > 0 {
		return s.cfg.TopN
	}
	return 10
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
