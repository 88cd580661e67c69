package ui

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/onchainrev/terminal/pkg/models"
)

// marketSource is the slice of the market provider the refresher needs.
type marketSource interface {
	MarketsPage(ctx context.Context, page int, onUpdate func([]models.MarketEntity)) ([]models.MarketEntity, error)
	CategoryMarkets(ctx context.Context, categoryID string, onUpdate func([]models.MarketEntity)) ([]models.MarketEntity, error)
}

// chainSource supplies the aggregated per-chain economics.
type chainSource interface {
	ChainOverview(ctx context.Context) ([]models.ChainMetric, error)
}

// headlineSource supplies the news strip.
type headlineSource interface {
	Headlines(ctx context.Context, onUpdate func([]models.Headline)) ([]models.Headline, error)
}

// Refresher periodically pulls every data section and publishes snapshots
// into the slot. It owns all I/O; the render loop never fetches.
type Refresher struct {
	markets  marketSource
	chains   chainSource
	news     headlineSource
	slot     *Slot
	interval time.Duration

	mu       sync.Mutex
	category string // "" means top markets
	page     int    // rank-range page, applies when category is ""
	kick     chan struct{}
}

// maxMarketPage bounds the rank-range selector; page 5 ends at rank 500.
const maxMarketPage = 5

// NewRefresher wires the data services to a snapshot slot.
func NewRefresher(markets marketSource, chains chainSource, news headlineSource, slot *Slot, interval time.Duration) *Refresher {
	return &Refresher{
		markets:  markets,
		chains:   chains,
		news:     news,
		slot:     slot,
		interval: interval,
		page:     1,
		kick:     make(chan struct{}, 1),
	}
}

// SetCategory switches the market universe and triggers an immediate
// refresh. Empty means the overall top list; the rank-range page resets.
func (r *Refresher) SetCategory(id string) {
	r.mu.Lock()
	r.category = id
	r.page = 1
	r.mu.Unlock()
	r.Kick()
}

// SetPage selects the rank-range page of the overall market list and
// triggers an immediate refresh. Values clamp to [1, maxMarketPage].
func (r *Refresher) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	if p > maxMarketPage {
		p = maxMarketPage
	}
	r.mu.Lock()
	changed := r.page != p
	r.page = p
	r.mu.Unlock()
	if changed {
		r.Kick()
	}
}

// Page reports the current rank-range page.
func (r *Refresher) Page() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page
}

// Kick requests an out-of-band refresh (manual retry).
func (r *Refresher) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run refreshes immediately, then on every tick or kick, until ctx is
// cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refreshOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		case <-r.kick:
			r.refreshOnce(ctx)
		}
	}
}

// refreshOnce pulls all sections concurrently and publishes whatever
// arrived. Stale-while-revalidate callbacks publish again when background
// refreshes land. Only a refresh yielding nothing at all publishes an
// error snapshot.
func (r *Refresher) refreshOnce(ctx context.Context) {
	r.mu.Lock()
	category := r.category
	page := r.page
	r.mu.Unlock()

	var snap Snapshot
	var mu sync.Mutex

	// A failed section must not cancel the others, so no group context.
	var g errgroup.Group
	gctx := ctx

	g.Go(func() error {
		onUpdate := func(next []models.MarketEntity) {
			r.slot.Publish(Snapshot{Markets: next})
		}
		var (
			coins []models.MarketEntity
			err   error
		)
		if category == "" {
			coins, err = r.markets.MarketsPage(gctx, page, onUpdate)
		} else {
			coins, err = r.markets.CategoryMarkets(gctx, category, onUpdate)
		}
		if err != nil {
			log.Printf("refresh: markets: %v", err)
			return err
		}
		mu.Lock()
		snap.Markets = coins
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		chains, err := r.chains.ChainOverview(gctx)
		if err != nil {
			log.Printf("refresh: chains: %v", err)
			return err
		}
		mu.Lock()
		snap.Chains = chains
		mu.Unlock()
		return nil
	})

	if r.news != nil {
		g.Go(func() error {
			items, err := r.news.Headlines(gctx, func(next []models.Headline) {
				r.slot.Publish(Snapshot{Headlines: next})
			})
			if err != nil {
				log.Printf("refresh: news: %v", err)
				return err
			}
			mu.Lock()
			snap.Headlines = items
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if snap.Markets == nil && snap.Chains == nil && snap.Headlines == nil {
		snap.Err = err
	}
	r.slot.Publish(snap)
}
