package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onchainrev/terminal/pkg/models"
)

type fakeMarkets struct {
	coins    []models.MarketEntity
	err      error
	calls    int
	last     string
	lastPage int
}

func (f *fakeMarkets) MarketsPage(_ context.Context, page int, _ func([]models.MarketEntity)) ([]models.MarketEntity, error) {
	f.calls++
	f.last = ""
	f.lastPage = page
	return f.coins, f.err
}

func (f *fakeMarkets) CategoryMarkets(_ context.Context, id string, _ func([]models.MarketEntity)) ([]models.MarketEntity, error) {
	f.calls++
	f.last = id
	return f.coins, f.err
}

type fakeChains struct {
	chains []models.ChainMetric
	err    error
}

func (f *fakeChains) ChainOverview(_ context.Context) ([]models.ChainMetric, error) {
	return f.chains, f.err
}

func TestRefreshPublishesSnapshot(t *testing.T) {
	slot := NewSlot()
	markets := &fakeMarkets{coins: []models.MarketEntity{{ID: "bitcoin", Symbol: "BTC"}}}
	tvl := 100.0
	chains := &fakeChains{chains: []models.ChainMetric{{Name: "Ethereum", TVL: &tvl}}}

	r := NewRefresher(markets, chains, nil, slot, time.Hour)
	r.refreshOnce(context.Background())

	snap, ok := slot.Poll()
	if !ok {
		t.Fatal("no snapshot published")
	}
	if len(snap.Markets) != 1 || snap.Markets[0].ID != "bitcoin" {
		t.Errorf("markets = %+v", snap.Markets)
	}
	if len(snap.Chains) != 1 || snap.Chains[0].Name != "Ethereum" {
		t.Errorf("chains = %+v", snap.Chains)
	}
	if snap.Err != nil {
		t.Errorf("unexpected error: %v", snap.Err)
	}
}

func TestRefreshPartialFailureKeepsGoodSections(t *testing.T) {
	slot := NewSlot()
	markets := &fakeMarkets{err: errors.New("rate limited")}
	tvl := 100.0
	chains := &fakeChains{chains: []models.ChainMetric{{Name: "Ethereum", TVL: &tvl}}}

	r := NewRefresher(markets, chains, nil, slot, time.Hour)
	r.refreshOnce(context.Background())

	snap, ok := slot.Poll()
	if !ok {
		t.Fatal("no snapshot published")
	}
	if snap.Err != nil {
		t.Errorf("partial failure should not flag the snapshot: %v", snap.Err)
	}
	if len(snap.Chains) != 1 {
		t.Errorf("healthy section dropped: %+v", snap.Chains)
	}
	if snap.Markets != nil {
		t.Errorf("failed section should stay nil, got %+v", snap.Markets)
	}
}

func TestRefreshTotalFailureFlagsError(t *testing.T) {
	slot := NewSlot()
	markets := &fakeMarkets{err: errors.New("down")}
	chains := &fakeChains{err: errors.New("down")}

	r := NewRefresher(markets, chains, nil, slot, time.Hour)
	r.refreshOnce(context.Background())

	snap, ok := slot.Poll()
	if !ok {
		t.Fatal("no snapshot published")
	}
	if snap.Err == nil {
		t.Error("total failure should publish an error snapshot")
	}
}

func TestRefreshCategorySwitch(t *testing.T) {
	slot := NewSlot()
	markets := &fakeMarkets{coins: []models.MarketEntity{{ID: "x", Symbol: "X"}}}
	chains := &fakeChains{}

	r := NewRefresher(markets, chains, nil, slot, time.Hour)
	r.refreshOnce(context.Background())
	if markets.last != "" {
		t.Errorf("default universe should be top markets, got %q", markets.last)
	}

	r.SetCategory("ai-agents")
	r.refreshOnce(context.Background())
	if markets.last != "ai-agents" {
		t.Errorf("category = %q, want ai-agents", markets.last)
	}
}

func TestRefreshPageSelection(t *testing.T) {
	slot := NewSlot()
	markets := &fakeMarkets{coins: []models.MarketEntity{{ID: "x", Symbol: "X"}}}
	chains := &fakeChains{}

	r := NewRefresher(markets, chains, nil, slot, time.Hour)
	r.refreshOnce(context.Background())
	if markets.lastPage != 1 {
		t.Errorf("default page = %d, want 1", markets.lastPage)
	}

	r.SetPage(3)
	if r.Page() != 3 {
		t.Errorf("Page() = %d, want 3", r.Page())
	}
	r.refreshOnce(context.Background())
	if markets.lastPage != 3 {
		t.Errorf("page = %d, want 3", markets.lastPage)
	}

	select {
	case <-r.kick:
	default:
		t.Error("SetPage should request an immediate refresh")
	}
}

func TestSetPageClampsAndResets(t *testing.T) {
	r := NewRefresher(&fakeMarkets{}, &fakeChains{}, nil, NewSlot(), time.Hour)

	r.SetPage(0)
	if r.Page() != 1 {
		t.Errorf("page below range should clamp to 1, got %d", r.Page())
	}
	r.SetPage(99)
	if r.Page() != maxMarketPage {
		t.Errorf("page above range should clamp to %d, got %d", maxMarketPage, r.Page())
	}

	r.SetCategory("layer-2")
	if r.Page() != 1 {
		t.Errorf("category switch should reset the page, got %d", r.Page())
	}
}

func TestRefreshRunStopsOnCancel(t *testing.T) {
	slot := NewSlot()
	r := NewRefresher(&fakeMarkets{}, &fakeChains{}, nil, slot, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
