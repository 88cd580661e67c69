package ui

import (
	"errors"
	"testing"

	"github.com/onchainrev/terminal/pkg/models"
)

func TestSlotLatestWins(t *testing.T) {
	s := NewSlot()

	s.Publish(Snapshot{Markets: []models.MarketEntity{{ID: "old"}}})
	s.Publish(Snapshot{Markets: []models.MarketEntity{{ID: "new"}}})

	snap, ok := s.Poll()
	if !ok {
		t.Fatal("expected a pending snapshot")
	}
	if snap.Markets[0].ID != "new" {
		t.Errorf("got %q, want the later snapshot to win", snap.Markets[0].ID)
	}
	if _, ok := s.Poll(); ok {
		t.Error("slot should be empty after delivery")
	}
}

func TestSlotPollEmptyDoesNotBlock(t *testing.T) {
	s := NewSlot()
	if _, ok := s.Poll(); ok {
		t.Error("empty slot reported a snapshot")
	}
}

func TestSlotPartialPublishKeepsPendingSections(t *testing.T) {
	s := NewSlot()
	tvl := 100.0

	s.Publish(Snapshot{Chains: []models.ChainMetric{{Name: "Ethereum", TVL: &tvl}}})
	s.Publish(Snapshot{Markets: []models.MarketEntity{{ID: "bitcoin"}}})

	snap, ok := s.Poll()
	if !ok {
		t.Fatal("expected a pending snapshot")
	}
	if len(snap.Markets) != 1 || snap.Markets[0].ID != "bitcoin" {
		t.Errorf("markets = %+v", snap.Markets)
	}
	if len(snap.Chains) != 1 || snap.Chains[0].Name != "Ethereum" {
		t.Errorf("undelivered chains section was dropped: %+v", snap.Chains)
	}
}

func TestSlotNewerSectionWinsOnOverlap(t *testing.T) {
	s := NewSlot()

	s.Publish(Snapshot{Markets: []models.MarketEntity{{ID: "old"}}, Headlines: []models.Headline{{Title: "kept"}}})
	s.Publish(Snapshot{Markets: []models.MarketEntity{{ID: "new"}}})

	snap, _ := s.Poll()
	if snap.Markets[0].ID != "new" {
		t.Errorf("markets = %q, want the later publish to win", snap.Markets[0].ID)
	}
	if len(snap.Headlines) != 1 || snap.Headlines[0].Title != "kept" {
		t.Errorf("headlines = %+v", snap.Headlines)
	}
}

func TestSlotErrorPublishDoesNotErasePendingData(t *testing.T) {
	s := NewSlot()

	s.Publish(Snapshot{Markets: []models.MarketEntity{{ID: "bitcoin"}}})
	s.Publish(Snapshot{Err: errors.New("all fetches failed")})

	snap, _ := s.Poll()
	if len(snap.Markets) != 1 {
		t.Errorf("pending markets dropped: %+v", snap.Markets)
	}
	if snap.Err != nil {
		t.Errorf("error should not stand when data is present: %v", snap.Err)
	}
}
