package ui

import "github.com/onchainrev/terminal/pkg/models"

// Snapshot is one immutable delivery from the data layer to the render
// loop. Nil slices mean "no change for this section".
type Snapshot struct {
	Markets   []models.MarketEntity
	Chains    []models.ChainMetric
	Headlines []models.Headline
	// Err is set when a refresh produced no usable data at all; the UI
	// shows the interrupted state only when it has nothing cached.
	Err error
}

// Slot is a single-slot mailbox between the data goroutines and the
// render loop: a publish folds into any undelivered snapshot, and the
// render loop polls without blocking at the top of each frame.
type Slot struct {
	ch chan Snapshot
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{ch: make(chan Snapshot, 1)}
}

// Publish deposits a snapshot. An undelivered predecessor is not lost;
// its sections carry over wherever the new snapshot has nothing, so a
// partial publish cannot drop a pending section from another publisher.
func (s *Slot) Publish(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case prev := <-s.ch:
			snap = mergeSnapshots(prev, snap)
		default:
		}
	}
}

// mergeSnapshots folds prev into next, newer non-nil sections winning.
// The error marker stands only while there is no data at all.
func mergeSnapshots(prev, next Snapshot) Snapshot {
	if next.Markets == nil {
		next.Markets = prev.Markets
	}
	if next.Chains == nil {
		next.Chains = prev.Chains
	}
	if next.Headlines == nil {
		next.Headlines = prev.Headlines
	}
	if next.Markets != nil || next.Chains != nil || next.Headlines != nil {
		next.Err = nil
	}
	return next
}

// Poll returns the pending snapshot, if any, without blocking.
func (s *Slot) Poll() (Snapshot, bool) {
	select {
	case snap := <-s.ch:
		return snap, true
	default:
		return Snapshot{}, false
	}
}
