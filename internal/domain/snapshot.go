package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the full set of priced holdings for one user at one point in time.
// Within a snapshot a (venue, symbol) pair appears at most once.
type Snapshot struct {
	UserID   string          `json:"user"`
	TakenAt  time.Time       `json:"taken_at"`
	Holdings []PricedHolding `json:"holdings"`
}

// Find returns the holding stored under the given key.
func (s *Snapshot) Find(key Key) (PricedHolding, bool) {
	for _, h := range s.Holdings {
		if h.Key() == key {
			return h, true
		}
	}
	return PricedHolding{}, false
}

// ByVenue groups the snapshot's holdings keeping their stored order.
func (s *Snapshot) ByVenue() map[Venue][]PricedHolding {
	grouped := make(map[Venue][]PricedHolding)
	for _, h := range s.Holdings {
		grouped[h.Venue] = append(grouped[h.Venue], h)
	}
	return grouped
}

// TotalUSD sums the worth of every resolved holding.
func (s *Snapshot) TotalUSD() decimal.Decimal {
	total := decimal.Zero
	for _, h := range s.Holdings {
		if h.Resolved {
			total = total.Add(h.ValueUSD)
		}
	}
	return total
}

// SnapshotRecord bundles a snapshot with its WAL index for streaming consumers.
type SnapshotRecord struct {
	Index    uint64
	Snapshot Snapshot
}
