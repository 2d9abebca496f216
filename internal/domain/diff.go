package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend classifies how a holding's worth moved since the last published snapshot.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
	TrendNew  Trend = "new"
)

func (t Trend) String() string {
	return string(t)
}

// TrendOf derives the trend from a value delta; an exact zero delta is flat.
func TrendOf(delta decimal.Decimal) Trend {
	switch delta.Sign() {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	}
	return TrendFlat
}

// DiffedHolding is a priced holding annotated with its change against the
// previously published snapshot. PreviousValueUSD and DeltaUSD are nil for
// holdings that had no prior entry (Trend == TrendNew).
type DiffedHolding struct {
	PricedHolding
	PreviousValueUSD *decimal.Decimal `json:"previous_value_usd,omitempty"`
	DeltaUSD         *decimal.Decimal `json:"delta_usd,omitempty"`
	Trend            Trend            `json:"trend"`
}

// VenueGroup holds one venue's diffed rows sorted by descending worth.
type VenueGroup struct {
	Venue    Venue           `json:"venue"`
	Holdings []DiffedHolding `json:"holdings"`
}

// DiffedSnapshot is the diff engine's output, grouped per venue for display.
type DiffedSnapshot struct {
	UserID  string       `json:"user"`
	TakenAt time.Time    `json:"taken_at"`
	Venues  []VenueGroup `json:"venues"`
}

// Empty reports whether no holdings survived filtering.
func (d *DiffedSnapshot) Empty() bool {
	for _, g := range d.Venues {
		if len(g.Holdings) > 0 {
			return false
		}
	}
	return true
}

// AllFlat reports whether every holding is unchanged. The publish gate
// suppresses rendering when this holds for a non-empty snapshot.
func (d *DiffedSnapshot) AllFlat() bool {
	for _, g := range d.Venues {
		for _, h := range g.Holdings {
			if h.Trend != TrendFlat {
				return false
			}
		}
	}
	return true
}
