package snapshot

import (
	"sort"

	"github.com/vadiminshakov/folio/internal/domain"
)

// Diff compares a freshly built snapshot against the previously published one
// and classifies every holding's move. It is a pure function: identical inputs
// always produce identical output.
//
// Keys come from the new snapshot only. A row that fell out since the last
// publish (dust, threshold, sold off) simply disappears from the result.
func Diff(latest, prev domain.Snapshot) domain.DiffedSnapshot {
	grouped := latest.ByVenue()

	groups := make([]domain.VenueGroup, 0, len(grouped))
	for _, venue := range domain.AllVenues() {
		holdings, ok := grouped[venue]
		if !ok {
			continue
		}

		rows := make([]domain.DiffedHolding, 0, len(holdings))
		for _, h := range holdings {
			row := domain.DiffedHolding{PricedHolding: h, Trend: domain.TrendNew}

			if old, ok := prev.Find(h.Key()); ok && old.Resolved && h.Resolved {
				previous := old.ValueUSD
				delta := h.ValueUSD.Sub(old.ValueUSD)
				row.PreviousValueUSD = &previous
				row.DeltaUSD = &delta
				row.Trend = domain.TrendOf(delta)
			}
			rows = append(rows, row)
		}

		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ValueUSD.GreaterThan(rows[j].ValueUSD)
		})
		groups = append(groups, domain.VenueGroup{Venue: venue, Holdings: rows})
	}

	return domain.DiffedSnapshot{
		UserID:  latest.UserID,
		TakenAt: latest.TakenAt,
		Venues:  groups,
	}
}
