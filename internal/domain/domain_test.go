package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHoldingNormalizesSymbol(t *testing.T) {
	h := NewHolding("alice", VenueBinance, "btc", decimal.NewFromInt(1))
	assert.Equal(t, "BTC", h.Symbol)
	assert.Equal(t, Key{Venue: VenueBinance, Symbol: "BTC"}, h.Key())
}

func TestTrendOf(t *testing.T) {
	tests := []struct {
		name     string
		delta    decimal.Decimal
		expected Trend
	}{
		{"positive delta", decimal.NewFromInt(10), TrendUp},
		{"negative delta", decimal.NewFromInt(-3), TrendDown},
		{"exact zero", decimal.Zero, TrendFlat},
		{"tiny positive", decimal.NewFromFloat(0.001), TrendUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrendOf(tt.delta))
		})
	}
}

func TestIsStablecoin(t *testing.T) {
	assert.True(t, IsStablecoin("USDT"))
	assert.True(t, IsStablecoin("usdc"))
	assert.False(t, IsStablecoin("BTC"))
}

func TestParseVenue(t *testing.T) {
	v, err := ParseVenue("kucoin")
	require.NoError(t, err)
	assert.Equal(t, VenueKucoin, v)

	_, err = ParseVenue("nasdaq")
	assert.Error(t, err)
}

func TestSnapshotFindAndTotal(t *testing.T) {
	snap := Snapshot{
		UserID: "alice",
		Holdings: []PricedHolding{
			NewPricedHolding(NewHolding("alice", VenueBinance, "BTC", decimal.NewFromInt(2)), decimal.NewFromInt(50000)),
			NewPricedHolding(NewHolding("alice", VenueKucoin, "ETH", decimal.NewFromInt(1)), decimal.NewFromInt(3000)),
		},
	}

	h, ok := snap.Find(Key{Venue: VenueBinance, Symbol: "BTC"})
	require.True(t, ok)
	assert.True(t, h.ValueUSD.Equal(decimal.NewFromInt(100000)))

	_, ok = snap.Find(Key{Venue: VenueBinance, Symbol: "ETH"})
	assert.False(t, ok, "same symbol on another venue is a different key")

	assert.True(t, snap.TotalUSD().Equal(decimal.NewFromInt(103000)))
}

func TestDiffedSnapshotGates(t *testing.T) {
	flat := DiffedHolding{Trend: TrendFlat}
	up := DiffedHolding{Trend: TrendUp}

	allFlat := DiffedSnapshot{Venues: []VenueGroup{{Venue: VenueBinance, Holdings: []DiffedHolding{flat, flat}}}}
	assert.True(t, allFlat.AllFlat())
	assert.False(t, allFlat.Empty())

	moved := DiffedSnapshot{Venues: []VenueGroup{{Venue: VenueBinance, Holdings: []DiffedHolding{flat, up}}}}
	assert.False(t, moved.AllFlat())

	empty := DiffedSnapshot{Venues: []VenueGroup{{Venue: VenueBinance}}}
	assert.True(t, empty.Empty())
	assert.True(t, empty.AllFlat())
}
