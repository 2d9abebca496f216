package snapshot

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/folio/internal/domain"
)

type fakeResolver struct {
	prices map[string]decimal.Decimal
}

func (f *fakeResolver) Resolve(_ context.Context, symbol string, _ domain.Venue) (decimal.Decimal, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return decimal.Zero, errors.New("price unresolved")
	}
	return price, nil
}

type fakeEquities struct {
	prices map[string]decimal.Decimal
	err    error
}

func (f *fakeEquities) Quote(_ context.Context, symbol string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	price, ok := f.prices[symbol]
	if !ok {
		return decimal.Zero, errors.New("unknown symbol")
	}
	return price, nil
}

func newTestBuilder(resolver PriceResolver, equities EquityQuoter) *Builder {
	return NewBuilder(resolver, equities, 2, zap.NewNop())
}

func holding(venue domain.Venue, symbol string, qty float64) domain.Holding {
	return domain.NewHolding("alice", venue, symbol, decimal.NewFromFloat(qty))
}

func TestBuildDustQuantityFilter(t *testing.T) {
	resolver := &fakeResolver{prices: map[string]decimal.Decimal{
		"BTC": decimal.NewFromInt(60000),
	}}
	b := newTestBuilder(resolver, &fakeEquities{})

	incoming := []domain.Holding{
		holding(domain.VenueBinance, "BTC", 0.0009),   // rounds to 0.001 at 3 decimals
		holding(domain.VenueBinance, "DUST", 0.00049), // rounds to zero
	}

	snap, err := b.Build(context.Background(), "alice", nil, incoming, CryptoScope())
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, "BTC", snap.Holdings[0].Symbol)
	assert.True(t, snap.Holdings[0].ValueUSD.Equal(decimal.NewFromFloat(54)))
}

func TestBuildStablecoinUnitRule(t *testing.T) {
	b := newTestBuilder(&fakeResolver{}, &fakeEquities{})

	incoming := []domain.Holding{
		holding(domain.VenueBinance, "USDT", 0.9),   // below one unit, dust
		holding(domain.VenueBinance, "USDC", 150.5), // pinned to 1 USD
	}

	snap, err := b.Build(context.Background(), "alice", nil, incoming, CryptoScope())
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, "USDC", snap.Holdings[0].Symbol)
	assert.True(t, snap.Holdings[0].UnitPriceUSD.Equal(decimal.NewFromInt(1)))
	assert.True(t, snap.Holdings[0].ValueUSD.Equal(decimal.NewFromFloat(150.5)))
}

func TestBuildWorthThresholdFilter(t *testing.T) {
	resolver := &fakeResolver{prices: map[string]decimal.Decimal{
		"CHEAP": decimal.NewFromFloat(0.01), // 50 * 0.01 = 0.50, below a dollar
		"ETH":   decimal.NewFromInt(3000),
	}}
	b := newTestBuilder(resolver, &fakeEquities{})

	incoming := []domain.Holding{
		holding(domain.VenueKucoin, "CHEAP", 50),
		holding(domain.VenueKucoin, "ETH", 0.5),
	}

	snap, err := b.Build(context.Background(), "alice", nil, incoming, CryptoScope())
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, "ETH", snap.Holdings[0].Symbol)
}

func TestBuildDropsUnresolvedSymbols(t *testing.T) {
	b := newTestBuilder(&fakeResolver{}, &fakeEquities{})

	snap, err := b.Build(context.Background(), "alice", nil,
		[]domain.Holding{holding(domain.VenueBinance, "GHOST", 10)}, CryptoScope())
	require.NoError(t, err)
	assert.Empty(t, snap.Holdings)
}

func TestBuildSumsDuplicateRows(t *testing.T) {
	resolver := &fakeResolver{prices: map[string]decimal.Decimal{
		"ETH": decimal.NewFromInt(3000),
	}}
	b := newTestBuilder(resolver, &fakeEquities{})

	incoming := []domain.Holding{
		holding(domain.VenueBinance, "ETH", 1),
		holding(domain.VenueBinance, "ETH", 2),
		holding(domain.VenueKucoin, "ETH", 4),
	}

	snap, err := b.Build(context.Background(), "alice", nil, incoming, CryptoScope())
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 2)
	binance, ok := snap.Find(domain.Key{Venue: domain.VenueBinance, Symbol: "ETH"})
	require.True(t, ok)
	assert.True(t, binance.Quantity.Equal(decimal.NewFromInt(3)))
	kucoin, ok := snap.Find(domain.Key{Venue: domain.VenueKucoin, Symbol: "ETH"})
	require.True(t, ok)
	assert.True(t, kucoin.Quantity.Equal(decimal.NewFromInt(4)))
}

func TestBuildCarriesOutOfScopeRows(t *testing.T) {
	resolver := &fakeResolver{prices: map[string]decimal.Decimal{
		"BTC": decimal.NewFromInt(64000),
	}}
	equities := &fakeEquities{prices: map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(210),
	}}
	b := newTestBuilder(resolver, equities)

	prev := &domain.Snapshot{
		UserID: "alice",
		Holdings: []domain.PricedHolding{
			domain.NewPricedHolding(holding(domain.VenueStock, "AAPL", 10), decimal.NewFromInt(200)),
			domain.NewPricedHolding(holding(domain.VenueBinance, "SOLD", 5), decimal.NewFromInt(100)),
		},
	}

	// crypto-only refresh: the stock row is carried and re-priced, the prior
	// crypto row is replaced by whatever the fetchers returned (nothing here)
	snap, err := b.Build(context.Background(), "alice", prev,
		[]domain.Holding{holding(domain.VenueBinance, "BTC", 1)}, CryptoScope())
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 2)

	aapl, ok := snap.Find(domain.Key{Venue: domain.VenueStock, Symbol: "AAPL"})
	require.True(t, ok)
	assert.True(t, aapl.UnitPriceUSD.Equal(decimal.NewFromInt(210)), "carried rows are re-priced")
	assert.True(t, aapl.ValueUSD.Equal(decimal.NewFromInt(2100)))

	_, ok = snap.Find(domain.Key{Venue: domain.VenueBinance, Symbol: "SOLD"})
	assert.False(t, ok, "in-scope prior rows must not leak into the new snapshot")
}

func TestBuildStockQuoteFailureKeepsPreviousPrice(t *testing.T) {
	b := newTestBuilder(&fakeResolver{}, &fakeEquities{err: errors.New("provider down")})

	prev := &domain.Snapshot{
		UserID: "alice",
		Holdings: []domain.PricedHolding{
			domain.NewPricedHolding(holding(domain.VenueStock, "MSFT", 4), decimal.NewFromInt(400)),
		},
	}

	snap, err := b.Build(context.Background(), "alice", prev, nil, CryptoScope())
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 1)
	assert.True(t, snap.Holdings[0].UnitPriceUSD.Equal(decimal.NewFromInt(400)))
}

func TestBuildStockSkipsDustFilters(t *testing.T) {
	equities := &fakeEquities{prices: map[string]decimal.Decimal{
		"PENNY": decimal.NewFromFloat(0.40),
	}}
	b := newTestBuilder(&fakeResolver{}, equities)

	snap, err := b.Build(context.Background(), "alice", nil,
		[]domain.Holding{holding(domain.VenueStock, "PENNY", 2)}, FullScope())
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 1, "stock rows bypass the worth threshold")
	assert.True(t, snap.Holdings[0].ValueUSD.Equal(decimal.NewFromFloat(0.8)))
}
