// Package pricer resolves USD unit prices for assets through a cascading
// fallback chain: direct venue quote, symbol registry + market data, and a
// generic market scanner as last resort. Stablecoins short-circuit to 1 USD.
package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrPriceUnresolved is returned when every fallback step failed for a symbol.
var ErrPriceUnresolved = errors.New("price unresolved")

// VenueQuoter returns the direct USD(T) quote of a symbol on one exchange.
// A zero price means "no listing there", not a free asset.
type VenueQuoter interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Registry maps a ticker symbol to the market-data identifiers sharing it.
type Registry interface {
	Lookup(ctx context.Context, symbol string) ([]string, error)
}

// MarketQuote is one identifier's current market data.
type MarketQuote struct {
	PriceUSD  decimal.Decimal
	VolumeUSD decimal.Decimal
}

// MarketData fetches current market data for a registry identifier.
type MarketData interface {
	MarketData(ctx context.Context, id string) (MarketQuote, error)
}

// Scanner is the generic market-data fallback keyed by (symbol, market).
// It returns zero or more data points; the first one is the unit price.
type Scanner interface {
	Scan(ctx context.Context, symbol, market string) ([]decimal.Decimal, error)
}

// EquityQuoter is the single-provider quote path for stock holdings.
// Stock symbols never enter the crypto fallback chain.
type EquityQuoter interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
}
