package pricer

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/folio/internal/domain"
)

const (
	priceCacheTTL   = time.Minute
	scannerMarket   = "crypto"
	cacheCleanupTTL = 5 * time.Minute
)

// Resolver walks the fallback chain for a (symbol, venue) pair. Every step
// degrades on failure; only full exhaustion yields ErrPriceUnresolved. No
// step panics or aborts a snapshot build.
type Resolver struct {
	quoters  map[domain.Venue]VenueQuoter
	registry Registry
	market   MarketData
	scanner  Scanner
	cache    *gocache.Cache
	logger   *zap.Logger
}

func NewResolver(
	quoters map[domain.Venue]VenueQuoter,
	registry Registry,
	market MarketData,
	scanner Scanner,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		quoters:  quoters,
		registry: registry,
		market:   market,
		scanner:  scanner,
		cache:    gocache.New(priceCacheTTL, cacheCleanupTTL),
		logger:   logger,
	}
}

// Resolve returns the USD unit price for the symbol. The venue is a hint: when
// the asset was seen on an exchange with a direct listing, that quote wins.
// Stablecoins are pinned to exactly 1 USD and skip the chain entirely.
func (r *Resolver) Resolve(ctx context.Context, symbol string, venue domain.Venue) (decimal.Decimal, error) {
	if domain.IsStablecoin(symbol) {
		return decimal.NewFromInt(1), nil
	}

	// the cache is keyed by symbol alone: a resolved price is the asset's USD
	// unit price, not a venue-specific one, so a hit resolved through one
	// venue's listing is valid for the same symbol held anywhere else
	if cached, ok := r.cache.Get(symbol); ok {
		return cached.(decimal.Decimal), nil
	}

	if price, ok := r.venueQuote(ctx, symbol, venue); ok {
		r.cache.SetDefault(symbol, price)
		return price, nil
	}

	if price, ok := r.registryPrice(ctx, symbol); ok {
		r.cache.SetDefault(symbol, price)
		return price, nil
	}

	if price, ok := r.scannerPrice(ctx, symbol); ok {
		r.cache.SetDefault(symbol, price)
		return price, nil
	}

	return decimal.Zero, errors.Wrapf(ErrPriceUnresolved, "symbol %s", symbol)
}

func (r *Resolver) venueQuote(ctx context.Context, symbol string, venue domain.Venue) (decimal.Decimal, bool) {
	quoter, ok := r.quoters[venue]
	if !ok {
		return decimal.Zero, false
	}

	price, err := quoter.Quote(ctx, symbol)
	if err != nil {
		r.logger.Warn("venue quote failed",
			zap.String("symbol", symbol),
			zap.String("venue", venue.String()),
			zap.Error(err))
		return decimal.Zero, false
	}
	// zero signals "no listing on this venue"
	return price, price.IsPositive()
}

// registryPrice looks the symbol up in the identifier registry and queries
// market data for the best match. An ambiguous ticker is disambiguated by the
// largest reported USD trading volume; if no candidate reports a volume the
// step fails.
func (r *Resolver) registryPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	ids, err := r.registry.Lookup(ctx, symbol)
	if err != nil {
		r.logger.Warn("registry lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return decimal.Zero, false
	}
	if len(ids) == 0 {
		return decimal.Zero, false
	}

	if len(ids) == 1 {
		quote, err := r.market.MarketData(ctx, ids[0])
		if err != nil {
			r.logger.Warn("market data failed",
				zap.String("symbol", symbol), zap.String("id", ids[0]), zap.Error(err))
			return decimal.Zero, false
		}
		return quote.PriceUSD, quote.PriceUSD.IsPositive()
	}

	bestVolume := decimal.Zero
	bestPrice := decimal.Zero
	found := false
	for _, id := range ids {
		quote, err := r.market.MarketData(ctx, id)
		if err != nil {
			r.logger.Warn("market data failed",
				zap.String("symbol", symbol), zap.String("id", id), zap.Error(err))
			continue
		}
		if quote.VolumeUSD.GreaterThan(bestVolume) {
			bestVolume = quote.VolumeUSD
			bestPrice = quote.PriceUSD
			found = true
		}
	}
	return bestPrice, found && bestPrice.IsPositive()
}

func (r *Resolver) scannerPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	if r.scanner == nil {
		return decimal.Zero, false
	}

	data, err := r.scanner.Scan(ctx, symbol, scannerMarket)
	if err != nil {
		r.logger.Warn("scanner fallback failed", zap.String("symbol", symbol), zap.Error(err))
		return decimal.Zero, false
	}
	if len(data) == 0 {
		return decimal.Zero, false
	}
	return data[0], data[0].IsPositive()
}
