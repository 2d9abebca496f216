package snapshot

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/folio/internal/domain"
)

// dust cutoffs: quantities rounding to zero at 3 decimals are noise, resolved
// worth under one dollar is below the display threshold, and stablecoins use
// a one-unit quantity rule instead of the 3-decimal one.
const dustScale = 3

var (
	oneUnit   = decimal.NewFromInt(1)
	oneDollar = decimal.NewFromInt(1)
)

// PriceResolver resolves a USD unit price for a crypto (symbol, venue) pair.
type PriceResolver interface {
	Resolve(ctx context.Context, symbol string, venue domain.Venue) (decimal.Decimal, error)
}

// EquityQuoter prices stock symbols; the separate non-crypto path.
type EquityQuoter interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Builder turns raw holdings into a cleaned, priced snapshot. Per-asset
// failures degrade to dropped rows; only context cancellation aborts a build.
type Builder struct {
	resolver PriceResolver
	equities EquityQuoter
	limit    int
	logger   *zap.Logger
}

func NewBuilder(resolver PriceResolver, equities EquityQuoter, concurrency int, logger *zap.Logger) *Builder {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Builder{
		resolver: resolver,
		equities: equities,
		limit:    concurrency,
		logger:   logger,
	}
}

// Build merges the incoming holdings with the out-of-scope subset of the
// previous snapshot, sums duplicate (venue, symbol) rows, applies the dust
// and worth filters, and prices the survivors. Prices resolve concurrently
// under the configured limit; the fallback chain per asset stays sequential.
func (b *Builder) Build(ctx context.Context, userID string, prev *domain.Snapshot, incoming []domain.Holding, scope Scope) (domain.Snapshot, error) {
	merged := make(map[domain.Key]decimal.Decimal)

	if prev != nil {
		for _, h := range prev.Holdings {
			if !scope.Contains(h.Venue) {
				merged[h.Key()] = merged[h.Key()].Add(h.Quantity)
			}
		}
	}
	for _, h := range incoming {
		if !scope.Contains(h.Venue) {
			// the aggregator only feeds in-scope holdings; anything else
			// would double-count against the carried rows
			continue
		}
		merged[h.Key()] = merged[h.Key()].Add(h.Quantity)
	}

	keys := make([]domain.Key, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sortKeys(keys)

	results := make([]*domain.PricedHolding, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for i, key := range keys {
		g.Go(func() error {
			holding := domain.NewHolding(userID, key.Venue, key.Symbol, merged[key])
			priced, keep, err := b.price(gctx, holding, prev)
			if err != nil {
				return err
			}
			if keep {
				results[i] = &priced
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	holdings := make([]domain.PricedHolding, 0, len(results))
	for _, priced := range results {
		if priced != nil {
			holdings = append(holdings, *priced)
		}
	}

	return domain.Snapshot{
		UserID:   userID,
		TakenAt:  time.Now().UTC(),
		Holdings: holdings,
	}, nil
}

// price applies the filter rules for one merged row and resolves its worth.
// keep == false means the row was dropped (dust, below threshold, unresolved).
func (b *Builder) price(ctx context.Context, h domain.Holding, prev *domain.Snapshot) (domain.PricedHolding, bool, error) {
	if h.Venue.IsStock() {
		return b.priceStock(ctx, h, prev)
	}

	if domain.IsStablecoin(h.Symbol) {
		// stables are pinned to 1 USD; below one unit they are dust
		if h.Quantity.LessThan(oneUnit) {
			return domain.PricedHolding{}, false, nil
		}
		priced := domain.NewPricedHolding(h, oneUnit)
		return priced, priced.ValueUSD.GreaterThanOrEqual(oneDollar), nil
	}

	if h.Quantity.Round(dustScale).IsZero() {
		return domain.PricedHolding{}, false, nil
	}

	price, err := b.resolver.Resolve(ctx, h.Symbol, h.Venue)
	if err != nil {
		if ctx.Err() != nil {
			return domain.PricedHolding{}, false, ctx.Err()
		}
		// an unpriced holding cannot be threshold-checked, drop it
		b.logger.Warn("dropping holding with unresolved price",
			zap.String("user", h.UserID),
			zap.String("key", h.Key().String()),
			zap.Error(err))
		return domain.PricedHolding{}, false, nil
	}

	priced := domain.NewPricedHolding(h, price)
	if priced.ValueUSD.LessThan(oneDollar) {
		return domain.PricedHolding{}, false, nil
	}
	return priced, true, nil
}

// priceStock computes the worth of a stock row via the equities path. The dust
// and worth filters do not apply. When the quote provider is down, the row
// keeps its previously published price rather than silently vanishing from
// the portfolio.
func (b *Builder) priceStock(ctx context.Context, h domain.Holding, prev *domain.Snapshot) (domain.PricedHolding, bool, error) {
	price, err := b.equities.Quote(ctx, h.Symbol)
	if err == nil {
		return domain.NewPricedHolding(h, price), true, nil
	}
	if ctx.Err() != nil {
		return domain.PricedHolding{}, false, ctx.Err()
	}

	if prev != nil {
		if old, ok := prev.Find(h.Key()); ok && old.Resolved {
			b.logger.Warn("equities quote failed, keeping previous price",
				zap.String("user", h.UserID),
				zap.String("key", h.Key().String()),
				zap.Error(err))
			return domain.NewPricedHolding(h, old.UnitPriceUSD), true, nil
		}
	}

	b.logger.Warn("dropping stock holding without a quote",
		zap.String("user", h.UserID),
		zap.String("key", h.Key().String()),
		zap.Error(err))
	return domain.PricedHolding{}, false, nil
}

var venueRank = func() map[domain.Venue]int {
	rank := make(map[domain.Venue]int)
	for i, v := range domain.AllVenues() {
		rank[v] = i
	}
	return rank
}()

func sortKeys(keys []domain.Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Venue != keys[j].Venue {
			return venueRank[keys[i].Venue] < venueRank[keys[j].Venue]
		}
		return keys[i].Symbol < keys[j].Symbol
	})
}
