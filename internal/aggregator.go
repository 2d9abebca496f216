// Package internal wires the portfolio aggregation pipeline: venue balances
// are fetched, priced and filtered into a snapshot, diffed against the last
// published snapshot, optionally published, and committed to the store.
package internal

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/folio/internal/domain"
	"github.com/vadiminshakov/folio/internal/publisher"
	"github.com/vadiminshakov/folio/internal/services/balance"
	"github.com/vadiminshakov/folio/internal/services/snapshot"
)

// SnapshotStore is the durable last-published-snapshot store, keyed by user.
type SnapshotStore interface {
	Get(userID string) (domain.Snapshot, bool)
	Put(userID string, snap domain.Snapshot) error
}

type snapshotBuilder interface {
	Build(ctx context.Context, userID string, prev *domain.Snapshot, incoming []domain.Holding, scope snapshot.Scope) (domain.Snapshot, error)
}

// Aggregator runs the refresh pipeline for every registered user. Users are
// independent: their pipelines run concurrently and touch disjoint store keys.
type Aggregator struct {
	fetchers  map[string][]balance.Fetcher
	builder   snapshotBuilder
	store     SnapshotStore
	publisher publisher.Publisher
	logger    *zap.Logger
}

func NewAggregator(
	fetchers map[string][]balance.Fetcher,
	builder snapshotBuilder,
	store SnapshotStore,
	pub publisher.Publisher,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		fetchers:  fetchers,
		builder:   builder,
		store:     store,
		publisher: pub,
		logger:    logger,
	}
}

// Refresh runs one aggregation pass for every user over the given scope.
// Per-user failures are isolated: a failing pipeline never cancels the
// others, every sibling runs to its own commit. Wait still surfaces the
// first commit failure so the next scheduled cycle retries that user.
func (a *Aggregator) Refresh(ctx context.Context, scope snapshot.Scope) error {
	var g errgroup.Group
	for userID := range a.fetchers {
		g.Go(func() error {
			return a.RefreshUser(ctx, userID, scope)
		})
	}
	return g.Wait()
}

// RefreshUser runs the pipeline for a single user: fetch -> build -> diff ->
// gate -> publish -> commit. The store commit is the last step; an abort
// anywhere before it leaves the previous snapshot authoritative.
func (a *Aggregator) RefreshUser(ctx context.Context, userID string, scope snapshot.Scope) error {
	logger := a.logger.With(zap.String("user", userID))

	incoming := a.fetchBalances(ctx, userID, scope, logger)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var prev *domain.Snapshot
	if stored, ok := a.store.Get(userID); ok {
		prev = &stored
	}

	built, err := a.builder.Build(ctx, userID, prev, incoming, scope)
	if err != nil {
		// only cancellation aborts a build; nothing was published or stored
		return err
	}

	var prevSnapshot domain.Snapshot
	if prev != nil {
		prevSnapshot = *prev
	}
	diffed := snapshot.Diff(built, prevSnapshot)

	if diffed.Empty() {
		logger.Info("no holdings above thresholds, nothing to publish")
	} else if diffed.AllFlat() {
		// nothing moved: suppress the publication but still advance state
		// below, so the next delta is measured from this cycle
		logger.Info("all holdings flat, publication suppressed")
	} else {
		if err := a.publisher.Publish(ctx, diffed); err != nil {
			logger.Error("publish failed", zap.Error(err))
		}
	}

	if err := a.store.Put(userID, built); err != nil {
		return errors.Wrapf(err, "commit snapshot for user %s", userID)
	}

	logger.Info("snapshot committed",
		zap.Int("holdings", len(built.Holdings)),
		zap.String("total_usd", built.TotalUSD().StringFixed(2)))
	return nil
}

// fetchBalances gathers the user's holdings from every in-scope venue
// concurrently. An unavailable venue contributes nothing and is logged; it
// never aborts the other venues.
func (a *Aggregator) fetchBalances(ctx context.Context, userID string, scope snapshot.Scope, logger *zap.Logger) []domain.Holding {
	var (
		mu       sync.Mutex
		holdings []domain.Holding
		wg       sync.WaitGroup
	)

	for _, fetcher := range a.fetchers[userID] {
		if !scope.Contains(fetcher.Venue()) {
			continue
		}

		wg.Add(1)
		go func(f balance.Fetcher) {
			defer wg.Done()

			fetched, err := f.Fetch(ctx)
			if err != nil {
				if errors.Is(err, balance.ErrVenueUnavailable) {
					logger.Warn("venue unavailable, treating as empty",
						zap.String("venue", f.Venue().String()), zap.Error(err))
				} else {
					logger.Error("venue fetch failed, treating as empty",
						zap.String("venue", f.Venue().String()), zap.Error(err))
				}
				return
			}

			mu.Lock()
			holdings = append(holdings, fetched...)
			mu.Unlock()
		}(fetcher)
	}

	wg.Wait()
	return holdings
}

// Run performs a full refresh immediately (so configured stock positions enter
// the snapshot), then re-aggregates crypto venues on every tick until ctx is
// cancelled.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) error {
	if err := a.Refresh(ctx, snapshot.FullScope()); err != nil {
		a.logger.Error("initial refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info("aggregation loop started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("context done, stopping aggregation loop")
			return ctx.Err()
		case <-ticker.C:
			if err := a.Refresh(ctx, snapshot.CryptoScope()); err != nil {
				a.logger.Error("refresh cycle failed, will retry next tick", zap.Error(err))
			}
		}
	}
}
