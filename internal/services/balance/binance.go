package balance

import (
	"context"

	binance "github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/folio/internal/domain"
	"github.com/vadiminshakov/folio/pkg/retrier"
)

// BinanceFetcher reads spot account balances for one user.
type BinanceFetcher struct {
	client  *binance.Client
	userID  string
	retrier *retrier.Retrier
}

func NewBinanceFetcher(client *binance.Client, userID string) *BinanceFetcher {
	return &BinanceFetcher{
		client:  client,
		userID:  userID,
		retrier: retrier.New(),
	}
}

func (f *BinanceFetcher) Venue() domain.Venue {
	return domain.VenueBinance
}

func (f *BinanceFetcher) Fetch(ctx context.Context) ([]domain.Holding, error) {
	account, err := retrier.DoWithData(f.retrier, ctx, func(ctx context.Context) (*binance.Account, error) {
		return f.client.NewGetAccountService().Do(ctx)
	})
	if err != nil {
		return nil, errors.Wrapf(ErrVenueUnavailable, "binance: %v", err)
	}

	var holdings []domain.Holding
	for _, b := range account.Balances {
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance free balance for %s", b.Asset)
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance locked balance for %s", b.Asset)
		}

		total := free.Add(locked)
		if !total.IsPositive() {
			continue
		}
		holdings = append(holdings, domain.NewHolding(f.userID, domain.VenueBinance, b.Asset, total))
	}
	return holdings, nil
}
