package balance

import (
	"context"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/folio/internal/domain"
	"github.com/vadiminshakov/folio/pkg/retrier"
)

// BybitFetcher reads unified wallet balances for one user.
type BybitFetcher struct {
	client  *bybit.Client
	userID  string
	retrier *retrier.Retrier
}

func NewBybitFetcher(client *bybit.Client, userID string) *BybitFetcher {
	return &BybitFetcher{
		client:  client,
		userID:  userID,
		retrier: retrier.New(),
	}
}

func (f *BybitFetcher) Venue() domain.Venue {
	return domain.VenueBybit
}

func (f *BybitFetcher) Fetch(ctx context.Context) ([]domain.Holding, error) {
	result, err := retrier.DoWithData(f.retrier, ctx, func(ctx context.Context) (*bybit.V5GetWalletBalanceResponse, error) {
		return f.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5UNIFIED, nil)
	})
	if err != nil {
		return nil, errors.Wrapf(ErrVenueUnavailable, "bybit: %v", err)
	}

	var holdings []domain.Holding
	for _, wallet := range result.Result.List {
		for _, coin := range wallet.Coin {
			qty, err := decimal.NewFromString(coin.WalletBalance)
			if err != nil {
				return nil, errors.Wrapf(err, "parse bybit balance for %s", coin.Coin)
			}
			if !qty.IsPositive() {
				continue
			}
			holdings = append(holdings, domain.NewHolding(f.userID, domain.VenueBybit, string(coin.Coin), qty))
		}
	}
	return holdings, nil
}
