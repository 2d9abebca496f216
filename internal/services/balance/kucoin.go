package balance

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/folio/internal/clients"
	"github.com/vadiminshakov/folio/internal/domain"
	"github.com/vadiminshakov/folio/pkg/retrier"
)

// KucoinFetcher reads account balances for one user. KuCoin splits funds over
// account types (main, trade, margin); quantities are summed per currency.
type KucoinFetcher struct {
	client  *clients.KucoinClient
	userID  string
	retrier *retrier.Retrier
}

func NewKucoinFetcher(client *clients.KucoinClient, userID string) *KucoinFetcher {
	return &KucoinFetcher{
		client:  client,
		userID:  userID,
		retrier: retrier.New(),
	}
}

func (f *KucoinFetcher) Venue() domain.Venue {
	return domain.VenueKucoin
}

func (f *KucoinFetcher) Fetch(ctx context.Context) ([]domain.Holding, error) {
	accounts, err := retrier.DoWithData(f.retrier, ctx, func(ctx context.Context) ([]clients.KucoinAccount, error) {
		return f.client.Accounts(ctx)
	})
	if err != nil {
		return nil, errors.Wrapf(ErrVenueUnavailable, "kucoin: %v", err)
	}

	totals := make(map[string]decimal.Decimal)
	for _, account := range accounts {
		qty, err := decimal.NewFromString(account.Balance)
		if err != nil {
			return nil, errors.Wrapf(err, "parse kucoin balance for %s", account.Currency)
		}
		totals[account.Currency] = totals[account.Currency].Add(qty)
	}

	var holdings []domain.Holding
	for currency, total := range totals {
		if !total.IsPositive() {
			continue
		}
		holdings = append(holdings, domain.NewHolding(f.userID, domain.VenueKucoin, currency, total))
	}
	return holdings, nil
}
