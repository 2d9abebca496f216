package balance

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/folio/internal/domain"
)

// StockFetcher serves a user's configured equity positions. Stock holdings
// come from configuration rather than an exchange API, so this adapter never
// fails; pricing happens later through the equities quote path.
type StockFetcher struct {
	userID    string
	positions map[string]decimal.Decimal
}

func NewStockFetcher(userID string, positions map[string]decimal.Decimal) *StockFetcher {
	return &StockFetcher{userID: userID, positions: positions}
}

func (f *StockFetcher) Venue() domain.Venue {
	return domain.VenueStock
}

func (f *StockFetcher) Fetch(ctx context.Context) ([]domain.Holding, error) {
	holdings := make([]domain.Holding, 0, len(f.positions))
	for symbol, qty := range f.positions {
		if !qty.IsPositive() {
			continue
		}
		holdings = append(holdings, domain.NewHolding(f.userID, domain.VenueStock, symbol, qty))
	}
	return holdings, nil
}
