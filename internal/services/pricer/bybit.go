package pricer

import (
	"context"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// BybitQuoter quotes an asset via its USDT spot ticker on Bybit.
type BybitQuoter struct {
	client *bybit.Client
}

func NewBybitQuoter(client *bybit.Client) *BybitQuoter {
	return &BybitQuoter{client: client}
}

func (q *BybitQuoter) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ticker := bybit.SymbolV5(symbol + "USDT")

	result, err := q.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &ticker,
	})
	if err != nil {
		var apiErr *bybit.ErrorResponse
		if errors.As(err, &apiErr) {
			// bybit rejects unknown symbols at the API level; treat as no listing
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.Wrap(err, "bybit get tickers")
	}
	if len(result.Result.Spot.List) == 0 {
		return decimal.Zero, nil
	}

	price, err := decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "parse bybit ticker price")
	}
	return price, nil
}
