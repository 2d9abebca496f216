package pricer

import (
	"context"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const binanceInvalidSymbolCode = -1121

// BinanceQuoter quotes an asset via its USDT pair on Binance spot.
type BinanceQuoter struct {
	client *binance.Client
}

func NewBinanceQuoter(client *binance.Client) *BinanceQuoter {
	return &BinanceQuoter{client: client}
}

func (q *BinanceQuoter) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := q.client.NewListPricesService().Symbol(symbol + "USDT").Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == binanceInvalidSymbolCode {
			return decimal.Zero, nil // no listing
		}
		return decimal.Zero, errors.Wrap(err, "binance list prices")
	}
	if len(prices) == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(prices[0].Price)
}
