package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/folio/internal/clients"
)

// KucoinQuoter quotes an asset via its -USDT level-1 ticker on KuCoin.
type KucoinQuoter struct {
	client *clients.KucoinClient
}

func NewKucoinQuoter(client *clients.KucoinClient) *KucoinQuoter {
	return &KucoinQuoter{client: client}
}

func (q *KucoinQuoter) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := q.client.TickerPrice(ctx, symbol+"-USDT")
	if err != nil {
		var apiErr *clients.KucoinAPIError
		if errors.As(err, &apiErr) {
			// unknown symbols come back as an API rejection; degrade to no listing
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.Wrap(err, "kucoin ticker")
	}
	if price == "" {
		return decimal.Zero, nil
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "parse kucoin ticker price")
	}
	return parsed, nil
}
