package pricer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/folio/internal/clients"
)

func TestBybitQuoter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v5/market/tickers", r.URL.Path)
		switch r.URL.Query().Get("symbol") {
		case "BTCUSDT":
			w.Write([]byte(`{
				"retCode": 0,
				"retMsg": "OK",
				"result": {"category": "spot", "list": [{"symbol": "BTCUSDT", "lastPrice": "64250.10"}]},
				"time": 1
			}`))
		default:
			w.Write([]byte(`{"retCode": 10001, "retMsg": "params error: Symbol Is Invalid", "time": 1}`))
		}
	}))
	defer srv.Close()

	quoter := NewBybitQuoter(bybit.NewClient().WithBaseURL(srv.URL))

	price, err := quoter.Quote(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(64250.10)))

	// an API-level rejection is an unknown symbol, not an outage
	price, err = quoter.Quote(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestBybitQuoterTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	quoter := NewBybitQuoter(bybit.NewClient().WithBaseURL(srv.URL))

	_, err := quoter.Quote(context.Background(), "BTC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bybit get tickers")
}

func TestKucoinQuoter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/market/orderbook/level1", r.URL.Path)
		switch r.URL.Query().Get("symbol") {
		case "BTC-USDT":
			w.Write([]byte(`{"code": "200000", "data": {"price": "64100.5"}}`))
		default:
			w.Write([]byte(`{"code": "400100", "msg": "Unsupported trading pair"}`))
		}
	}))
	defer srv.Close()

	quoter := NewKucoinQuoter(clients.NewKucoinClient("", "", "").WithBaseURL(srv.URL))

	price, err := quoter.Quote(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(64100.5)))

	price, err = quoter.Quote(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestKucoinQuoterTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	quoter := NewKucoinQuoter(clients.NewKucoinClient("", "", "").WithBaseURL(srv.URL))

	_, err := quoter.Quote(context.Background(), "BTC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kucoin ticker")
}
