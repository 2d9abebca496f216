package pricer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoingeckoLookupAndMarketData(t *testing.T) {
	listCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/coins/list":
			listCalls++
			w.Write([]byte(`[
				{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin"},
				{"id": "batcat", "symbol": "btc", "name": "BatCat"},
				{"id": "ethereum", "symbol": "eth", "name": "Ethereum"}
			]`))
		case "/api/v3/coins/bitcoin":
			w.Write([]byte(`{
				"market_data": {
					"current_price": {"usd": 64000.5, "eur": 59000},
					"total_volume": {"usd": 35000000000}
				}
			}`))
		case "/api/v3/coins/nousd":
			w.Write([]byte(`{"market_data": {"current_price": {"eur": 10}, "total_volume": {}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewCoingeckoClient().WithBaseURL(srv.URL)

	ids, err := client.Lookup(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "batcat"}, ids)

	ids, err = client.Lookup(context.Background(), "eth")
	require.NoError(t, err)
	assert.Equal(t, []string{"ethereum"}, ids)
	assert.Equal(t, 1, listCalls, "the coin list is cached between lookups")

	ids, err = client.Lookup(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	assert.Empty(t, ids)

	quote, err := client.MarketData(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.True(t, quote.PriceUSD.Equal(decimal.NewFromFloat(64000.5)))
	assert.True(t, quote.VolumeUSD.Equal(decimal.NewFromInt(35000000000)))

	_, err = client.MarketData(context.Background(), "nousd")
	require.Error(t, err, "a listing without a usd price must fail so the chain falls through")
}

func TestScannerReturnsClosePrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/crypto/scan", r.URL.Path)
		w.Write([]byte(`{"data": [
			{"s": "BINANCE:SOLUSD", "d": [142.7]},
			{"s": "OKX:SOLUSD", "d": [142.5]},
			{"s": "EMPTY:ROW", "d": []}
		]}`))
	}))
	defer srv.Close()

	client := NewScannerClient().WithBaseURL(srv.URL)

	prices, err := client.Scan(context.Background(), "SOL", "crypto")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.True(t, prices[0].Equal(decimal.NewFromFloat(142.7)))
}

func TestEodhdQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.URL.Query().Get("api_token"))
		switch r.URL.Path {
		case "/api/real-time/AAPL.US":
			w.Write([]byte(`{"code": "AAPL.US", "close": 212.4, "previousClose": 210.1}`))
		case "/api/real-time/AFTERHOURS.US":
			w.Write([]byte(`{"code": "AFTERHOURS.US", "close": "NA", "previousClose": 55.5}`))
		case "/api/real-time/DEAD.US":
			w.Write([]byte(`{"code": "DEAD.US", "close": "NA", "previousClose": "NA"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	quoter := NewEodhdQuoter("secret").WithBaseURL(srv.URL)

	price, err := quoter.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(212.4)))

	price, err = quoter.Quote(context.Background(), "AFTERHOURS")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(55.5)), "falls back to previousClose when close is NA")

	_, err = quoter.Quote(context.Background(), "DEAD")
	require.Error(t, err)
}
