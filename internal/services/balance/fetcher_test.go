package balance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/folio/internal/clients"
	"github.com/vadiminshakov/folio/internal/domain"
	"github.com/vadiminshakov/folio/pkg/retrier"
)

func TestKucoinFetcherSumsAccountTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"code": "200000",
			"data": [
				{"currency": "BTC", "type": "trade", "balance": "0.5"},
				{"currency": "BTC", "type": "main", "balance": "0.25"},
				{"currency": "USDT", "type": "trade", "balance": "120"},
				{"currency": "ZERO", "type": "main", "balance": "0"}
			]
		}`))
	}))
	defer srv.Close()

	fetcher := NewKucoinFetcher(clients.NewKucoinClient("k", "s", "p").WithBaseURL(srv.URL), "alice")
	assert.Equal(t, domain.VenueKucoin, fetcher.Venue())

	holdings, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	assert.Equal(t, "BTC", holdings[0].Symbol)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromFloat(0.75)))
	assert.Equal(t, "USDT", holdings[1].Symbol)
	assert.Equal(t, "alice", holdings[1].UserID)
}

func TestKucoinFetcherMarksVenueUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code": "500000", "msg": "down for maintenance"}`))
	}))
	defer srv.Close()

	fetcher := NewKucoinFetcher(clients.NewKucoinClient("k", "s", "p").WithBaseURL(srv.URL), "alice")
	fetcher.retrier = retrier.New(retrier.WithAttempts(0))

	_, err := fetcher.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVenueUnavailable))
}

func TestStockFetcherServesConfiguredPositions(t *testing.T) {
	fetcher := NewStockFetcher("alice", map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(10),
		"MSFT": decimal.NewFromFloat(2.5),
		"GONE": decimal.Zero,
	})
	assert.Equal(t, domain.VenueStock, fetcher.Venue())

	holdings, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	for _, h := range holdings {
		assert.Equal(t, domain.VenueStock, h.Venue)
		assert.True(t, h.Quantity.IsPositive())
	}
}
