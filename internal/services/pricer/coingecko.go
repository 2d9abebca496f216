package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	coingeckoBaseURL  = "https://api.coingecko.com"
	coinIndexCacheKey = "coin_index"
	coinIndexTTL      = 24 * time.Hour
)

// CoingeckoClient implements both the symbol registry and the market-data
// provider against the CoinGecko REST API. The full coin list is cached for a
// day; per-identifier market data is fetched live.
type CoingeckoClient struct {
	baseURL string
	httpc   *http.Client
	cache   *gocache.Cache
}

func NewCoingeckoClient() *CoingeckoClient {
	return &CoingeckoClient{
		baseURL: coingeckoBaseURL,
		httpc:   &http.Client{Timeout: 20 * time.Second},
		cache:   gocache.New(coinIndexTTL, coinIndexTTL),
	}
}

// WithBaseURL overrides the API host, used by tests.
func (c *CoingeckoClient) WithBaseURL(url string) *CoingeckoClient {
	c.baseURL = url
	return c
}

type coinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

// Lookup returns every CoinGecko identifier sharing the ticker symbol.
// Ambiguity (multiple identifiers) is the caller's problem to disambiguate.
func (c *CoingeckoClient) Lookup(ctx context.Context, symbol string) ([]string, error) {
	index, err := c.coinIndex(ctx)
	if err != nil {
		return nil, err
	}
	return index[strings.ToLower(symbol)], nil
}

func (c *CoingeckoClient) coinIndex(ctx context.Context) (map[string][]string, error) {
	if cached, ok := c.cache.Get(coinIndexCacheKey); ok {
		return cached.(map[string][]string), nil
	}

	var list []coinListEntry
	if err := c.getJSON(ctx, "/api/v3/coins/list", &list); err != nil {
		return nil, errors.Wrap(err, "fetch coingecko coin list")
	}

	index := make(map[string][]string, len(list))
	for _, entry := range list {
		sym := strings.ToLower(entry.Symbol)
		index[sym] = append(index[sym], entry.ID)
	}
	c.cache.Set(coinIndexCacheKey, index, coinIndexTTL)
	return index, nil
}

type coinDetail struct {
	MarketData struct {
		CurrentPrice map[string]json.Number `json:"current_price"`
		TotalVolume  map[string]json.Number `json:"total_volume"`
	} `json:"market_data"`
}

// MarketData returns the identifier's current USD price and trading volume.
// A missing usd field is an error so the resolver can fall through.
func (c *CoingeckoClient) MarketData(ctx context.Context, id string) (MarketQuote, error) {
	var detail coinDetail
	path := fmt.Sprintf("/api/v3/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false&sparkline=false", id)
	if err := c.getJSON(ctx, path, &detail); err != nil {
		return MarketQuote{}, errors.Wrapf(err, "fetch coingecko market data for %s", id)
	}

	rawPrice, ok := detail.MarketData.CurrentPrice["usd"]
	if !ok {
		return MarketQuote{}, fmt.Errorf("coingecko: no usd price for %s", id)
	}
	price, err := decimal.NewFromString(rawPrice.String())
	if err != nil {
		return MarketQuote{}, errors.Wrapf(err, "parse usd price for %s", id)
	}

	quote := MarketQuote{PriceUSD: price}
	if rawVolume, ok := detail.MarketData.TotalVolume["usd"]; ok {
		if volume, err := decimal.NewFromString(rawVolume.String()); err == nil {
			quote.VolumeUSD = volume
		}
	}
	return quote, nil
}

func (c *CoingeckoClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(out)
}
