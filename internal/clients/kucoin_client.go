package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const kucoinBaseURL = "https://api.kucoin.com"

// KucoinClient is a minimal KuCoin REST client covering the account and
// ticker endpoints the aggregator needs. Private calls are signed with the
// v2 API-key scheme.
type KucoinClient struct {
	apiKey     string
	apiSecret  string
	passphrase string
	baseURL    string
	httpc      *http.Client
}

func NewKucoinClient(apiKey, apiSecret, passphrase string) *KucoinClient {
	return &KucoinClient{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		passphrase: passphrase,
		baseURL:    kucoinBaseURL,
		httpc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API host, used by tests.
func (c *KucoinClient) WithBaseURL(url string) *KucoinClient {
	c.baseURL = url
	return c
}

// KucoinAccount is one entry of the /api/v1/accounts response.
type KucoinAccount struct {
	Currency string `json:"currency"`
	Type     string `json:"type"`
	Balance  string `json:"balance"`
}

type kucoinEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// KucoinAPIError is a business-level rejection from KuCoin, reported in the
// response envelope. Transport and decode failures stay plain errors so
// callers can tell "the exchange said no" from "the exchange is unreachable".
type KucoinAPIError struct {
	Code string
	Msg  string
}

func (e *KucoinAPIError) Error() string {
	return fmt.Sprintf("kucoin API error %s: %s", e.Code, e.Msg)
}

// Accounts returns every account row (main, trade, ...) for the key's user.
func (c *KucoinClient) Accounts(ctx context.Context) ([]KucoinAccount, error) {
	data, err := c.get(ctx, "/api/v1/accounts", true)
	if err != nil {
		return nil, err
	}

	var accounts []KucoinAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, errors.Wrap(err, "decode kucoin accounts")
	}
	return accounts, nil
}

// TickerPrice returns the last trade price for a symbol like "BTC-USDT".
// An empty string means the symbol has no listing.
func (c *KucoinClient) TickerPrice(ctx context.Context, symbol string) (string, error) {
	data, err := c.get(ctx, "/api/v1/market/orderbook/level1?symbol="+symbol, false)
	if err != nil {
		return "", err
	}

	var ticker struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(data, &ticker); err != nil {
		return "", errors.Wrap(err, "decode kucoin ticker")
	}
	return ticker.Price, nil
}

func (c *KucoinClient) get(ctx context.Context, path string, signed bool) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if signed {
		c.sign(req, path)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "kucoin request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read kucoin response")
	}

	var envelope kucoinEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrapf(err, "decode kucoin response (status %d)", resp.StatusCode)
	}
	if envelope.Code != "200000" {
		return nil, &KucoinAPIError{Code: envelope.Code, Msg: envelope.Msg}
	}
	return envelope.Data, nil
}

// sign adds the KC-API v2 authentication headers: both the request digest and
// the passphrase are HMAC-SHA256'd with the API secret and base64 encoded.
func (c *KucoinClient) sign(req *http.Request, path string) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	req.Header.Set("KC-API-KEY", c.apiKey)
	req.Header.Set("KC-API-KEY-VERSION", "2")
	req.Header.Set("KC-API-TIMESTAMP", ts)
	req.Header.Set("KC-API-SIGN", hmacB64(c.apiSecret, ts+req.Method+path))
	req.Header.Set("KC-API-PASSPHRASE", hmacB64(c.apiSecret, c.passphrase))
}

func hmacB64(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
