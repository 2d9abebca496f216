package pricer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const scannerBaseURL = "https://scanner.tradingview.com"

// ScannerClient is the generic market-data fallback. It queries the
// TradingView scanner endpoint for a symbol within a market segment and
// returns whatever close prices the scan matched, best match first.
type ScannerClient struct {
	baseURL string
	httpc   *http.Client
}

func NewScannerClient() *ScannerClient {
	return &ScannerClient{
		baseURL: scannerBaseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API host, used by tests.
func (c *ScannerClient) WithBaseURL(url string) *ScannerClient {
	c.baseURL = url
	return c
}

type scanRequest struct {
	Filter  []scanFilter `json:"filter"`
	Columns []string     `json:"columns"`
}

type scanFilter struct {
	Left      string `json:"left"`
	Operation string `json:"operation"`
	Right     string `json:"right"`
}

type scanResponse struct {
	Data []struct {
		D []json.Number `json:"d"`
	} `json:"data"`
}

func (c *ScannerClient) Scan(ctx context.Context, symbol, market string) ([]decimal.Decimal, error) {
	payload, err := json.Marshal(scanRequest{
		Filter:  []scanFilter{{Left: "name", Operation: "match", Right: symbol + "USD"}},
		Columns: []string{"close"},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/scan", c.baseURL, market)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "scanner request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scanner: unexpected status %d", resp.StatusCode)
	}

	var result scanResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode scanner response")
	}

	var prices []decimal.Decimal
	for _, row := range result.Data {
		if len(row.D) == 0 {
			continue
		}
		price, err := decimal.NewFromString(row.D[0].String())
		if err != nil {
			continue
		}
		prices = append(prices, price)
	}
	return prices, nil
}
