package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const eodhdBaseURL = "https://eodhd.com"

// EodhdQuoter quotes US equities from the EODHD real-time endpoint. It is the
// full stock price path: a single provider, no fallback chain.
type EodhdQuoter struct {
	apiToken string
	baseURL  string
	httpc    *http.Client
}

func NewEodhdQuoter(apiToken string) *EodhdQuoter {
	return &EodhdQuoter{
		apiToken: apiToken,
		baseURL:  eodhdBaseURL,
		httpc:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API host, used by tests.
func (q *EodhdQuoter) WithBaseURL(url string) *EodhdQuoter {
	q.baseURL = url
	return q
}

func (q *EodhdQuoter) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/real-time/%s.US?api_token=%s&fmt=json", q.baseURL, symbol, q.apiToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := q.httpc.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "eodhd request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("eodhd: unexpected status %d for %s", resp.StatusCode, symbol)
	}

	// close is "NA" outside trading hours for some tickers, hence RawMessage
	var quote struct {
		Close         json.RawMessage `json:"close"`
		PreviousClose json.RawMessage `json:"previousClose"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&quote); err != nil {
		return decimal.Zero, errors.Wrapf(err, "decode eodhd quote for %s", symbol)
	}

	if price, ok := parseQuoteField(quote.Close); ok {
		return price, nil
	}
	if price, ok := parseQuoteField(quote.PreviousClose); ok {
		return price, nil
	}
	return decimal.Zero, fmt.Errorf("eodhd: no usable quote for %s", symbol)
}

func parseQuoteField(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Zero, false
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(num.String())
	if err != nil || !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}
