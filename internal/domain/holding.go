package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Holding is a raw per-venue position: how much of one asset a user owns there.
type Holding struct {
	UserID   string          `json:"user"`
	Venue    Venue           `json:"venue"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewHolding builds a Holding with the venue-native ticker normalized to uppercase.
func NewHolding(userID string, venue Venue, symbol string, quantity decimal.Decimal) Holding {
	return Holding{
		UserID:   userID,
		Venue:    venue,
		Symbol:   strings.ToUpper(symbol),
		Quantity: quantity,
	}
}

// Key identifies a holding within one user's snapshot.
type Key struct {
	Venue  Venue
	Symbol string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Venue, k.Symbol)
}

// Key returns the (venue, symbol) identity of the holding.
func (h Holding) Key() Key {
	return Key{Venue: h.Venue, Symbol: h.Symbol}
}

// PricedHolding is a holding with its resolved USD unit price and worth.
// Resolved is false when every resolution step failed; ValueUSD is undefined then.
type PricedHolding struct {
	Holding
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
	ValueUSD     decimal.Decimal `json:"value_usd"`
	Resolved     bool            `json:"resolved"`
}

// NewPricedHolding computes the USD worth from the unit price.
func NewPricedHolding(h Holding, unitPriceUSD decimal.Decimal) PricedHolding {
	return PricedHolding{
		Holding:      h,
		UnitPriceUSD: unitPriceUSD,
		ValueUSD:     h.Quantity.Mul(unitPriceUSD),
		Resolved:     true,
	}
}
