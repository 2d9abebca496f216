// Package domain defines the core data structures of the portfolio aggregator.
package domain

import "fmt"

// Venue is a balance/price source: a crypto exchange or the equities path.
type Venue string

const (
	VenueBinance Venue = "binance"
	VenueBybit   Venue = "bybit"
	VenueKucoin  Venue = "kucoin"
	VenueStock   Venue = "stock"
)

// CryptoVenues lists every exchange venue in display order.
func CryptoVenues() []Venue {
	return []Venue{VenueBinance, VenueBybit, VenueKucoin}
}

// AllVenues lists every venue in display order, equities last.
func AllVenues() []Venue {
	return append(CryptoVenues(), VenueStock)
}

// IsStock reports whether the venue uses the equities quote path.
func (v Venue) IsStock() bool {
	return v == VenueStock
}

func (v Venue) String() string {
	return string(v)
}

// ParseVenue validates a venue name from config or user input.
func ParseVenue(s string) (Venue, error) {
	switch Venue(s) {
	case VenueBinance, VenueBybit, VenueKucoin, VenueStock:
		return Venue(s), nil
	}
	return "", fmt.Errorf("unknown venue %q", s)
}
