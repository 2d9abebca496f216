// Package balance contains the per-venue adapters returning a user's raw holdings.
package balance

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/folio/internal/domain"
)

// ErrVenueUnavailable marks a venue whose balances could not be fetched.
// The aggregator degrades such a venue to an empty contribution instead of
// aborting the user's pipeline.
var ErrVenueUnavailable = errors.New("venue unavailable")

// Fetcher returns one user's raw holdings on one venue. The user and the
// credentials are bound at construction time.
type Fetcher interface {
	Venue() domain.Venue
	Fetch(ctx context.Context) ([]domain.Holding, error)
}
