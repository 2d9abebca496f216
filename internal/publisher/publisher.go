// Package publisher renders diffed snapshots for display. The core hands it
// deduplicated, sorted, filtered rows; only truncation and formatting remain.
package publisher

import (
	"context"

	"github.com/vadiminshakov/folio/internal/domain"
)

// Publisher consumes a diffed snapshot when the publish gate lets one through.
type Publisher interface {
	Publish(ctx context.Context, snapshot domain.DiffedSnapshot) error
}
