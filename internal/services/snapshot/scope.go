// Package snapshot builds priced user snapshots and diffs them against the
// previously published state.
package snapshot

import "github.com/vadiminshakov/folio/internal/domain"

// Scope names the venues a refresh cycle actually re-fetched. Prior rows on
// venues outside the scope are carried into the new snapshot instead of being
// discarded: a crypto cycle must not lose stock positions and vice versa.
type Scope struct {
	venues map[domain.Venue]struct{}
}

func NewScope(venues ...domain.Venue) Scope {
	s := Scope{venues: make(map[domain.Venue]struct{}, len(venues))}
	for _, v := range venues {
		s.venues[v] = struct{}{}
	}
	return s
}

// CryptoScope covers every exchange venue, leaving stock rows carried over.
func CryptoScope() Scope {
	return NewScope(domain.CryptoVenues()...)
}

// FullScope covers everything including the configured stock positions.
func FullScope() Scope {
	return NewScope(domain.AllVenues()...)
}

func (s Scope) Contains(v domain.Venue) bool {
	_, ok := s.venues[v]
	return ok
}
