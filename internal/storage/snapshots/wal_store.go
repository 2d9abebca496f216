// Package snapshots persists the last published portfolio snapshot per user.
package snapshots

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/folio/internal/domain"
)

const (
	defaultSnapshotDir   = "./wal/portfolio"
	snapshotSegmentLimit = 1000
	snapshotMaxSegments  = 100
	snapshotKeyPrefix    = "portfolio_snapshot_"
)

// WALStore is a durable key-value snapshot store over an append-only WAL.
// The latest snapshot per user is indexed in memory and rebuilt by replaying
// the log at open. Writes are the last step of a refresh pipeline: a crash
// before the write leaves the previous snapshot authoritative.
type WALStore struct {
	wal    *gowal.Wal
	latest map[string]domain.Snapshot
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewWALStore opens (or creates) the WAL under dir and replays it.
func NewWALStore(dir string, logger *zap.Logger) (*WALStore, error) {
	if dir == "" {
		dir = defaultSnapshotDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "snapshot_",
		SegmentThreshold: snapshotSegmentLimit,
		MaxSegments:      snapshotMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init portfolio snapshot WAL")
	}

	store := &WALStore{
		wal:    wal,
		latest: make(map[string]domain.Snapshot),
		logger: logger,
	}
	store.replay()
	return store, nil
}

// replay rebuilds the per-user index, newest record winning. A record that no
// longer decodes resets its user to "no previous snapshot": every holding will
// show up as new on the next publish, which is why this is logged loudly.
func (s *WALStore) replay() {
	for idx := uint64(1); idx <= s.wal.CurrentIndex(); idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, snapshotKeyPrefix) {
			continue
		}
		userID := strings.TrimPrefix(key, snapshotKeyPrefix)

		var snap domain.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			s.logger.Error("corrupt snapshot record, resetting user history; all deltas for this user restart from scratch",
				zap.String("user", userID),
				zap.Uint64("index", idx),
				zap.Error(err))
			delete(s.latest, userID)
			continue
		}
		s.latest[userID] = snap
	}
}

// Get returns the most recently published snapshot for the user.
func (s *WALStore) Get(userID string) (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.latest[userID]
	return snap, ok
}

// Put commits a snapshot as the user's new published state.
func (s *WALStore) Put(userID string, snap domain.Snapshot) error {
	if s == nil || s.wal == nil {
		return errors.New("snapshot store is not initialized")
	}
	if userID == "" {
		return fmt.Errorf("snapshot user id is required")
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal portfolio snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, snapshotKeyPrefix+userID, payload); err != nil {
		return errors.Wrap(err, "write portfolio snapshot")
	}
	s.latest[userID] = snap
	return nil
}

// SnapshotsAfter returns every snapshot written after the given WAL index,
// feeding the dashboard's SSE stream.
func (s *WALStore) SnapshotsAfter(index uint64) ([]domain.SnapshotRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("snapshot store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.SnapshotRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, snapshotKeyPrefix) {
			continue
		}
		var snap domain.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			s.logger.Error("corrupt snapshot record in stream range",
				zap.Uint64("index", idx), zap.Error(err))
			continue
		}
		records = append(records, domain.SnapshotRecord{Index: idx, Snapshot: snap})
	}
	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("snapshot store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
