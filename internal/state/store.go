package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/trflyer/internal/transmission"
)

// offlineThreshold is the number of consecutive failed polls after which the
// daemon is shown as offline.
const offlineThreshold = 2

// Snapshot is the latest daemon view available to the UI.
type Snapshot struct {
	Torrents            []transmission.Torrent
	Session             transmission.SessionInfo
	HasSession          bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline reports whether the daemon has been unreachable for several polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= offlineThreshold
}

// Totals sums transfer rates across the snapshot's torrents.
func (s Snapshot) Totals() (down, up int64) {
	for _, t := range s.Torrents {
		if t.RateDownload != nil {
			down += *t.RateDownload
		}
		if t.RateUpload != nil {
			up += *t.RateUpload
		}
	}
	return down, up
}

// Find returns the torrent with the given id.
func (s Snapshot) Find(id int64) (transmission.Torrent, bool) {
	for _, t := range s.Torrents {
		if t.ID != nil && *t.ID == id {
			return t, true
		}
	}
	return transmission.Torrent{}, false
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the torrent list. When err is non-nil the previous data is
// kept and the error recorded. A nil session leaves the stored one untouched.
func (s *Store) Update(torrents []transmission.Torrent, session *transmission.SessionInfo, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Torrents = slices.Clone(torrents)
	if session != nil {
		s.snapshot.Session = *session
		s.snapshot.HasSession = true
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Torrents = slices.Clone(s.snapshot.Torrents)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
