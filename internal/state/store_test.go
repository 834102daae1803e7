package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/trflyer/internal/transmission"
)

func torrent(id, down, up int64) transmission.Torrent {
	return transmission.Torrent{ID: &id, RateDownload: &down, RateUpload: &up}
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	session := &transmission.SessionInfo{Version: "4.0.5"}
	before := time.Now()
	s.Update([]transmission.Torrent{torrent(1, 10, 1), torrent(2, 5, 2)}, session, nil)

	snap := s.Snapshot()
	if !snap.HasSession || snap.Session.Version != "4.0.5" {
		t.Fatalf("session = %#v, want version 4.0.5", snap.Session)
	}
	if len(snap.Torrents) != 2 || *snap.Torrents[0].ID != 1 {
		t.Fatalf("torrents = %#v, want 2 items", snap.Torrents)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if down, up := snap.Totals(); down != 15 || up != 3 {
		t.Fatalf("Totals = %d/%d, want 15/3", down, up)
	}

	// Returned snapshot should be independent of the stored one.
	other := int64(999)
	snap.Torrents[0].ID = &other
	if got := s.Snapshot(); *got.Torrents[0].ID != 1 {
		t.Fatalf("Snapshot should clone torrents; got id %d want 1", *got.Torrents[0].ID)
	}
}

func TestStore_NilSessionKeepsPrevious(t *testing.T) {
	var s Store
	s.Update(nil, &transmission.SessionInfo{Version: "4"}, nil)
	s.Update([]transmission.Torrent{torrent(3, 0, 0)}, nil, nil)

	snap := s.Snapshot()
	if !snap.HasSession || snap.Session.Version != "4" {
		t.Fatalf("session = %#v, want previous session", snap.Session)
	}
	if _, ok := snap.Find(3); !ok {
		t.Fatalf("Find(3) failed")
	}
	if _, ok := snap.Find(4); ok {
		t.Fatalf("Find(4) succeeded, want miss")
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store
	s.Update([]transmission.Torrent{torrent(1, 0, 0)}, nil, nil)

	origErr := errors.New("boom")
	s.Update(nil, nil, origErr)

	snap := s.Snapshot()
	if len(snap.Torrents) != 1 || *snap.Torrents[0].ID != 1 {
		t.Fatalf("torrents changed on error: %#v", snap.Torrents)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError should wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	for i := 1; i <= 3; i++ {
		s.Update(nil, nil, errors.New("fail"))
		snap := s.Snapshot()
		if snap.ConsecutiveFailures != i {
			t.Fatalf("ConsecutiveFailures = %d, want %d", snap.ConsecutiveFailures, i)
		}
		if want := i >= 2; snap.IsOffline() != want {
			t.Fatalf("IsOffline() = %v after %d failures, want %v", snap.IsOffline(), i, want)
		}
	}

	s.Update(nil, nil, nil)
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success should reset failures: %d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}
