// Package state shares the latest daemon view between the poller and the UI.
//
// # Overview
//
// The poller is the single writer; the UI reads on every tick:
//
//	Poller:                        UI:
//	┌──────────────────┐          ┌──────────────────┐
//	│ GetTorrents()    │          │                  │
//	│ GetSession()     │          │                  │
//	│      ↓           │          │                  │
//	│ store.Update()   │─────────→│ store.Snapshot() │
//	│      ↓           │ (RWMutex)│      ↓           │
//	│ wait / backoff   │          │ render           │
//	└──────────────────┘          └──────────────────┘
//
// # Snapshot Semantics
//
// Snapshot returns copies: the torrent slice is cloned and LastError is
// re-wrapped, so the UI may sort or mutate what it receives. Torrent records
// themselves hold pointers into decoded values that nobody writes after
// decoding, so a shallow clone of the slice is enough.
//
// A failed poll keeps the previous torrents and increments
// ConsecutiveFailures; two failures in a row mark the daemon offline. Any
// successful poll resets the counter and clears LastError.
package state
