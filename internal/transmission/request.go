package transmission

import "slices"

// Request is anything the client can send: a method name plus an arguments
// payload. Arguments must only contain keys the caller actually set.
type Request interface {
	Method() string
	Arguments() (map[string]any, error)
}

// Response is reconstructed from the "arguments" value of a successful reply.
type Response interface {
	DecodeArguments(v any) error
}

type selectorKind int

const (
	selectAll selectorKind = iota
	selectList
	selectRecentlyActive
)

const recentlyActive = "recently-active"

// Selector picks the torrents an operation applies to. The zero value
// selects every torrent.
type Selector struct {
	kind   selectorKind
	ids    []int64
	hashes []string
}

// AllTorrents selects every torrent.
func AllTorrents() Selector { return Selector{} }

// RecentlyActive selects torrents that changed recently.
func RecentlyActive() Selector { return Selector{kind: selectRecentlyActive} }

// IDs selects torrents by numeric id. No ids means no restriction.
func IDs(ids ...int64) Selector {
	return Torrents(ids, nil)
}

// Hashes selects torrents by info hash. No hashes means no restriction.
func Hashes(hashes ...string) Selector {
	return Torrents(nil, hashes)
}

// Torrents selects by a mix of ids and hashes.
func Torrents(ids []int64, hashes []string) Selector {
	if len(ids) == 0 && len(hashes) == 0 {
		return AllTorrents()
	}
	return Selector{kind: selectList, ids: slices.Clone(ids), hashes: slices.Clone(hashes)}
}

// IsAll reports whether the selector applies to every torrent.
func (s Selector) IsAll() bool { return s.kind == selectAll }

// value returns the "ids" argument, or false when it must be omitted.
func (s Selector) value() (any, bool) {
	switch s.kind {
	case selectRecentlyActive:
		return recentlyActive, true
	case selectList:
		list := make([]any, 0, len(s.ids)+len(s.hashes))
		for _, id := range s.ids {
			list = append(list, id)
		}
		for _, h := range s.hashes {
			list = append(list, h)
		}
		return list, true
	default:
		return nil, false
	}
}

func (s Selector) apply(args map[string]any) {
	if v, ok := s.value(); ok {
		args["ids"] = v
	}
}
