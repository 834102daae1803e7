package transmission

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

const (
	methodTorrentGet        = "torrent-get"
	methodTorrentAdd        = "torrent-add"
	methodTorrentSet        = "torrent-set"
	methodTorrentRemove     = "torrent-remove"
	methodTorrentStart      = "torrent-start"
	methodTorrentStartNow   = "torrent-start-now"
	methodTorrentStop       = "torrent-stop"
	methodTorrentVerify     = "torrent-verify"
	methodTorrentReannounce = "torrent-reannounce"
	methodSessionGet        = "session-get"
)

// TorrentGet queries torrent attributes. With no fields the daemon decides
// which attributes to return; with no selector every torrent is returned.
type TorrentGet struct {
	selector Selector
	fields   []Field
}

// NewTorrentGet returns a query for all torrents and all fields.
func NewTorrentGet() TorrentGet { return TorrentGet{} }

// WithSelector replaces the set of torrents queried.
func (r TorrentGet) WithSelector(s Selector) TorrentGet {
	r.selector = s
	return r
}

// WithIDs replaces the queried ids.
func (r TorrentGet) WithIDs(ids ...int64) TorrentGet {
	r.selector = IDs(ids...)
	return r
}

// WithID adds one id to the queried ids.
func (r TorrentGet) WithID(id int64) TorrentGet {
	var ids []int64
	var hashes []string
	if r.selector.kind == selectList {
		ids, hashes = r.selector.ids, r.selector.hashes
	}
	r.selector = Torrents(append(slices.Clone(ids), id), hashes)
	return r
}

// WithField adds one attribute to the requested field list.
func (r TorrentGet) WithField(f Field) TorrentGet {
	r.fields = append(slices.Clone(r.fields), f)
	return r
}

// WithFields replaces the requested field list.
func (r TorrentGet) WithFields(fields ...Field) TorrentGet {
	r.fields = slices.Clone(fields)
	return r
}

// Fields returns the requested fields in request order.
func (r TorrentGet) Fields() []Field { return slices.Clone(r.fields) }

func (r TorrentGet) Method() string { return methodTorrentGet }

func (r TorrentGet) Arguments() (map[string]any, error) {
	args := map[string]any{}
	if len(r.fields) > 0 {
		keys := make([]string, 0, len(r.fields))
		for _, f := range r.fields {
			key := f.Key()
			if key == "" {
				return nil, fmt.Errorf("unknown field %d", int(f))
			}
			keys = append(keys, key)
		}
		args["fields"] = keys
	}
	r.selector.apply(args)
	return args, nil
}

// TorrentAdd asks the daemon to add a torrent either from metainfo sent
// inline or from a path/URL the daemon fetches itself.
type TorrentAdd struct {
	filename          *string
	metainfo          *string
	downloadDir       *string
	paused            *bool
	peerLimit         *int64
	bandwidthPriority *Priority
	labels            []string
}

// NewTorrentAddFromSource lets the daemon load the metainfo from a URL,
// magnet link, or a path on the daemon's host.
func NewTorrentAddFromSource(source string) TorrentAdd {
	return TorrentAdd{filename: &source}
}

// NewTorrentAddFromMetainfo sends raw .torrent bytes base64-encoded.
func NewTorrentAddFromMetainfo(data []byte) TorrentAdd {
	encoded := base64.StdEncoding.EncodeToString(data)
	return TorrentAdd{metainfo: &encoded}
}

// NewTorrentAddFromReader reads .torrent bytes from r.
func NewTorrentAddFromReader(r io.Reader) (TorrentAdd, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return TorrentAdd{}, fmt.Errorf("read metainfo: %w", err)
	}
	return NewTorrentAddFromMetainfo(data), nil
}

// NewTorrentAddFromFile reads a local .torrent file.
func NewTorrentAddFromFile(path string) (TorrentAdd, error) {
	file, err := os.Open(path)
	if err != nil {
		return TorrentAdd{}, fmt.Errorf("open metainfo: %w", err)
	}
	defer func() { _ = file.Close() }()
	return NewTorrentAddFromReader(file)
}

// WithDownloadDir sets the directory on the daemon's host to download into.
func (r TorrentAdd) WithDownloadDir(dir string) TorrentAdd {
	r.downloadDir = &dir
	return r
}

// WithPaused sets whether the torrent starts paused.
func (r TorrentAdd) WithPaused(paused bool) TorrentAdd {
	r.paused = &paused
	return r
}

// WithPeerLimit caps the number of peers for the torrent.
func (r TorrentAdd) WithPeerLimit(limit int64) TorrentAdd {
	r.peerLimit = &limit
	return r
}

// WithBandwidthPriority sets the initial bandwidth priority.
func (r TorrentAdd) WithBandwidthPriority(p Priority) TorrentAdd {
	r.bandwidthPriority = &p
	return r
}

// WithLabels sets the torrent's labels.
func (r TorrentAdd) WithLabels(labels ...string) TorrentAdd {
	r.labels = slices.Clone(labels)
	return r
}

func (r TorrentAdd) Method() string { return methodTorrentAdd }

func (r TorrentAdd) Arguments() (map[string]any, error) {
	if r.filename == nil && r.metainfo == nil {
		return nil, errors.New("torrent-add needs a source or metainfo")
	}
	args := map[string]any{}
	if r.filename != nil {
		args["filename"] = *r.filename
	}
	if r.metainfo != nil {
		args["metainfo"] = *r.metainfo
	}
	if r.downloadDir != nil {
		args["download-dir"] = *r.downloadDir
	}
	if r.paused != nil {
		args["paused"] = *r.paused
	}
	if r.peerLimit != nil {
		args["peer-limit"] = *r.peerLimit
	}
	if r.bandwidthPriority != nil {
		args["bandwidthPriority"] = int(*r.bandwidthPriority)
	}
	if r.labels != nil {
		args["labels"] = slices.Clone(r.labels)
	}
	return args, nil
}

// TorrentSet changes per-torrent settings. Only the settings given through
// With* methods are sent.
type TorrentSet struct {
	selector Selector
	values   map[string]any
}

// NewTorrentSet targets the torrents picked by s.
func NewTorrentSet(s Selector) TorrentSet {
	return TorrentSet{selector: s}
}

func (r TorrentSet) with(key string, value any) TorrentSet {
	values := maps.Clone(r.values)
	if values == nil {
		values = map[string]any{}
	}
	values[key] = value
	r.values = values
	return r
}

// WithSelector replaces the target torrents.
func (r TorrentSet) WithSelector(s Selector) TorrentSet {
	r.selector = s
	return r
}

// WithBandwidthPriority sets the torrent's bandwidth priority.
func (r TorrentSet) WithBandwidthPriority(p Priority) TorrentSet {
	return r.with("bandwidthPriority", int(p))
}

// WithDownloadLimit sets the download limit in KB/s.
func (r TorrentSet) WithDownloadLimit(kbps int64) TorrentSet {
	return r.with("downloadLimit", kbps)
}

// WithDownloadLimited turns the download limit on or off.
func (r TorrentSet) WithDownloadLimited(limited bool) TorrentSet {
	return r.with("downloadLimited", limited)
}

// WithHonorsSessionLimits sets whether session-wide limits apply too.
func (r TorrentSet) WithHonorsSessionLimits(honors bool) TorrentSet {
	return r.with("honorsSessionLimits", honors)
}

// WithLocation moves the torrent's data on the daemon's host.
func (r TorrentSet) WithLocation(location string) TorrentSet {
	return r.with("location", location)
}

// WithPeerLimit caps the number of peers.
func (r TorrentSet) WithPeerLimit(limit int64) TorrentSet {
	return r.with("peer-limit", limit)
}

// WithQueuePosition moves the torrent in the queue.
func (r TorrentSet) WithQueuePosition(pos int64) TorrentSet {
	return r.with("queuePosition", pos)
}

// WithSeedIdleLimit sets the idle seeding limit in minutes.
func (r TorrentSet) WithSeedIdleLimit(minutes int64) TorrentSet {
	return r.with("seedIdleLimit", minutes)
}

// WithSeedIdleMode picks the idle limit source: 0 global, 1 torrent, 2 unlimited.
func (r TorrentSet) WithSeedIdleMode(mode int64) TorrentSet {
	return r.with("seedIdleMode", mode)
}

// WithSeedRatioLimit sets the ratio at which seeding stops.
func (r TorrentSet) WithSeedRatioLimit(ratio float64) TorrentSet {
	return r.with("seedRatioLimit", ratio)
}

// WithSeedRatioMode picks the ratio limit source: 0 global, 1 torrent, 2 unlimited.
func (r TorrentSet) WithSeedRatioMode(mode int64) TorrentSet {
	return r.with("seedRatioMode", mode)
}

// WithUploadLimit sets the upload limit in KB/s.
func (r TorrentSet) WithUploadLimit(kbps int64) TorrentSet {
	return r.with("uploadLimit", kbps)
}

// WithUploadLimited turns the upload limit on or off.
func (r TorrentSet) WithUploadLimited(limited bool) TorrentSet {
	return r.with("uploadLimited", limited)
}

// WithFilesWanted marks file indices as wanted.
func (r TorrentSet) WithFilesWanted(indices ...int64) TorrentSet {
	return r.with("files-wanted", slices.Clone(indices))
}

// WithFilesUnwanted marks file indices as not wanted.
func (r TorrentSet) WithFilesUnwanted(indices ...int64) TorrentSet {
	return r.with("files-unwanted", slices.Clone(indices))
}

// WithFilePriority sets the priority of the given file indices.
func (r TorrentSet) WithFilePriority(p Priority, indices ...int64) TorrentSet {
	key := "priority-normal"
	switch p {
	case PriorityHigh:
		key = "priority-high"
	case PriorityLow:
		key = "priority-low"
	}
	return r.with(key, slices.Clone(indices))
}

// WithLabels replaces the torrent's labels.
func (r TorrentSet) WithLabels(labels ...string) TorrentSet {
	return r.with("labels", slices.Clone(labels))
}

// WithTrackerAdd appends announce URLs.
func (r TorrentSet) WithTrackerAdd(urls ...string) TorrentSet {
	return r.with("trackerAdd", slices.Clone(urls))
}

// WithTrackerRemove drops trackers by tracker id.
func (r TorrentSet) WithTrackerRemove(ids ...int64) TorrentSet {
	return r.with("trackerRemove", slices.Clone(ids))
}

func (r TorrentSet) Method() string { return methodTorrentSet }

func (r TorrentSet) Arguments() (map[string]any, error) {
	args := make(map[string]any, len(r.values)+1)
	for k, v := range r.values {
		args[k] = v
	}
	r.selector.apply(args)
	return args, nil
}

// Action is one of the parameterless torrent operations.
type Action int

const (
	ActionStart Action = iota
	ActionStartNow
	ActionStop
	ActionVerify
	ActionReannounce
)

func (a Action) method() string {
	switch a {
	case ActionStartNow:
		return methodTorrentStartNow
	case ActionStop:
		return methodTorrentStop
	case ActionVerify:
		return methodTorrentVerify
	case ActionReannounce:
		return methodTorrentReannounce
	default:
		return methodTorrentStart
	}
}

func (a Action) String() string {
	switch a {
	case ActionStartNow:
		return "start now"
	case ActionStop:
		return "stop"
	case ActionVerify:
		return "verify"
	case ActionReannounce:
		return "reannounce"
	default:
		return "start"
	}
}

// TorrentAction starts, stops, verifies or reannounces torrents.
type TorrentAction struct {
	action   Action
	selector Selector
}

// NewTorrentAction applies action to the torrents picked by s.
func NewTorrentAction(action Action, s Selector) TorrentAction {
	return TorrentAction{action: action, selector: s}
}

func (r TorrentAction) Method() string { return r.action.method() }

func (r TorrentAction) Arguments() (map[string]any, error) {
	args := map[string]any{}
	r.selector.apply(args)
	return args, nil
}

// TorrentRemove removes torrents from the daemon, optionally with their data.
type TorrentRemove struct {
	selector        Selector
	deleteLocalData *bool
}

// NewTorrentRemove removes the torrents picked by s and keeps their data.
func NewTorrentRemove(s Selector) TorrentRemove {
	return TorrentRemove{selector: s}
}

// WithDeleteLocalData also deletes downloaded data when set.
func (r TorrentRemove) WithDeleteLocalData(del bool) TorrentRemove {
	r.deleteLocalData = &del
	return r
}

func (r TorrentRemove) Method() string { return methodTorrentRemove }

func (r TorrentRemove) Arguments() (map[string]any, error) {
	args := map[string]any{}
	if r.deleteLocalData != nil {
		args["delete-local-data"] = *r.deleteLocalData
	}
	r.selector.apply(args)
	return args, nil
}

// SessionGet reads daemon-wide session settings.
type SessionGet struct {
	fields []string
}

// WithFields restricts the returned session keys.
func (r SessionGet) WithFields(keys ...string) SessionGet {
	r.fields = slices.Clone(keys)
	return r
}

func (r SessionGet) Method() string { return methodSessionGet }

func (r SessionGet) Arguments() (map[string]any, error) {
	args := map[string]any{}
	if len(r.fields) > 0 {
		args["fields"] = slices.Clone(r.fields)
	}
	return args, nil
}
