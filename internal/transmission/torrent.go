package transmission

import (
	"strings"
	"time"
)

// Torrent holds the attributes the daemon reported for one torrent. Every
// attribute is optional: a nil pointer or nil slice means the attribute was
// not requested or not reported. Values are only ever produced by decoding a
// torrent-get response; the zero Torrent is the all-absent record.
type Torrent struct {
	ActivityDate        *time.Time
	AddedDate           *time.Time
	AnnounceResponse    *string
	AnnounceURL         *string
	BandwidthPriority   *Priority
	Comment             *string
	CorruptEver         *int64
	Creator             *string
	DateCreated         *time.Time
	DesiredAvailable    *int64
	DoneDate            *time.Time
	DownloadDir         *string
	DownloadedEver      *int64
	Downloaders         *int64
	DownloadLimit       *int64
	DownloadLimited     *bool
	Error               *int64
	ErrorString         *string
	ETA                 *int64
	Files               []File
	FileStats           []FileStat
	HashString          *string
	HaveUnchecked       *int64
	HaveValid           *int64
	HonorsSessionLimits *bool
	ID                  *int64
	IsFinished          *bool
	IsPrivate           *bool
	Labels              []string
	LastAnnounceTime    *time.Time
	LastScrapeTime      *time.Time
	Leechers            *int64
	LeftUntilDone       *int64
	MagnetLink          *string
	ManualAnnounceTime  *time.Time
	MaxConnectedPeers   *int64
	Name                *string
	NextAnnounceTime    *time.Time
	NextScrapeTime      *time.Time
	PeerLimit           *int64
	Peers               []Peer
	PeersConnected      *int64
	PeersFrom           *PeersFrom
	PeersGettingFromUs  *int64
	PeersKnown          *int64
	PeersSendingToUs    *int64
	PercentDone         *float64
	Pieces              *string
	PieceCount          *int64
	PieceSize           *int64
	Priorities          []Priority
	QueuePosition       *int64
	RateDownload        *int64
	RateUpload          *int64
	RecheckProgress     *float64
	ScrapeResponse      *string
	ScrapeURL           *string
	Seeders             *int64
	SeedRatioLimit      *float64
	SeedRatioMode       *int64
	SizeWhenDone        *int64
	StartDate           *time.Time
	Status              *Status
	SwarmSpeed          *int64
	TimesCompleted      *int64
	Trackers            []Tracker
	TotalSize           *int64
	TorrentFile         *string
	UploadedEver        *int64
	UploadLimit         *int64
	UploadLimited       *bool
	UploadRatio         *float64
	Wanted              []bool
	Webseeds            []string
	WebseedsSendingToUs *int64
}

// File describes one file inside a torrent.
type File struct {
	BytesCompleted int64
	Length         int64
	Name           string
}

// FileStat carries the mutable per-file state.
type FileStat struct {
	BytesCompleted int64
	Wanted         bool
	Priority       Priority
}

// Peer describes one connected peer.
type Peer struct {
	Address            string
	ClientName         string
	ClientIsChoked     bool
	ClientIsInterested bool
	IsDownloadingFrom  bool
	IsEncrypted        bool
	IsIncoming         bool
	IsUploadingTo      bool
	PeerIsChoked       bool
	PeerIsInterested   bool
	Port               int64
	Progress           float64
	RateToClient       int64
	RateToPeer         int64
}

// PeersFrom counts known peers by discovery source.
type PeersFrom struct {
	FromCache    int64
	FromIncoming int64
	FromPex      int64
	FromTracker  int64
	FromDHT      int64
	FromLPD      int64
}

// Tracker is one announce/scrape endpoint of a torrent.
type Tracker struct {
	ID       int64
	Announce string
	Scrape   string
	Tier     int64
}

// Status is the torrent's activity state.
type Status int

const (
	StatusStopped Status = iota
	StatusCheckWait
	StatusCheck
	StatusDownloadWait
	StatusDownload
	StatusSeedWait
	StatusSeed
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusCheckWait:
		return "check queued"
	case StatusCheck:
		return "checking"
	case StatusDownloadWait:
		return "download queued"
	case StatusDownload:
		return "downloading"
	case StatusSeedWait:
		return "seed queued"
	case StatusSeed:
		return "seeding"
	default:
		return "unknown"
	}
}

// Active reports whether the torrent is doing or waiting to do work.
func (s Status) Active() bool {
	return s != StatusStopped
}

func validStatus(n int64) bool {
	return n >= int64(StatusStopped) && n <= int64(StatusSeed)
}

// Priority is the bandwidth or file priority.
type Priority int

const (
	PriorityLow    Priority = -1
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 1
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParsePriority accepts the names returned by Priority.String.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, true
	case "normal", "":
		return PriorityNormal, true
	case "high":
		return PriorityHigh, true
	default:
		return PriorityNormal, false
	}
}

func validPriority(n int64) bool {
	return n >= int64(PriorityLow) && n <= int64(PriorityHigh)
}

// Has reports whether the attribute identified by f was present in the
// response this torrent was decoded from.
func (t *Torrent) Has(f Field) bool {
	spec, ok := lookupField(f)
	if !ok {
		return false
	}
	return isSet(spec.target(t))
}

// Value returns the attribute f holds, dereferenced, and whether it is set.
func (t *Torrent) Value(f Field) (any, bool) {
	spec, ok := lookupField(f)
	if !ok {
		return nil, false
	}
	return valueOf(spec.target(t))
}

// Values maps the wire key of every set field in fields to its value.
// An empty fields list means all fields.
func (t *Torrent) Values(fields ...Field) map[string]any {
	if len(fields) == 0 {
		fields = AllFields()
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := t.Value(f); ok {
			out[f.Key()] = v
		}
	}
	return out
}

// DisplayName returns the name or a placeholder when it was not requested.
func (t *Torrent) DisplayName() string {
	if t.Name != nil && *t.Name != "" {
		return *t.Name
	}
	if t.HashString != nil {
		return *t.HashString
	}
	return "(unnamed)"
}
