package transmission

import (
	"strings"
	"unicode"
)

// Field identifies one Torrent attribute. The catalog below maps each Field to
// its wire key and value kind; it is the single source both for selective
// torrent-get queries and for decoding torrent records.
type Field int

const (
	FieldActivityDate Field = iota
	FieldAddedDate
	FieldAnnounceResponse
	FieldAnnounceURL
	FieldBandwidthPriority
	FieldComment
	FieldCorruptEver
	FieldCreator
	FieldDateCreated
	FieldDesiredAvailable
	FieldDoneDate
	FieldDownloadDir
	FieldDownloadedEver
	FieldDownloaders
	FieldDownloadLimit
	FieldDownloadLimited
	FieldError
	FieldErrorString
	FieldETA
	FieldFiles
	FieldFileStats
	FieldHashString
	FieldHaveUnchecked
	FieldHaveValid
	FieldHonorsSessionLimits
	FieldID
	FieldIsFinished
	FieldIsPrivate
	FieldLabels
	FieldLastAnnounceTime
	FieldLastScrapeTime
	FieldLeechers
	FieldLeftUntilDone
	FieldMagnetLink
	FieldManualAnnounceTime
	FieldMaxConnectedPeers
	FieldName
	FieldNextAnnounceTime
	FieldNextScrapeTime
	FieldPeerLimit
	FieldPeers
	FieldPeersConnected
	FieldPeersFrom
	FieldPeersGettingFromUs
	FieldPeersKnown
	FieldPeersSendingToUs
	FieldPercentDone
	FieldPieces
	FieldPieceCount
	FieldPieceSize
	FieldPriorities
	FieldQueuePosition
	FieldRateDownload
	FieldRateUpload
	FieldRecheckProgress
	FieldScrapeResponse
	FieldScrapeURL
	FieldSeeders
	FieldSeedRatioLimit
	FieldSeedRatioMode
	FieldSizeWhenDone
	FieldStartDate
	FieldStatus
	FieldSwarmSpeed
	FieldTimesCompleted
	FieldTrackers
	FieldTotalSize
	FieldTorrentFile
	FieldUploadedEver
	FieldUploadLimit
	FieldUploadLimited
	FieldUploadRatio
	FieldWanted
	FieldWebseeds
	FieldWebseedsSendingToUs

	fieldCount
)

// Kind is the JSON value kind a field decodes from.
type Kind int

const (
	KindNumber Kind = iota
	KindFloat
	KindString
	KindBool
	KindTime
	KindStatus
	KindPriority
	KindList
	KindRecord
	KindRecords
)

// JSONKind returns the JSON type name reported in decode errors.
func (k Kind) JSONKind() string {
	switch k {
	case KindNumber, KindFloat, KindTime, KindStatus, KindPriority:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindList, KindRecords:
		return "array"
	case KindRecord:
		return "object"
	default:
		return "unknown"
	}
}

type fieldSpec struct {
	field  Field
	name   string
	key    string
	kind   Kind
	target func(*Torrent) any
}

// keyExceptions lists fields whose wire key does not follow the lowerCamel
// rule. The daemon kept the hyphenated spelling for these.
var keyExceptions = map[string]string{
	"peer_limit": "peer-limit",
}

var catalog = buildCatalog([]fieldSpec{
	{field: FieldActivityDate, name: "activity_date", kind: KindTime, target: func(t *Torrent) any { return &t.ActivityDate }},
	{field: FieldAddedDate, name: "added_date", kind: KindTime, target: func(t *Torrent) any { return &t.AddedDate }},
	{field: FieldAnnounceResponse, name: "announce_response", kind: KindString, target: func(t *Torrent) any { return &t.AnnounceResponse }},
	{field: FieldAnnounceURL, name: "announce_url", kind: KindString, target: func(t *Torrent) any { return &t.AnnounceURL }},
	{field: FieldBandwidthPriority, name: "bandwidth_priority", kind: KindPriority, target: func(t *Torrent) any { return &t.BandwidthPriority }},
	{field: FieldComment, name: "comment", kind: KindString, target: func(t *Torrent) any { return &t.Comment }},
	{field: FieldCorruptEver, name: "corrupt_ever", kind: KindNumber, target: func(t *Torrent) any { return &t.CorruptEver }},
	{field: FieldCreator, name: "creator", kind: KindString, target: func(t *Torrent) any { return &t.Creator }},
	{field: FieldDateCreated, name: "date_created", kind: KindTime, target: func(t *Torrent) any { return &t.DateCreated }},
	{field: FieldDesiredAvailable, name: "desired_available", kind: KindNumber, target: func(t *Torrent) any { return &t.DesiredAvailable }},
	{field: FieldDoneDate, name: "done_date", kind: KindTime, target: func(t *Torrent) any { return &t.DoneDate }},
	{field: FieldDownloadDir, name: "download_dir", kind: KindString, target: func(t *Torrent) any { return &t.DownloadDir }},
	{field: FieldDownloadedEver, name: "downloaded_ever", kind: KindNumber, target: func(t *Torrent) any { return &t.DownloadedEver }},
	{field: FieldDownloaders, name: "downloaders", kind: KindNumber, target: func(t *Torrent) any { return &t.Downloaders }},
	{field: FieldDownloadLimit, name: "download_limit", kind: KindNumber, target: func(t *Torrent) any { return &t.DownloadLimit }},
	{field: FieldDownloadLimited, name: "download_limited", kind: KindBool, target: func(t *Torrent) any { return &t.DownloadLimited }},
	{field: FieldError, name: "error", kind: KindNumber, target: func(t *Torrent) any { return &t.Error }},
	{field: FieldErrorString, name: "error_string", kind: KindString, target: func(t *Torrent) any { return &t.ErrorString }},
	{field: FieldETA, name: "eta", kind: KindNumber, target: func(t *Torrent) any { return &t.ETA }},
	{field: FieldFiles, name: "files", kind: KindRecords, target: func(t *Torrent) any { return &t.Files }},
	{field: FieldFileStats, name: "file_stats", kind: KindRecords, target: func(t *Torrent) any { return &t.FileStats }},
	{field: FieldHashString, name: "hash_string", kind: KindString, target: func(t *Torrent) any { return &t.HashString }},
	{field: FieldHaveUnchecked, name: "have_unchecked", kind: KindNumber, target: func(t *Torrent) any { return &t.HaveUnchecked }},
	{field: FieldHaveValid, name: "have_valid", kind: KindNumber, target: func(t *Torrent) any { return &t.HaveValid }},
	{field: FieldHonorsSessionLimits, name: "honors_session_limits", kind: KindBool, target: func(t *Torrent) any { return &t.HonorsSessionLimits }},
	{field: FieldID, name: "id", kind: KindNumber, target: func(t *Torrent) any { return &t.ID }},
	{field: FieldIsFinished, name: "is_finished", kind: KindBool, target: func(t *Torrent) any { return &t.IsFinished }},
	{field: FieldIsPrivate, name: "is_private", kind: KindBool, target: func(t *Torrent) any { return &t.IsPrivate }},
	{field: FieldLabels, name: "labels", kind: KindList, target: func(t *Torrent) any { return &t.Labels }},
	{field: FieldLastAnnounceTime, name: "last_announce_time", kind: KindTime, target: func(t *Torrent) any { return &t.LastAnnounceTime }},
	{field: FieldLastScrapeTime, name: "last_scrape_time", kind: KindTime, target: func(t *Torrent) any { return &t.LastScrapeTime }},
	{field: FieldLeechers, name: "leechers", kind: KindNumber, target: func(t *Torrent) any { return &t.Leechers }},
	{field: FieldLeftUntilDone, name: "left_until_done", kind: KindNumber, target: func(t *Torrent) any { return &t.LeftUntilDone }},
	{field: FieldMagnetLink, name: "magnet_link", kind: KindString, target: func(t *Torrent) any { return &t.MagnetLink }},
	{field: FieldManualAnnounceTime, name: "manual_announce_time", kind: KindTime, target: func(t *Torrent) any { return &t.ManualAnnounceTime }},
	{field: FieldMaxConnectedPeers, name: "max_connected_peers", kind: KindNumber, target: func(t *Torrent) any { return &t.MaxConnectedPeers }},
	{field: FieldName, name: "name", kind: KindString, target: func(t *Torrent) any { return &t.Name }},
	{field: FieldNextAnnounceTime, name: "next_announce_time", kind: KindTime, target: func(t *Torrent) any { return &t.NextAnnounceTime }},
	{field: FieldNextScrapeTime, name: "next_scrape_time", kind: KindTime, target: func(t *Torrent) any { return &t.NextScrapeTime }},
	{field: FieldPeerLimit, name: "peer_limit", kind: KindNumber, target: func(t *Torrent) any { return &t.PeerLimit }},
	{field: FieldPeers, name: "peers", kind: KindRecords, target: func(t *Torrent) any { return &t.Peers }},
	{field: FieldPeersConnected, name: "peers_connected", kind: KindNumber, target: func(t *Torrent) any { return &t.PeersConnected }},
	{field: FieldPeersFrom, name: "peers_from", kind: KindRecord, target: func(t *Torrent) any { return &t.PeersFrom }},
	{field: FieldPeersGettingFromUs, name: "peers_getting_from_us", kind: KindNumber, target: func(t *Torrent) any { return &t.PeersGettingFromUs }},
	{field: FieldPeersKnown, name: "peers_known", kind: KindNumber, target: func(t *Torrent) any { return &t.PeersKnown }},
	{field: FieldPeersSendingToUs, name: "peers_sending_to_us", kind: KindNumber, target: func(t *Torrent) any { return &t.PeersSendingToUs }},
	{field: FieldPercentDone, name: "percent_done", kind: KindFloat, target: func(t *Torrent) any { return &t.PercentDone }},
	{field: FieldPieces, name: "pieces", kind: KindString, target: func(t *Torrent) any { return &t.Pieces }},
	{field: FieldPieceCount, name: "piece_count", kind: KindNumber, target: func(t *Torrent) any { return &t.PieceCount }},
	{field: FieldPieceSize, name: "piece_size", kind: KindNumber, target: func(t *Torrent) any { return &t.PieceSize }},
	{field: FieldPriorities, name: "priorities", kind: KindList, target: func(t *Torrent) any { return &t.Priorities }},
	{field: FieldQueuePosition, name: "queue_position", kind: KindNumber, target: func(t *Torrent) any { return &t.QueuePosition }},
	{field: FieldRateDownload, name: "rate_download", kind: KindNumber, target: func(t *Torrent) any { return &t.RateDownload }},
	{field: FieldRateUpload, name: "rate_upload", kind: KindNumber, target: func(t *Torrent) any { return &t.RateUpload }},
	{field: FieldRecheckProgress, name: "recheck_progress", kind: KindFloat, target: func(t *Torrent) any { return &t.RecheckProgress }},
	{field: FieldScrapeResponse, name: "scrape_response", kind: KindString, target: func(t *Torrent) any { return &t.ScrapeResponse }},
	{field: FieldScrapeURL, name: "scrape_url", kind: KindString, target: func(t *Torrent) any { return &t.ScrapeURL }},
	{field: FieldSeeders, name: "seeders", kind: KindNumber, target: func(t *Torrent) any { return &t.Seeders }},
	{field: FieldSeedRatioLimit, name: "seed_ratio_limit", kind: KindFloat, target: func(t *Torrent) any { return &t.SeedRatioLimit }},
	{field: FieldSeedRatioMode, name: "seed_ratio_mode", kind: KindNumber, target: func(t *Torrent) any { return &t.SeedRatioMode }},
	{field: FieldSizeWhenDone, name: "size_when_done", kind: KindNumber, target: func(t *Torrent) any { return &t.SizeWhenDone }},
	{field: FieldStartDate, name: "start_date", kind: KindTime, target: func(t *Torrent) any { return &t.StartDate }},
	{field: FieldStatus, name: "status", kind: KindStatus, target: func(t *Torrent) any { return &t.Status }},
	{field: FieldSwarmSpeed, name: "swarm_speed", kind: KindNumber, target: func(t *Torrent) any { return &t.SwarmSpeed }},
	{field: FieldTimesCompleted, name: "times_completed", kind: KindNumber, target: func(t *Torrent) any { return &t.TimesCompleted }},
	{field: FieldTrackers, name: "trackers", kind: KindRecords, target: func(t *Torrent) any { return &t.Trackers }},
	{field: FieldTotalSize, name: "total_size", kind: KindNumber, target: func(t *Torrent) any { return &t.TotalSize }},
	{field: FieldTorrentFile, name: "torrent_file", kind: KindString, target: func(t *Torrent) any { return &t.TorrentFile }},
	{field: FieldUploadedEver, name: "uploaded_ever", kind: KindNumber, target: func(t *Torrent) any { return &t.UploadedEver }},
	{field: FieldUploadLimit, name: "upload_limit", kind: KindNumber, target: func(t *Torrent) any { return &t.UploadLimit }},
	{field: FieldUploadLimited, name: "upload_limited", kind: KindBool, target: func(t *Torrent) any { return &t.UploadLimited }},
	{field: FieldUploadRatio, name: "upload_ratio", kind: KindFloat, target: func(t *Torrent) any { return &t.UploadRatio }},
	{field: FieldWanted, name: "wanted", kind: KindList, target: func(t *Torrent) any { return &t.Wanted }},
	{field: FieldWebseeds, name: "webseeds", kind: KindList, target: func(t *Torrent) any { return &t.Webseeds }},
	{field: FieldWebseedsSendingToUs, name: "webseeds_sending_to_us", kind: KindNumber, target: func(t *Torrent) any { return &t.WebseedsSendingToUs }},
})

var fieldsByKey = func() map[string]Field {
	m := make(map[string]Field, len(catalog))
	for _, spec := range catalog {
		m[spec.key] = spec.field
	}
	return m
}()

func buildCatalog(specs []fieldSpec) []fieldSpec {
	if len(specs) != int(fieldCount) {
		panic("transmission: field catalog out of sync with Field constants")
	}
	for i := range specs {
		if specs[i].field != Field(i) {
			panic("transmission: field catalog out of order at " + specs[i].name)
		}
		specs[i].key = wireKey(specs[i].name)
	}
	return specs
}

// wireKey derives the camel-case wire key from a snake_case field name.
func wireKey(name string) string {
	if key, ok := keyExceptions[name]; ok {
		return key
	}
	var b strings.Builder
	b.Grow(len(name))
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper && b.Len() > 0 {
			r = unicode.ToUpper(r)
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

func lookupField(f Field) (fieldSpec, bool) {
	if f < 0 || f >= fieldCount {
		return fieldSpec{}, false
	}
	return catalog[f], true
}

// Key returns the wire key sent in the torrent-get "fields" list.
func (f Field) Key() string {
	spec, ok := lookupField(f)
	if !ok {
		return ""
	}
	return spec.key
}

// Kind returns the value kind the field decodes from.
func (f Field) Kind() Kind {
	spec, ok := lookupField(f)
	if !ok {
		return KindNumber
	}
	return spec.kind
}

func (f Field) String() string {
	if key := f.Key(); key != "" {
		return key
	}
	return "unknown"
}

// AllFields returns every known field in catalog order.
func AllFields() []Field {
	fields := make([]Field, fieldCount)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// ParseField looks a field up by its wire key.
func ParseField(key string) (Field, bool) {
	f, ok := fieldsByKey[strings.TrimSpace(key)]
	return f, ok
}

// FieldKeys maps fields to their wire keys, preserving order.
func FieldKeys(fields []Field) []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if key := f.Key(); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
