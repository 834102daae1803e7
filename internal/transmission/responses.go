package transmission

// TorrentList is the reply to torrent-get. Torrents keep the order the
// daemon sent them in. Removed is only filled for recently-active queries.
type TorrentList struct {
	Torrents []Torrent
	Removed  []int64
}

func (r *TorrentList) DecodeArguments(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return invalidType("object", "arguments")
	}
	raw, ok := obj["torrents"]
	if !ok || raw == nil {
		return missingField("torrents")
	}
	items, ok := raw.([]any)
	if !ok {
		return invalidType("array", "torrents")
	}
	torrents := make([]Torrent, 0, len(items))
	for _, item := range items {
		t, err := decodeTorrent(item)
		if err != nil {
			return err
		}
		torrents = append(torrents, t)
	}

	var removed []int64
	if raw, ok := obj["removed"]; ok && raw != nil {
		if err := decodeList(raw, "removed", &removed, asInt); err != nil {
			return err
		}
	}

	r.Torrents = torrents
	r.Removed = removed
	return nil
}

// TorrentAdded is the reply to torrent-add. Duplicate is set when the daemon
// already had the torrent and returned the existing one instead.
type TorrentAdded struct {
	ID         int64
	Name       string
	HashString string
	Duplicate  bool
}

// addedKeys are checked in order; the first present key wins.
var addedKeys = []struct {
	key       string
	duplicate bool
}{
	{key: "torrent-added", duplicate: false},
	{key: "torrent-duplicate", duplicate: true},
}

func (r *TorrentAdded) DecodeArguments(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return invalidType("object", "arguments")
	}
	for _, alt := range addedKeys {
		raw, ok := obj[alt.key]
		if !ok {
			continue
		}
		rec, err := newRecord(raw, alt.key)
		if err != nil {
			return err
		}
		added := TorrentAdded{
			ID:         rec.intField("id"),
			Name:       rec.stringField("name"),
			HashString: rec.stringField("hashString"),
			Duplicate:  alt.duplicate,
		}
		if rec.err != nil {
			return rec.err
		}
		*r = added
		return nil
	}
	return missingField(addedKeys[0].key)
}

// Ack is the reply to methods that return nothing of interest.
type Ack struct{}

func (*Ack) DecodeArguments(any) error { return nil }

// SessionInfo holds the subset of session-get the client surfaces.
// Raw keeps the full arguments object for callers that need more.
type SessionInfo struct {
	Version           string
	RPCVersion        int64
	RPCVersionMinimum int64
	DownloadDir       string
	SessionID         string
	Raw               map[string]any
}

func (r *SessionInfo) DecodeArguments(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return invalidType("object", "arguments")
	}
	info := SessionInfo{Raw: obj}
	var err error
	if info.Version, err = optionalString(obj, "version"); err != nil {
		return err
	}
	if info.RPCVersion, err = optionalInt(obj, "rpc-version"); err != nil {
		return err
	}
	if info.RPCVersionMinimum, err = optionalInt(obj, "rpc-version-minimum"); err != nil {
		return err
	}
	if info.DownloadDir, err = optionalString(obj, "download-dir"); err != nil {
		return err
	}
	if info.SessionID, err = optionalString(obj, "session-id"); err != nil {
		return err
	}
	*r = info
	return nil
}

func optionalString(obj map[string]any, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return "", nil
	}
	return asString(raw, key)
}

func optionalInt(obj map[string]any, key string) (int64, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return 0, nil
	}
	return asInt(raw, key)
}
