package transmission

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// decodeTorrent populates a Torrent from one element of the "torrents" array.
// Attributes absent from obj (or null) stay unset; unknown keys are ignored.
func decodeTorrent(v any) (Torrent, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Torrent{}, invalidType("object", "torrents")
	}
	var t Torrent
	for _, spec := range catalog {
		raw, ok := obj[spec.key]
		if !ok || raw == nil {
			continue
		}
		if err := assign(spec.target(&t), raw, spec.key); err != nil {
			return Torrent{}, err
		}
	}
	return t, nil
}

// assign stores v into the field pointer dst. The pointer type selects the
// conversion, so the catalog never needs per-field decode functions.
func assign(dst, v any, key string) error {
	switch p := dst.(type) {
	case **int64:
		n, err := asInt(v, key)
		if err != nil {
			return err
		}
		*p = &n
	case **float64:
		f, err := asFloat(v, key)
		if err != nil {
			return err
		}
		*p = &f
	case **string:
		s, err := asString(v, key)
		if err != nil {
			return err
		}
		*p = &s
	case **bool:
		b, err := asBool(v, key)
		if err != nil {
			return err
		}
		*p = &b
	case **time.Time:
		n, err := asInt(v, key)
		if err != nil {
			return err
		}
		ts := time.Unix(n, 0).UTC()
		*p = &ts
	case **Status:
		n, err := asInt(v, key)
		if err != nil {
			return err
		}
		if !validStatus(n) {
			return invalidType("number", key)
		}
		s := Status(n)
		*p = &s
	case **Priority:
		pr, err := asPriority(v, key)
		if err != nil {
			return err
		}
		*p = &pr
	case *[]Priority:
		return decodeList(v, key, p, asPriority)
	case *[]bool:
		return decodeList(v, key, p, asFlag)
	case *[]string:
		return decodeList(v, key, p, asString)
	case *[]File:
		return decodeList(v, key, p, decodeFile)
	case *[]FileStat:
		return decodeList(v, key, p, decodeFileStat)
	case *[]Peer:
		return decodeList(v, key, p, decodePeer)
	case *[]Tracker:
		return decodeList(v, key, p, decodeTracker)
	case **PeersFrom:
		pf, err := decodePeersFrom(v, key)
		if err != nil {
			return err
		}
		*p = &pf
	default:
		return invalidType("supported field", key)
	}
	return nil
}

func isSet(dst any) bool {
	switch p := dst.(type) {
	case **int64:
		return *p != nil
	case **float64:
		return *p != nil
	case **string:
		return *p != nil
	case **bool:
		return *p != nil
	case **time.Time:
		return *p != nil
	case **Status:
		return *p != nil
	case **Priority:
		return *p != nil
	case **PeersFrom:
		return *p != nil
	case *[]Priority:
		return *p != nil
	case *[]bool:
		return *p != nil
	case *[]string:
		return *p != nil
	case *[]File:
		return *p != nil
	case *[]FileStat:
		return *p != nil
	case *[]Peer:
		return *p != nil
	case *[]Tracker:
		return *p != nil
	default:
		return false
	}
}

// valueOf dereferences a catalog target, reporting false when it is unset.
func valueOf(dst any) (any, bool) {
	if !isSet(dst) {
		return nil, false
	}
	switch p := dst.(type) {
	case **int64:
		return **p, true
	case **float64:
		return **p, true
	case **string:
		return **p, true
	case **bool:
		return **p, true
	case **time.Time:
		return **p, true
	case **Status:
		return **p, true
	case **Priority:
		return **p, true
	case **PeersFrom:
		return **p, true
	case *[]Priority:
		return *p, true
	case *[]bool:
		return *p, true
	case *[]string:
		return *p, true
	case *[]File:
		return *p, true
	case *[]FileStat:
		return *p, true
	case *[]Peer:
		return *p, true
	case *[]Tracker:
		return *p, true
	default:
		return nil, false
	}
}

// decodeList decodes a JSON array element by element. A present empty array
// yields a non-nil empty slice so it stays distinguishable from "absent".
func decodeList[T any](v any, key string, dst *[]T, elem func(any, string) (T, error)) error {
	items, ok := v.([]any)
	if !ok {
		return invalidType("array", key)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		decoded, err := elem(item, key)
		if err != nil {
			return err
		}
		out = append(out, decoded)
	}
	*dst = out
	return nil
}

func asInt(v any, key string) (int64, error) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, invalidType("number", key)
	}
	if n, err := num.Int64(); err == nil {
		return n, nil
	}
	// Some daemons emit integral values as 1.0 or in exponent form.
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, invalidType("number", key)
	}
	return int64(f), nil
}

func asFloat(v any, key string) (float64, error) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, invalidType("number", key)
	}
	f, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		return 0, invalidType("number", key)
	}
	return f, nil
}

func asString(v any, key string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalidType("string", key)
	}
	return s, nil
}

func asBool(v any, key string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, invalidType("boolean", key)
	}
	return b, nil
}

// asFlag accepts a boolean or the 0/1 integers older daemons send for
// per-file flags such as "wanted".
func asFlag(v any, key string) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	n, err := asInt(v, key)
	if err != nil {
		return false, invalidType("boolean", key)
	}
	return n != 0, nil
}

func asPriority(v any, key string) (Priority, error) {
	n, err := asInt(v, key)
	if err != nil {
		return PriorityNormal, err
	}
	if !validPriority(n) {
		return PriorityNormal, invalidType("number", key)
	}
	return Priority(n), nil
}

// record reads required attributes from a nested object. The first failure
// sticks so decoders can read every attribute and check err once.
type record struct {
	obj    map[string]any
	parent string
	err    error
}

func newRecord(v any, parent string) (*record, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalidType("object", parent)
	}
	return &record{obj: obj, parent: parent}, nil
}

func (r *record) path(key string) string {
	return r.parent + "." + key
}

func (r *record) value(key string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.obj[key]
	if !ok || v == nil {
		r.err = missingField(r.path(key))
		return nil, false
	}
	return v, true
}

func (r *record) intField(key string) int64 {
	v, ok := r.value(key)
	if !ok {
		return 0
	}
	n, err := asInt(v, r.path(key))
	r.err = err
	return n
}

func (r *record) optionalIntField(key string) int64 {
	if r.err != nil {
		return 0
	}
	if v, ok := r.obj[key]; !ok || v == nil {
		return 0
	}
	return r.intField(key)
}

func (r *record) floatField(key string) float64 {
	v, ok := r.value(key)
	if !ok {
		return 0
	}
	f, err := asFloat(v, r.path(key))
	r.err = err
	return f
}

func (r *record) stringField(key string) string {
	v, ok := r.value(key)
	if !ok {
		return ""
	}
	s, err := asString(v, r.path(key))
	r.err = err
	return s
}

func (r *record) boolField(key string) bool {
	v, ok := r.value(key)
	if !ok {
		return false
	}
	b, err := asFlag(v, r.path(key))
	r.err = err
	return b
}

func (r *record) priorityField(key string) Priority {
	v, ok := r.value(key)
	if !ok {
		return PriorityNormal
	}
	p, err := asPriority(v, r.path(key))
	r.err = err
	return p
}

func decodeFile(v any, parent string) (File, error) {
	r, err := newRecord(v, parent)
	if err != nil {
		return File{}, err
	}
	f := File{
		BytesCompleted: r.intField("bytesCompleted"),
		Length:         r.intField("length"),
		Name:           r.stringField("name"),
	}
	return f, r.err
}

func decodeFileStat(v any, parent string) (FileStat, error) {
	r, err := newRecord(v, parent)
	if err != nil {
		return FileStat{}, err
	}
	fs := FileStat{
		BytesCompleted: r.intField("bytesCompleted"),
		Wanted:         r.boolField("wanted"),
		Priority:       r.priorityField("priority"),
	}
	return fs, r.err
}

func decodePeer(v any, parent string) (Peer, error) {
	r, err := newRecord(v, parent)
	if err != nil {
		return Peer{}, err
	}
	p := Peer{
		Address:            r.stringField("address"),
		ClientName:         r.stringField("clientName"),
		ClientIsChoked:     r.boolField("clientIsChoked"),
		ClientIsInterested: r.boolField("clientIsInterested"),
		IsDownloadingFrom:  r.boolField("isDownloadingFrom"),
		IsEncrypted:        r.boolField("isEncrypted"),
		IsIncoming:         r.boolField("isIncoming"),
		IsUploadingTo:      r.boolField("isUploadingTo"),
		PeerIsChoked:       r.boolField("peerIsChoked"),
		PeerIsInterested:   r.boolField("peerIsInterested"),
		Port:               r.intField("port"),
		Progress:           r.floatField("progress"),
		RateToClient:       r.intField("rateToClient"),
		RateToPeer:         r.intField("rateToPeer"),
	}
	return p, r.err
}

func decodePeersFrom(v any, parent string) (PeersFrom, error) {
	r, err := newRecord(v, parent)
	if err != nil {
		return PeersFrom{}, err
	}
	pf := PeersFrom{
		FromCache:    r.intField("fromCache"),
		FromIncoming: r.intField("fromIncoming"),
		FromPex:      r.intField("fromPex"),
		FromTracker:  r.intField("fromTracker"),
		FromDHT:      r.optionalIntField("fromDht"),
		FromLPD:      r.optionalIntField("fromLpd"),
	}
	return pf, r.err
}

func decodeTracker(v any, parent string) (Tracker, error) {
	r, err := newRecord(v, parent)
	if err != nil {
		return Tracker{}, err
	}
	tr := Tracker{
		ID:       r.optionalIntField("id"),
		Announce: r.stringField("announce"),
		Scrape:   r.stringField("scrape"),
		Tier:     r.intField("tier"),
	}
	return tr, r.err
}
