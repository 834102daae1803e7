package transmission

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func mustArguments(t *testing.T, req Request) map[string]any {
	t.Helper()
	args, err := req.Arguments()
	if err != nil {
		t.Fatalf("%s Arguments returned error: %v", req.Method(), err)
	}
	// Round-trip through JSON so comparisons see wire values.
	data, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal arguments: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal arguments: %v", err)
	}
	return out
}

func TestTorrentGet_OmitsUnsetAndKeepsOrder(t *testing.T) {
	args := mustArguments(t, NewTorrentGet())
	if len(args) != 0 {
		t.Fatalf("empty TorrentGet arguments = %#v, want {}", args)
	}

	args = mustArguments(t, NewTorrentGet().WithFields())
	if _, ok := args["fields"]; ok {
		t.Fatalf("empty field list should omit fields: %#v", args)
	}

	args = mustArguments(t, NewTorrentGet().WithField(FieldName).WithField(FieldPeerLimit).WithID(3))
	fields, _ := args["fields"].([]any)
	if !reflect.DeepEqual(fields, []any{"name", "peer-limit"}) {
		t.Fatalf("fields = %#v, want [name peer-limit]", fields)
	}
	if !reflect.DeepEqual(args["ids"], []any{float64(3)}) {
		t.Fatalf("ids = %#v, want [3]", args["ids"])
	}
}

func TestTorrentGet_BuilderDoesNotMutateReceiver(t *testing.T) {
	base := NewTorrentGet().WithFields(FieldID)
	extended := base.WithField(FieldName).WithID(1)

	if got := base.Fields(); len(got) != 1 || got[0] != FieldID {
		t.Fatalf("base fields = %v, want [id]", got)
	}
	if !base.selector.IsAll() {
		t.Fatalf("base selector changed: %#v", base.selector)
	}
	if got := extended.Fields(); len(got) != 2 {
		t.Fatalf("extended fields = %v, want 2 entries", got)
	}
}

func TestTorrentAdd_PayloadIndependentOfCallOrder(t *testing.T) {
	a := NewTorrentAddFromSource("/srv/t.torrent").
		WithDownloadDir("/data").
		WithPaused(true).
		WithPeerLimit(40)
	b := NewTorrentAddFromSource("/srv/t.torrent").
		WithPeerLimit(40).
		WithPaused(true).
		WithDownloadDir("/data")

	argsA := mustArguments(t, a)
	argsB := mustArguments(t, b)
	if !reflect.DeepEqual(argsA, argsB) {
		t.Fatalf("payload depends on call order: %#v vs %#v", argsA, argsB)
	}
	want := map[string]any{
		"filename":     "/srv/t.torrent",
		"download-dir": "/data",
		"paused":       true,
		"peer-limit":   float64(40),
	}
	if !reflect.DeepEqual(argsA, want) {
		t.Fatalf("arguments = %#v, want %#v", argsA, want)
	}

	minimal := mustArguments(t, NewTorrentAddFromSource("x"))
	for _, key := range []string{"download-dir", "paused", "peer-limit", "metainfo", "labels", "bandwidthPriority"} {
		if _, ok := minimal[key]; ok {
			t.Fatalf("unset %q present in %#v", key, minimal)
		}
	}
}

func TestTorrentAdd_FromReaderAndFile(t *testing.T) {
	data := []byte("d8:announce3:urle")

	req, err := NewTorrentAddFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewTorrentAddFromReader returned error: %v", err)
	}
	args := mustArguments(t, req)
	if args["metainfo"] != base64.StdEncoding.EncodeToString(data) {
		t.Fatalf("metainfo = %v, want base64 of input", args["metainfo"])
	}
	if _, ok := args["filename"]; ok {
		t.Fatalf("filename should be absent: %#v", args)
	}

	path := filepath.Join(t.TempDir(), "x.torrent")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	fromFile, err := NewTorrentAddFromFile(path)
	if err != nil {
		t.Fatalf("NewTorrentAddFromFile returned error: %v", err)
	}
	if !reflect.DeepEqual(mustArguments(t, fromFile), args) {
		t.Fatalf("file and reader payloads differ")
	}

	if _, err := NewTorrentAddFromFile(filepath.Join(t.TempDir(), "missing.torrent")); err == nil {
		t.Fatalf("NewTorrentAddFromFile returned nil error for missing file")
	}
}

func TestTorrentAdd_ZeroValueFailsToEncode(t *testing.T) {
	_, err := TorrentAdd{}.Arguments()
	if err == nil {
		t.Fatalf("Arguments returned nil error, want error")
	}
	if _, err := encodeEnvelope("torrent-add", nil); err != nil {
		t.Fatalf("encodeEnvelope(nil args) returned error: %v", err)
	}
}

func TestTorrentSet_OnlySetValuesAndSelector(t *testing.T) {
	base := NewTorrentSet(Hashes("aa", "bb"))
	req := base.
		WithUploadLimit(50).
		WithUploadLimited(true).
		WithSeedRatioLimit(1.5).
		WithFilePriority(PriorityHigh, 0, 2).
		WithFilesUnwanted(1)

	args := mustArguments(t, req)
	want := map[string]any{
		"ids":            []any{"aa", "bb"},
		"uploadLimit":    float64(50),
		"uploadLimited":  true,
		"seedRatioLimit": 1.5,
		"priority-high":  []any{float64(0), float64(2)},
		"files-unwanted": []any{float64(1)},
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("arguments = %#v, want %#v", args, want)
	}

	if got := mustArguments(t, base); !reflect.DeepEqual(got, map[string]any{"ids": []any{"aa", "bb"}}) {
		t.Fatalf("base arguments mutated: %#v", got)
	}

	all := mustArguments(t, NewTorrentSet(AllTorrents()).WithLocation("/new"))
	if _, ok := all["ids"]; ok {
		t.Fatalf("all selector should omit ids: %#v", all)
	}
}

func TestTorrentAction_MethodsAndSelectors(t *testing.T) {
	tests := []struct {
		action Action
		sel    Selector
		method string
		ids    any
	}{
		{ActionStart, AllTorrents(), "torrent-start", nil},
		{ActionStartNow, IDs(1), "torrent-start-now", []any{float64(1)}},
		{ActionStop, Torrents([]int64{1, 2}, []string{"cafe"}), "torrent-stop", []any{float64(1), float64(2), "cafe"}},
		{ActionVerify, RecentlyActive(), "torrent-verify", "recently-active"},
		{ActionReannounce, IDs(), "torrent-reannounce", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := NewTorrentAction(tt.action, tt.sel)
			if req.Method() != tt.method {
				t.Fatalf("Method = %q, want %q", req.Method(), tt.method)
			}
			args := mustArguments(t, req)
			got, ok := args["ids"]
			if tt.ids == nil {
				if ok {
					t.Fatalf("ids = %#v, want absent", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.ids) {
				t.Fatalf("ids = %#v, want %#v", got, tt.ids)
			}
		})
	}
}

func TestTorrentRemoveAndSessionGet(t *testing.T) {
	args := mustArguments(t, NewTorrentRemove(IDs(5)).WithDeleteLocalData(true))
	if args["delete-local-data"] != true {
		t.Fatalf("delete-local-data = %v, want true", args["delete-local-data"])
	}
	args = mustArguments(t, NewTorrentRemove(IDs(5)))
	if _, ok := args["delete-local-data"]; ok {
		t.Fatalf("unset delete-local-data present: %#v", args)
	}

	args = mustArguments(t, SessionGet{}.WithFields("version"))
	if !reflect.DeepEqual(args["fields"], []any{"version"}) {
		t.Fatalf("session-get fields = %#v, want [version]", args["fields"])
	}
}

func TestEncodeEnvelope_WrapsMarshalFailure(t *testing.T) {
	_, err := encodeEnvelope("torrent-set", map[string]any{"bad": make(chan int)})
	var encodeErr *EncodeError
	if !errors.As(err, &encodeErr) {
		t.Fatalf("error = %v, want EncodeError", err)
	}
	if !strings.Contains(err.Error(), "torrent-set") {
		t.Fatalf("error = %q, want method name", err.Error())
	}
}
