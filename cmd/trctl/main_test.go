package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/five82/trflyer/internal/config"
	"github.com/five82/trflyer/internal/transmission"
)

type rpcCall struct {
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments"`
}

type fakeDaemon struct {
	*httptest.Server
	mu    sync.Mutex
	calls []rpcCall
}

// newFakeDaemon serves the session handshake and answers every call with
// reply(method).
func newFakeDaemon(t *testing.T, reply func(method string) string) *fakeDaemon {
	t.Helper()
	d := &fakeDaemon{}
	d.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(transmission.SessionHeader) != "token-1" {
			w.Header().Set(transmission.SessionHeader, "token-1")
			w.WriteHeader(http.StatusConflict)
			return
		}
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d.mu.Lock()
		d.calls = append(d.calls, call)
		d.mu.Unlock()
		_, _ = io.WriteString(w, reply(call.Method))
	}))
	t.Cleanup(d.Close)
	return d
}

func (d *fakeDaemon) lastCall(t *testing.T) rpcCall {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		t.Fatalf("daemon received no calls")
	}
	return d.calls[len(d.calls)-1]
}

// runTrctl executes the root command against url and returns stdout.
func runTrctl(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvRPCURL, "")
	t.Setenv(config.EnvAuth, "")

	var stdout bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	base := []string{"--config", filepath.Join(t.TempDir(), "missing.toml")}
	if url != "" {
		base = append(base, "--url", url)
	}
	root.SetArgs(append(args, base...))
	err := root.Execute()
	return stdout.String(), err
}

const ack = `{"result":"success","arguments":{}}`

func TestParseSelector(t *testing.T) {
	hash := strings.Repeat("ab", 20)
	tests := []struct {
		name    string
		args    []string
		all     bool
		wantErr bool
	}{
		{name: "all", args: []string{"ALL"}, all: true},
		{name: "recent", args: []string{"recent"}},
		{name: "ids", args: []string{"1", "2,3"}},
		{name: "hash", args: []string{hash}},
		{name: "empty", args: []string{" , "}, wantErr: true},
		{name: "all_mixed", args: []string{"all", "1"}, wantErr: true},
		{name: "zero", args: []string{"0"}, wantErr: true},
		{name: "garbage", args: []string{"abc"}, wantErr: true},
		{name: "short_hash", args: []string{"abcdef"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := parseSelector(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSelector(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if err == nil && sel.IsAll() != tt.all {
				t.Fatalf("parseSelector(%v).IsAll() = %v, want %v", tt.args, sel.IsAll(), tt.all)
			}
		})
	}
}

func TestFieldsCommandListsCatalog(t *testing.T) {
	out, err := runTrctl(t, "", "fields")
	if err != nil {
		t.Fatalf("fields returned error: %v", err)
	}
	for _, want := range []string{"KEY", "hashString", "peer-limit", "trackers"} {
		if !strings.Contains(out, want) {
			t.Fatalf("fields output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != len(transmission.AllFields())+1 {
		t.Fatalf("fields output has %d lines, want %d", lines, len(transmission.AllFields())+1)
	}
}

func TestListCommand(t *testing.T) {
	d := newFakeDaemon(t, func(string) string {
		return `{"result":"success","arguments":{"torrents":[
			{"id":1,"name":"debian.iso","status":4,"percentDone":0.5,"rateDownload":2048,"uploadRatio":-1}
		]}}`
	})

	out, err := runTrctl(t, d.URL, "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	for _, want := range []string{"NAME", "debian.iso", "downloading", "50.0%", "2.0 KiB/s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}

	call := d.lastCall(t)
	if call.Method != "torrent-get" {
		t.Fatalf("method = %q, want torrent-get", call.Method)
	}
	if _, ok := call.Arguments["ids"]; ok {
		t.Fatalf("list without arguments should not send ids: %v", call.Arguments)
	}
	fields, _ := call.Arguments["fields"].([]any)
	if len(fields) != len(listFields) || fields[0] != "id" {
		t.Fatalf("fields = %v, want the default list fields", call.Arguments["fields"])
	}
}

func TestListCommandJSONWithFields(t *testing.T) {
	d := newFakeDaemon(t, func(string) string {
		return `{"result":"success","arguments":{"torrents":[{"id":7,"hashString":"abc"}]}}`
	})

	out, err := runTrctl(t, d.URL, "list", "7", "--fields", "id,hashString", "--json")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	var got struct {
		Torrents []map[string]any `json:"torrents"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	want := []map[string]any{{"id": float64(7), "hashString": "abc"}}
	if !reflect.DeepEqual(got.Torrents, want) {
		t.Fatalf("torrents = %v, want %v", got.Torrents, want)
	}

	call := d.lastCall(t)
	if !reflect.DeepEqual(call.Arguments["ids"], []any{float64(7)}) {
		t.Fatalf("ids = %v, want [7]", call.Arguments["ids"])
	}
	if !reflect.DeepEqual(call.Arguments["fields"], []any{"id", "hashString"}) {
		t.Fatalf("fields = %v, want [id hashString]", call.Arguments["fields"])
	}
}

func TestListCommandRejectsUnknownField(t *testing.T) {
	if _, err := runTrctl(t, "", "list", "--fields", "bogus"); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("error = %v, want unknown field", err)
	}
}

func TestAddCommandSendsLocalFileAsMetainfo(t *testing.T) {
	d := newFakeDaemon(t, func(string) string {
		return `{"result":"success","arguments":{"torrent-duplicate":{"id":3,"name":"debian.iso","hashString":"abc"}}}`
	})
	path := filepath.Join(t.TempDir(), "debian.torrent")
	if err := os.WriteFile(path, []byte("d4:infoe"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := runTrctl(t, d.URL, "add", path, "--paused", "--label", "linux")
	if err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	if !strings.Contains(out, "already present as 3") {
		t.Fatalf("add output = %q, want duplicate notice", out)
	}

	args := d.lastCall(t).Arguments
	if args["metainfo"] != base64.StdEncoding.EncodeToString([]byte("d4:infoe")) {
		t.Fatalf("metainfo = %v", args["metainfo"])
	}
	if _, ok := args["filename"]; ok {
		t.Fatalf("local file should not be sent as filename")
	}
	if args["paused"] != true || !reflect.DeepEqual(args["labels"], []any{"linux"}) {
		t.Fatalf("arguments = %v", args)
	}
	if _, ok := args["download-dir"]; ok {
		t.Fatalf("unset download-dir was sent")
	}
}

func TestAddCommandPassesMagnetThrough(t *testing.T) {
	d := newFakeDaemon(t, func(string) string {
		return `{"result":"success","arguments":{"torrent-added":{"id":9,"name":"x","hashString":"h"}}}`
	})
	magnet := "magnet:?xt=urn:btih:" + strings.Repeat("a", 40)

	out, err := runTrctl(t, d.URL, "add", magnet, "--json")
	if err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	if got := d.lastCall(t).Arguments["filename"]; got != magnet {
		t.Fatalf("filename = %v, want %s", got, magnet)
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if result["success"] != true || result["id"] != float64(9) || result["duplicate"] != false {
		t.Fatalf("json result = %v", result)
	}
}

func TestActionCommands(t *testing.T) {
	d := newFakeDaemon(t, func(string) string { return ack })

	tests := []struct {
		args   []string
		method string
		ids    any
	}{
		{[]string{"start", "1,2"}, "torrent-start", []any{float64(1), float64(2)}},
		{[]string{"start-now", "3"}, "torrent-start-now", []any{float64(3)}},
		{[]string{"stop", "all"}, "torrent-stop", nil},
		{[]string{"verify", "recent"}, "torrent-verify", "recently-active"},
		{[]string{"reannounce", "4"}, "torrent-reannounce", []any{float64(4)}},
	}
	for _, tt := range tests {
		if _, err := runTrctl(t, d.URL, tt.args...); err != nil {
			t.Fatalf("%v returned error: %v", tt.args, err)
		}
		call := d.lastCall(t)
		if call.Method != tt.method {
			t.Fatalf("%v method = %q, want %q", tt.args, call.Method, tt.method)
		}
		if got := call.Arguments["ids"]; !reflect.DeepEqual(got, tt.ids) {
			t.Fatalf("%v ids = %#v, want %#v", tt.args, got, tt.ids)
		}
	}
}

func TestActionCommandReportsDaemonError(t *testing.T) {
	d := newFakeDaemon(t, func(string) string { return `{"result":"no such torrent","arguments":{}}` })

	_, err := runTrctl(t, d.URL, "stop", "99")
	if !transmission.IsDaemon(err) || !strings.Contains(err.Error(), "no such torrent") {
		t.Fatalf("error = %v, want daemon error", err)
	}
}

func TestRemoveAllNeedsForce(t *testing.T) {
	d := newFakeDaemon(t, func(string) string { return ack })

	if _, err := runTrctl(t, d.URL, "remove", "all"); err == nil {
		t.Fatalf("remove all without --force succeeded")
	}
	d.mu.Lock()
	calls := len(d.calls)
	d.mu.Unlock()
	if calls != 0 {
		t.Fatalf("remove all without --force reached the daemon")
	}

	if _, err := runTrctl(t, d.URL, "remove", "5", "--delete-data"); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	call := d.lastCall(t)
	if call.Method != "torrent-remove" || call.Arguments["delete-local-data"] != true {
		t.Fatalf("remove call = %+v", call)
	}
}

func TestSetCommand(t *testing.T) {
	d := newFakeDaemon(t, func(string) string { return ack })

	if _, err := runTrctl(t, d.URL, "set", "3"); err == nil || !strings.Contains(err.Error(), "nothing to set") {
		t.Fatalf("error = %v, want nothing to set", err)
	}
	if _, err := runTrctl(t, d.URL, "set", "3", "--priority", "urgent"); err == nil {
		t.Fatalf("invalid priority accepted")
	}

	if _, err := runTrctl(t, d.URL, "set", "3", "--download-limit", "500", "--upload-limit", "-1", "--priority", "high"); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	call := d.lastCall(t)
	want := map[string]any{
		"ids":               []any{float64(3)},
		"downloadLimit":     float64(500),
		"downloadLimited":   true,
		"uploadLimited":     false,
		"bandwidthPriority": float64(1),
	}
	if call.Method != "torrent-set" || !reflect.DeepEqual(call.Arguments, want) {
		t.Fatalf("set call = %s %v, want %v", call.Method, call.Arguments, want)
	}
}

func TestSessionCommand(t *testing.T) {
	d := newFakeDaemon(t, func(string) string {
		return `{"result":"success","arguments":{"version":"4.0.5","rpc-version":17,"rpc-version-minimum":14,"download-dir":"/data"}}`
	})

	out, err := runTrctl(t, d.URL, "session")
	if err != nil {
		t.Fatalf("session returned error: %v", err)
	}
	for _, want := range []string{"4.0.5", "17 (minimum 14)", "/data", "/transmission/rpc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("session output missing %q:\n%s", want, out)
		}
	}

	out, err = runTrctl(t, d.URL, "session", "--raw", "--json")
	if err != nil {
		t.Fatalf("session --raw returned error: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if raw["download-dir"] != "/data" || raw["rpc-version"] != float64(17) {
		t.Fatalf("raw session = %v", raw)
	}
}
