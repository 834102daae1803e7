package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/trflyer/internal/prefs"
	"github.com/five82/trflyer/internal/state"
	"github.com/five82/trflyer/internal/transmission"
)

type recordedCall struct {
	action transmission.Action
	set    bool
	sel    transmission.Selector
}

type fakeClient struct {
	mu    sync.Mutex
	calls []recordedCall
	err   error
}

func (f *fakeClient) GetTorrents(context.Context, transmission.TorrentGet) (transmission.TorrentList, error) {
	return transmission.TorrentList{}, nil
}

func (f *fakeClient) AddTorrent(context.Context, transmission.TorrentAdd) (transmission.TorrentAdded, error) {
	return transmission.TorrentAdded{}, nil
}

func (f *fakeClient) SetTorrents(_ context.Context, req transmission.TorrentSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{set: true})
	return f.err
}

func (f *fakeClient) RunAction(_ context.Context, action transmission.Action, sel transmission.Selector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{action: action, sel: sel})
	return f.err
}

func (f *fakeClient) RemoveTorrents(context.Context, transmission.TorrentRemove) error { return nil }

func (f *fakeClient) GetSession(context.Context) (transmission.SessionInfo, error) {
	return transmission.SessionInfo{}, nil
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleTorrent(id int64, name string, status transmission.Status, queue int64) transmission.Torrent {
	pct := 0.5
	return transmission.Torrent{ID: &id, Name: &name, Status: &status, PercentDone: &pct, QueuePosition: &queue}
}

func newTestModel(t *testing.T, client *fakeClient, torrents ...transmission.Torrent) (Model, *int) {
	t.Helper()
	store := &state.Store{}
	store.Update(torrents, &transmission.SessionInfo{Version: "4.0.5"}, nil)
	refreshes := 0
	m := NewModel(Options{
		Context:   context.Background(),
		Client:    client,
		Store:     store,
		Refresh:   func() { refreshes++ },
		PollTick:  time.Hour,
		Prefs:     prefs.Defaults(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.Update(tickMsg(time.Now()))
	return next.(Model), &refreshes
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	return next.(Model), cmd
}

func TestModel_NavigationKeepsSelectionAcrossPolls(t *testing.T) {
	client := &fakeClient{}
	m, _ := newTestModel(t, client,
		sampleTorrent(1, "one", transmission.StatusDownload, 0),
		sampleTorrent(2, "two", transmission.StatusSeed, 1),
		sampleTorrent(3, "three", transmission.StatusStopped, 2),
	)
	if m.selectedID != 1 {
		t.Fatalf("selectedID = %d, want 1", m.selectedID)
	}

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "j")
	if m.selectedID != 3 || m.cursor != 2 {
		t.Fatalf("cursor/selected = %d/%d, want 2/3", m.cursor, m.selectedID)
	}

	// Re-sorting by name moves torrent 3 but the selection follows it.
	m, _ = press(t, m, "o")
	if m.sort != sortName {
		t.Fatalf("sort = %s, want name", m.sort)
	}
	if m.selectedID != 3 || *m.rows[m.cursor].ID != 3 {
		t.Fatalf("selection lost after sort: cursor %d id %d", m.cursor, m.selectedID)
	}

	m, _ = press(t, m, "g")
	if m.cursor != 0 {
		t.Fatalf("cursor = %d after top, want 0", m.cursor)
	}
}

func TestModel_ActionsTargetSelection(t *testing.T) {
	client := &fakeClient{}
	m, refreshes := newTestModel(t, client,
		sampleTorrent(7, "seven", transmission.StatusStopped, 0),
	)

	_, cmd := press(t, m, "s")
	if cmd == nil {
		t.Fatalf("start key returned no command")
	}
	msg, ok := cmd().(actionDoneMsg)
	if !ok || msg.err != nil {
		t.Fatalf("start command = %#v, want successful actionDoneMsg", msg)
	}
	if len(client.calls) != 1 || client.calls[0].action != transmission.ActionStart {
		t.Fatalf("calls = %#v, want one start", client.calls)
	}
	if client.calls[0].sel.IsAll() {
		t.Fatalf("start should target the selected torrent, not all")
	}
	if *refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", *refreshes)
	}

	_, cmd = press(t, m, "A")
	cmd()
	if last := client.calls[len(client.calls)-1]; last.action != transmission.ActionStop || !last.sel.IsAll() {
		t.Fatalf("stop all call = %#v", last)
	}

	_, cmd = press(t, m, "+")
	cmd()
	if last := client.calls[len(client.calls)-1]; !last.set {
		t.Fatalf("priority key should send torrent-set, got %#v", last)
	}

	next, _ := m.Update(msg)
	if got := next.(Model).status; !strings.Contains(got, "start seven: ok") {
		t.Fatalf("status = %q, want start confirmation", got)
	}
}

func TestModel_ActionFailureShownInStatus(t *testing.T) {
	client := &fakeClient{err: &transmission.DaemonError{Message: "torrent not found"}}
	m, refreshes := newTestModel(t, client, sampleTorrent(1, "one", transmission.StatusSeed, 0))

	_, cmd := press(t, m, "v")
	next, _ := m.Update(cmd())
	got := next.(Model)
	if !got.statusErr || !strings.Contains(got.status, "torrent not found") {
		t.Fatalf("status = %q (err=%v), want daemon message", got.status, got.statusErr)
	}
	if *refreshes != 0 {
		t.Fatalf("failed action should not refresh")
	}
}

func TestModel_NoSelectionNoAction(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})
	if _, cmd := press(t, m, "s"); cmd != nil {
		t.Fatalf("start with no torrents returned a command")
	}
	if view := m.View(); !strings.Contains(view, "no torrents") {
		t.Fatalf("view should mention no torrents")
	}
}

func TestModel_ThemeSavedToPrefs(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})
	m, cmd := press(t, m, "T")
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
	if msg := cmd().(prefsSavedMsg); msg.err != nil {
		t.Fatalf("save prefs: %v", msg.err)
	}
	if p := prefs.Load(m.prefsPath); p.Theme != "Slate" || p.Sort != string(sortQueue) {
		t.Fatalf("saved prefs = %#v", p)
	}
}

func TestModel_LogViewReadsTail(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "trflyer.log")
	body := `{"level":"warn","message":"torrent poll failed"}` + "\nplain line\n"
	if err := os.WriteFile(logPath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, _ := newTestModel(t, &fakeClient{})
	m.logPath = logPath
	m, cmd := press(t, m, "l")
	if m.view != viewLogs {
		t.Fatalf("view = %v, want logs", m.view)
	}
	msg := cmd().(logsMsg)
	if msg.err != nil || len(msg.lines) != 2 {
		t.Fatalf("logsMsg = %#v", msg)
	}
	next, _ := m.Update(msg)
	view := next.(Model).View()
	if !strings.Contains(view, "torrent poll failed") || !strings.Contains(view, "plain line") {
		t.Fatalf("log view missing lines:\n%s", view)
	}

	m, _ = press(t, next.(Model), "l")
	if m.view != viewTorrents {
		t.Fatalf("second l should return to torrents")
	}
}

func TestModel_HeaderShowsOffline(t *testing.T) {
	store := &state.Store{}
	for i := 0; i < 2; i++ {
		store.Update(nil, nil, &transmission.TransportError{Op: "execute request", Err: errors.New("refused")})
	}
	m := NewModel(Options{Client: &fakeClient{}, Store: store, PollTick: time.Hour})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	next, _ = next.Update(tickMsg(time.Now()))
	if view := next.(Model).View(); !strings.Contains(view, "offline") {
		t.Fatalf("header should show offline:\n%s", view)
	}
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t, &fakeClient{})
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should quit")
	}
}
