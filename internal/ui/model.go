package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/trflyer/internal/state"
	"github.com/five82/trflyer/internal/transmission"
)

type viewMode int

const (
	viewTorrents viewMode = iota
	viewLogs
)

const (
	logTailLines   = 500
	minTableHeight = 3
)

type (
	tickMsg       time.Time
	actionDoneMsg struct {
		label string
		err   error
	}
	logsMsg struct {
		lines []string
		err   error
	}
	prefsSavedMsg struct{ err error }
)

// Model is the Bubble Tea model of the monitor.
type Model struct {
	ctx       context.Context
	client    transmission.TorrentController
	store     *state.Store
	refresh   func()
	interval  time.Duration
	prefsPath string
	logPath   string
	endpoint  string
	log       zerolog.Logger

	theme  Theme
	sort   sortMode
	keys   keyMap
	help   help.Model
	detail viewport.Model
	logs   viewport.Model

	view       viewMode
	width      int
	height     int
	snapshot   state.Snapshot
	rows       []transmission.Torrent
	cursor     int
	selectedID int64
	status     string
	statusErr  bool
}

// NewModel builds the initial model from opts.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	interval := opts.PollTick
	if interval <= 0 {
		interval = time.Second
	}
	m := Model{
		ctx:       ctx,
		client:    opts.Client,
		store:     opts.Store,
		refresh:   opts.Refresh,
		interval:  interval,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		endpoint:  opts.Endpoint,
		log:       opts.Logger.With().Str("component", "ui").Logger(),
		theme:     GetTheme(opts.Prefs.Theme),
		sort:      parseSortMode(opts.Prefs.Sort),
		keys:      defaultKeyMap(),
		help:      help.New(),
		detail:    viewport.New(0, 0),
		logs:      viewport.New(0, 0),
	}
	m.selectedID = -1
	m.applyHelpStyles()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg(time.Now()) }
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tickMsg:
		m.snapshot = m.store.Snapshot()
		m.applyRows()
		if m.view == viewLogs {
			return m, tea.Batch(m.tick(), m.loadLogs())
		}
		return m, m.tick()

	case logsMsg:
		if msg.err != nil {
			m.setStatus("log: "+msg.err.Error(), true)
			return m, nil
		}
		atBottom := m.logs.AtBottom() || m.logs.TotalLineCount() == 0
		m.logs.SetContent(m.renderLogLines(msg.lines))
		if atBottom {
			m.logs.GotoBottom()
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.label+" failed: "+msg.err.Error(), true)
			m.log.Warn().Err(msg.err).Str("action", msg.label).Msg("action failed")
		} else {
			m.setStatus(msg.label+": ok", false)
		}
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.setStatus("save prefs: "+msg.err.Error(), true)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		if m.view == viewLogs {
			m.view = viewTorrents
			return m, nil
		}
		m.view = viewLogs
		return m, m.loadLogs()
	case key.Matches(msg, m.keys.Theme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyHelpStyles()
		m.refreshDetail()
		m.setStatus("theme: "+m.theme.Name, false)
		return m, m.savePrefs()
	case key.Matches(msg, m.keys.Sort):
		m.sort = m.sort.next()
		m.applyRows()
		m.setStatus("sort: "+string(m.sort), false)
		return m, m.savePrefs()
	case key.Matches(msg, m.keys.Refresh):
		if m.refresh != nil {
			m.refresh()
		}
		m.setStatus("refresh requested", false)
		return m, nil
	}

	if m.view == viewLogs {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.rows) - 1)
	case key.Matches(msg, m.keys.Start):
		return m, m.selectedAction(transmission.ActionStart)
	case key.Matches(msg, m.keys.Stop):
		return m, m.selectedAction(transmission.ActionStop)
	case key.Matches(msg, m.keys.Verify):
		return m, m.selectedAction(transmission.ActionVerify)
	case key.Matches(msg, m.keys.Reannounce):
		return m, m.selectedAction(transmission.ActionReannounce)
	case key.Matches(msg, m.keys.StartAll):
		return m, m.actionCmd(transmission.ActionStart, transmission.AllTorrents(), "start all")
	case key.Matches(msg, m.keys.StopAll):
		return m, m.actionCmd(transmission.ActionStop, transmission.AllTorrents(), "stop all")
	case key.Matches(msg, m.keys.PriorityUp):
		return m, m.shiftPriority(1)
	case key.Matches(msg, m.keys.PriorityDn):
		return m, m.shiftPriority(-1)
	default:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyRows re-sorts the snapshot and keeps the selection on the same
// torrent id when it still exists.
func (m *Model) applyRows() {
	m.rows = sortTorrents(m.snapshot.Torrents, m.sort)
	idx := -1
	for i, t := range m.rows {
		if t.ID != nil && *t.ID == m.selectedID {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = m.cursor
	}
	m.moveCursor(idx)
}

func (m *Model) moveCursor(idx int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.selectedID = -1
		m.refreshDetail()
		return
	}
	idx = max(0, min(idx, len(m.rows)-1))
	moved := idx != m.cursor || m.selectedID != i64(m.rows[idx].ID)
	m.cursor = idx
	m.selectedID = i64(m.rows[idx].ID)
	m.refreshDetail()
	if moved {
		m.detail.GotoTop()
	}
}

func (m Model) selected() (transmission.Torrent, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return transmission.Torrent{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) applyHelpStyles() {
	styles := m.theme.Styles()
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
	m.help.Styles.FullKey = styles.AccentText
	m.help.Styles.FullDesc = styles.MutedText
	m.help.Styles.FullSeparator = styles.FaintText
}

func (m *Model) refreshDetail() {
	t, ok := m.selected()
	if !ok {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(m.renderDetail(t))
}

// layout sizes the viewports from the window and help height.
func (m *Model) layout() {
	m.help.Width = m.width
	body := m.bodyHeight()
	tableHeight := m.tableHeight(body)
	m.detail.Width = max(0, m.width-4)
	m.detail.Height = max(0, body-tableHeight-2)
	m.logs.Width = max(0, m.width-4)
	m.logs.Height = max(0, body-2)
	m.refreshDetail()
}

func (m Model) bodyHeight() int {
	footer := 2
	if m.help.ShowAll {
		footer = 1 + len(m.keys.FullHelp()[3])
	}
	return max(0, m.height-1-footer)
}

func (m Model) tableHeight(body int) int {
	return max(minTableHeight, body*3/5)
}
