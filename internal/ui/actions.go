package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/trflyer/internal/logtail"
	"github.com/five82/trflyer/internal/prefs"
	"github.com/five82/trflyer/internal/transmission"
)

func (m Model) selectedAction(action transmission.Action) tea.Cmd {
	t, ok := m.selected()
	if !ok || t.ID == nil {
		return nil
	}
	label := fmt.Sprintf("%s %s", action, truncate(t.DisplayName(), 40))
	return m.actionCmd(action, transmission.IDs(*t.ID), label)
}

// actionCmd runs an action off the UI goroutine and nudges the poller so the
// table reflects the change without waiting a full interval.
func (m Model) actionCmd(action transmission.Action, sel transmission.Selector, label string) tea.Cmd {
	ctx, client, refresh := m.ctx, m.client, m.refresh
	return func() tea.Msg {
		err := client.RunAction(ctx, action, sel)
		if err == nil && refresh != nil {
			refresh()
		}
		return actionDoneMsg{label: label, err: err}
	}
}

// shiftPriority moves the selected torrent's bandwidth priority one step.
func (m Model) shiftPriority(delta int) tea.Cmd {
	t, ok := m.selected()
	if !ok || t.ID == nil {
		return nil
	}
	current := transmission.PriorityNormal
	if t.BandwidthPriority != nil {
		current = *t.BandwidthPriority
	}
	next := transmission.Priority(max(int(transmission.PriorityLow), min(int(transmission.PriorityHigh), int(current)+delta)))
	if next == current {
		return nil
	}

	req := transmission.NewTorrentSet(transmission.IDs(*t.ID)).WithBandwidthPriority(next)
	label := fmt.Sprintf("priority %s %s", next, truncate(t.DisplayName(), 40))
	ctx, client, refresh := m.ctx, m.client, m.refresh
	return func() tea.Msg {
		err := client.SetTorrents(ctx, req)
		if err == nil && refresh != nil {
			refresh()
		}
		return actionDoneMsg{label: label, err: err}
	}
}

func (m Model) loadLogs() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		lines, err := logtail.Read(path, logTailLines)
		return logsMsg{lines: lines, err: err}
	}
}

func (m Model) savePrefs() tea.Cmd {
	path := m.prefsPath
	p := prefs.Prefs{Theme: m.theme.Name, Sort: string(m.sort)}
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}
