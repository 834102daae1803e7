package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/trflyer/internal/logtail"
	"github.com/five82/trflyer/internal/transmission"
)

// Column widths of the torrent table; the name column takes the rest.
const (
	colStatus   = 17
	colProgress = 7
	colRate     = 11
	colRatio    = 6
	colETA      = 8
	colGaps     = 6
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "trflyer: starting…"
	}

	body := m.bodyHeight()
	var main string
	if m.view == viewLogs {
		main = m.renderPane("Log "+truncateMiddle(m.logPath, max(10, m.width-12)), m.logs.View(), body)
	} else {
		tableHeight := m.tableHeight(body)
		main = lipgloss.JoinVertical(lipgloss.Left,
			m.renderTable(tableHeight),
			m.renderPane("Details", m.detail.View(), body-tableHeight),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), main, m.renderFooter())
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("trflyer", styles.Logo)}
	snap := m.snapshot
	switch {
	case snap.LastError != nil && (snap.IsOffline() || len(snap.Torrents) == 0):
		parts = append(parts,
			bg.Render("● "+classifyConnectionError(snap.LastError), styles.DangerText),
			bg.Render("retrying…", styles.WarningText),
		)
	case snap.LastUpdated.IsZero():
		parts = append(parts, bg.Render("connecting…", styles.WarningText))
	default:
		parts = append(parts, bg.Render("● online", styles.SuccessText))
	}
	if snap.HasSession && snap.Session.Version != "" {
		parts = append(parts, bg.Render("v"+snap.Session.Version, styles.MutedText))
	}

	active := 0
	for _, t := range snap.Torrents {
		if t.Status != nil && t.Status.Active() {
			active++
		}
	}
	down, up := snap.Totals()
	parts = append(parts,
		bg.Render(fmt.Sprintf("Torrents: %d", len(snap.Torrents)), styles.Text),
		bg.Render(fmt.Sprintf("Active: %d", active), styles.AccentText),
		bg.Render("↓ "+formatRate(down), styles.InfoText),
		bg.Render("↑ "+formatRate(up), styles.SuccessText),
		bg.Render("sort: "+string(m.sort), styles.MutedText),
	)
	if m.width >= 110 && m.endpoint != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.endpoint, 40), styles.FaintText))
	}
	if !snap.LastUpdated.IsZero() {
		parts = append(parts, bg.Render(snap.LastUpdated.Format("15:04:05"), styles.FaintText))
	}
	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

func (m Model) renderTable(height int) string {
	styles := m.theme.Styles()
	nameWidth := max(10, m.width-colStatus-colProgress-2*colRate-colRatio-colETA-colGaps-2)

	header := strings.Join([]string{
		padRight("Name", nameWidth),
		padRight("Status", colStatus),
		padLeft("Done", colProgress),
		padLeft("Down", colRate),
		padLeft("Up", colRate),
		padLeft("Ratio", colRatio),
		padLeft("ETA", colETA),
	}, " ")
	lines := []string{styles.MutedText.Bold(true).Render(" " + header)}

	visible := max(1, height-1)
	if len(m.rows) == 0 {
		lines = append(lines, styles.FaintText.Render(" no torrents"))
	}
	start := max(0, m.cursor-visible+1)
	end := min(len(m.rows), start+visible)
	for i := start; i < end; i++ {
		t := m.rows[i]
		status := transmission.StatusStopped
		if t.Status != nil {
			status = *t.Status
		}
		statusText := status.String()
		if status == transmission.StatusCheck && t.RecheckProgress != nil {
			statusText = fmt.Sprintf("checking %s", formatPercent(*t.RecheckProgress))
		}
		if t.Error != nil && *t.Error != 0 {
			statusText = "error"
		}
		badge := styles.StatusStyle(status).Render(truncate(statusText, colStatus-2))
		if statusText == "error" {
			badge = styles.DangerText.Render(padRight("error", colStatus-2))
		}
		badge += strings.Repeat(" ", max(0, colStatus-lipgloss.Width(badge)))

		eta := "-"
		if t.ETA != nil {
			eta = formatETA(*t.ETA)
		}
		ratio := "-"
		if t.UploadRatio != nil {
			ratio = formatRatio(*t.UploadRatio)
		}
		row := strings.Join([]string{
			padRight(truncate(t.DisplayName(), nameWidth), nameWidth),
			badge,
			padLeft(formatPercent(f64(t.PercentDone)), colProgress),
			padLeft(formatRate(i64(t.RateDownload)), colRate),
			padLeft(formatRate(i64(t.RateUpload)), colRate),
			padLeft(ratio, colRatio),
			padLeft(eta, colETA),
		}, " ")
		if i == m.cursor {
			lines = append(lines, styles.Selected.Width(m.width).Render(" "+row))
			continue
		}
		lines = append(lines, styles.Text.Render(" "+row))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPane(title, content string, height int) string {
	styles := m.theme.Styles()
	inner := max(0, height-2)
	pane := styles.Pane.
		Width(max(0, m.width-2)).
		Height(inner).
		MaxHeight(height)
	return pane.Render(styles.AccentText.Bold(true).Render(title) + "\n" + content)
}

func (m Model) renderDetail(t transmission.Torrent) string {
	styles := m.theme.Styles()
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(styles.MutedText.Render(padRight(label, 12)))
		b.WriteString(styles.Text.Render(value))
		b.WriteByte('\n')
	}

	b.WriteString(styles.Text.Bold(true).Render(t.DisplayName()))
	b.WriteByte('\n')
	if t.ErrorString != nil && *t.ErrorString != "" {
		b.WriteString(styles.DangerText.Render(*t.ErrorString))
		b.WriteByte('\n')
	}
	if t.ID != nil {
		row("ID", fmt.Sprintf("%d", *t.ID))
	}
	row("Hash", str(t.HashString))
	row("Location", str(t.DownloadDir))
	if t.TotalSize != nil {
		row("Size", formatBytes(*t.TotalSize))
	}
	if t.SizeWhenDone != nil && t.LeftUntilDone != nil {
		row("Have", fmt.Sprintf("%s of %s", formatBytes(*t.SizeWhenDone-*t.LeftUntilDone), formatBytes(*t.SizeWhenDone)))
	}
	if t.DownloadedEver != nil || t.UploadedEver != nil {
		row("Transfer", fmt.Sprintf("↓ %s  ↑ %s", formatBytes(i64(t.DownloadedEver)), formatBytes(i64(t.UploadedEver))))
	}
	if t.PeersConnected != nil {
		row("Peers", fmt.Sprintf("%d connected, %d sending, %d receiving",
			*t.PeersConnected, i64(t.PeersSendingToUs), i64(t.PeersGettingFromUs)))
	}
	if t.BandwidthPriority != nil {
		row("Priority", t.BandwidthPriority.String())
	}
	if t.QueuePosition != nil {
		row("Queue", fmt.Sprintf("#%d", *t.QueuePosition))
	}
	if t.IsPrivate != nil && *t.IsPrivate {
		row("Private", "yes")
	}
	if len(t.Labels) > 0 {
		row("Labels", strings.Join(t.Labels, ", "))
	}
	if t.AddedDate != nil {
		row("Added", formatAgo(t.AddedDate))
	}
	if t.DoneDate != nil {
		row("Completed", formatAgo(t.DoneDate))
	}
	if len(t.Trackers) > 0 {
		b.WriteString(styles.MutedText.Render("Trackers"))
		b.WriteByte('\n')
		for _, tr := range t.Trackers {
			b.WriteString(styles.FaintText.Render(fmt.Sprintf("  tier %d  ", tr.Tier)))
			b.WriteString(styles.Text.Render(tr.Announce))
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderLogLines(lines []string) string {
	if len(lines) == 0 {
		return m.theme.Styles().FaintText.Render("log is empty")
	}
	styles := m.theme.Styles()
	out := make([]string, len(lines))
	for i, line := range lines {
		entry, ok := logtail.Parse(line)
		if !ok {
			out[i] = styles.Text.Render(line)
			continue
		}
		out[i] = styles.LevelStyle(entry.Level).Render(entry.Format())
	}
	return strings.Join(out, "\n")
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	statusStyle := styles.MutedText
	if m.statusErr {
		statusStyle = styles.DangerText
	}
	status := m.status
	if status == "" && m.snapshot.LastError != nil {
		status = m.snapshot.LastError.Error()
		statusStyle = styles.WarningText
	}
	line := styles.Footer.Width(m.width).Render(statusStyle.Render(truncate(status, max(0, m.width-2))))
	return lipgloss.JoinVertical(lipgloss.Left, line, m.help.View(m.keys))
}

// classifyConnectionError turns a client error into a short header badge.
func classifyConnectionError(err error) string {
	var transportErr *transmission.TransportError
	var daemonErr *transmission.DaemonError
	switch {
	case err == nil:
		return "online"
	case errors.As(err, &transportErr):
		if errors.Is(err, transmission.ErrMissingSessionHeader) {
			return "session error"
		}
		return "offline"
	case errors.As(err, &daemonErr):
		switch daemonErr.StatusCode {
		case 401, 403:
			return "unauthorized"
		case 409:
			return "session rejected"
		case 0:
			return "daemon error"
		default:
			return fmt.Sprintf("http %d", daemonErr.StatusCode)
		}
	case transmission.IsDecode(err):
		return "bad response"
	default:
		return "error"
	}
}
