package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/trflyer/internal/transmission"
)

// Theme defines the palette the monitor renders with.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	SelectionBg   string
	SelectionText string
	Border        string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors is keyed by transmission.Status.
	StatusColors map[transmission.Status]string
}

// Styles holds pre-built lipgloss styles for a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Pane     lipgloss.Style

	statusColors map[transmission.Status]string
	background   string
	muted        string
}

// Styles builds the lipgloss styles for t.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Logo: fg(t.Warning).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// StatusStyle returns the badge style for a torrent status.
func (s Styles) StatusStyle(status transmission.Status) lipgloss.Style {
	color := s.statusColors[status]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// LevelStyle colors a log level name.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	switch level {
	case "error", "fatal", "panic":
		return s.DangerText
	case "warn":
		return s.WarningText
	case "debug", "trace":
		return s.InfoText
	default:
		return s.SuccessText
	}
}

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
	"Nord":    nordTheme(),
}

var themeOrder = []string{"Dracula", "Slate", "Nord"}

// GetTheme returns a theme by name, defaulting to Dracula.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns the available theme names in cycle order.
func ThemeNames() []string {
	return append([]string(nil), themeOrder...)
}

func draculaTheme() Theme {
	// https://draculatheme.com/spec
	return Theme{
		Name:          "Dracula",
		Background:    "#191A21",
		Surface:       "#282A36",
		SurfaceAlt:    "#21222C",
		SelectionBg:   "#44475A",
		SelectionText: "#F8F8F2",
		Border:        "#44475A",
		Text:          "#F8F8F2",
		Muted:         "#6272A4",
		Faint:         "#44475A",
		Accent:        "#BD93F9",
		Success:       "#50FA7B",
		Warning:       "#FFB86C",
		Danger:        "#FF5555",
		Info:          "#8BE9FD",
		StatusColors: map[transmission.Status]string{
			transmission.StatusStopped:      "#6272A4",
			transmission.StatusCheckWait:    "#6272A4",
			transmission.StatusCheck:        "#F1FA8C",
			transmission.StatusDownloadWait: "#6272A4",
			transmission.StatusDownload:     "#8BE9FD",
			transmission.StatusSeedWait:     "#6272A4",
			transmission.StatusSeed:         "#50FA7B",
		},
	}
}

func slateTheme() Theme {
	// Tailwind slate/sky palette.
	return Theme{
		Name:          "Slate",
		Background:    "#020617",
		Surface:       "#0f172a",
		SurfaceAlt:    "#1e293b",
		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",
		Border:        "#334155",
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#ef4444",
		Info:          "#06b6d4",
		StatusColors: map[transmission.Status]string{
			transmission.StatusStopped:      "#64748b",
			transmission.StatusCheckWait:    "#64748b",
			transmission.StatusCheck:        "#f59e0b",
			transmission.StatusDownloadWait: "#64748b",
			transmission.StatusDownload:     "#38bdf8",
			transmission.StatusSeedWait:     "#64748b",
			transmission.StatusSeed:         "#22c55e",
		},
	}
}

func nordTheme() Theme {
	// https://www.nordtheme.com/docs/colors-and-palettes
	return Theme{
		Name:          "Nord",
		Background:    "#2E3440",
		Surface:       "#3B4252",
		SurfaceAlt:    "#434C5E",
		SelectionBg:   "#5E81AC",
		SelectionText: "#ECEFF4",
		Border:        "#4C566A",
		Text:          "#ECEFF4",
		Muted:         "#D8DEE9",
		Faint:         "#4C566A",
		Accent:        "#88C0D0",
		Success:       "#A3BE8C",
		Warning:       "#EBCB8B",
		Danger:        "#BF616A",
		Info:          "#81A1C1",
		StatusColors: map[transmission.Status]string{
			transmission.StatusStopped:      "#4C566A",
			transmission.StatusCheckWait:    "#4C566A",
			transmission.StatusCheck:        "#EBCB8B",
			transmission.StatusDownloadWait: "#4C566A",
			transmission.StatusDownload:     "#88C0D0",
			transmission.StatusSeedWait:     "#4C566A",
			transmission.StatusSeed:         "#A3BE8C",
		},
	}
}
