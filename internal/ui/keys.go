package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Start      key.Binding
	Stop       key.Binding
	Verify     key.Binding
	Reannounce key.Binding
	StartAll   key.Binding
	StopAll    key.Binding
	PriorityUp key.Binding
	PriorityDn key.Binding
	Theme      key.Binding
	Sort       key.Binding
	Logs       key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Start:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Verify:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "verify")),
		Reannounce: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reannounce")),
		StartAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "start all")),
		StopAll:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "stop all")),
		PriorityUp: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "raise priority")),
		PriorityDn: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "lower priority")),
		Theme:      key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Sort:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
		Logs:       key.NewBinding(key.WithKeys("l", "tab"), key.WithHelp("l", "logs")),
		Refresh:    key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "refresh")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Verify, k.Sort, k.Logs, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Start, k.Stop, k.Verify, k.Reannounce},
		{k.StartAll, k.StopAll, k.PriorityUp, k.PriorityDn},
		{k.Theme, k.Sort, k.Logs, k.Refresh, k.Help, k.Quit},
	}
}
