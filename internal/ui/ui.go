package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/trflyer/internal/prefs"
	"github.com/five82/trflyer/internal/state"
	"github.com/five82/trflyer/internal/transmission"
)

// Options configure the TUI.
type Options struct {
	Context  context.Context
	Client   transmission.TorrentController
	Store    *state.Store
	Refresh  func() // asks the poller for an immediate poll; may be nil
	PollTick time.Duration
	Prefs    prefs.Prefs
	// PrefsPath is where theme and sort changes are saved; empty uses the
	// default location.
	PrefsPath string
	LogPath   string
	Endpoint  string
	Logger    zerolog.Logger
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Client == nil || opts.Store == nil {
		return fmt.Errorf("ui: client and store are required")
	}

	program := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
		tea.WithContext(opts.Context),
	)
	if _, err := program.Run(); err != nil {
		if opts.Context.Err() != nil {
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
