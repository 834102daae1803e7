package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/trflyer/internal/config"
	"github.com/five82/trflyer/internal/logging"
	"github.com/five82/trflyer/internal/prefs"
	"github.com/five82/trflyer/internal/state"
	"github.com/five82/trflyer/internal/transmission"
	"github.com/five82/trflyer/internal/ui"
)

const appName = "trflyer"

// Options configure the trflyer application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/trflyer/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
	RPCURL     string // overrides the configured endpoint when set
}

// Run boots the trflyer TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.RPCURL != "" {
		cfg.RPCURL = opts.RPCURL
	}

	log, closer, err := logging.File(cfg.LogFile, cfg.LogLevel, appName)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = closer.Close() }()

	client, err := NewClient(cfg, log)
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	log.Info().Str("url", client.URL()).Bool("auth", cfg.HasAuth()).Msg("starting")

	interval := cfg.PollEvery
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	store := &state.Store{}
	poller := NewPoller(client, store, interval, log)
	poller.Start(ctx)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Refresh:   poller.Refresh,
		PollTick:  time.Second,
		Prefs:     prefs.Load(opts.PrefsPath),
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogFile,
		Endpoint:  client.URL(),
		Logger:    log,
	})
	log.Info().Err(err).Msg("stopped")
	return err
}

// NewClient builds an RPC client from cfg with an HTTP timeout and logger.
func NewClient(cfg config.Config, log zerolog.Logger) (*transmission.Client, error) {
	opts := append(cfg.ClientOptions(),
		transmission.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		transmission.WithLogger(log),
	)
	return transmission.NewClient(opts...)
}
