package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/trflyer/internal/state"
	"github.com/five82/trflyer/internal/transmission"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// MonitorFields is the attribute set the poller requests for every torrent:
// what the table and the detail pane render.
var MonitorFields = []transmission.Field{
	transmission.FieldID,
	transmission.FieldName,
	transmission.FieldHashString,
	transmission.FieldStatus,
	transmission.FieldPercentDone,
	transmission.FieldRecheckProgress,
	transmission.FieldRateDownload,
	transmission.FieldRateUpload,
	transmission.FieldUploadRatio,
	transmission.FieldETA,
	transmission.FieldTotalSize,
	transmission.FieldSizeWhenDone,
	transmission.FieldLeftUntilDone,
	transmission.FieldDownloadedEver,
	transmission.FieldUploadedEver,
	transmission.FieldPeersConnected,
	transmission.FieldPeersSendingToUs,
	transmission.FieldPeersGettingFromUs,
	transmission.FieldQueuePosition,
	transmission.FieldAddedDate,
	transmission.FieldDoneDate,
	transmission.FieldDownloadDir,
	transmission.FieldError,
	transmission.FieldErrorString,
	transmission.FieldLabels,
	transmission.FieldTrackers,
	transmission.FieldIsPrivate,
	transmission.FieldBandwidthPriority,
}

// Poller refreshes the store at a fixed cadence, backing off while the daemon
// is unreachable.
type Poller struct {
	client   transmission.TorrentController
	store    *state.Store
	interval time.Duration
	log      zerolog.Logger
	nudge    chan struct{}
}

// NewPoller returns a poller; call Start to launch it.
func NewPoller(client transmission.TorrentController, store *state.Store, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		client:   client,
		store:    store,
		interval: interval,
		log:      log.With().Str("component", "poller").Logger(),
		nudge:    make(chan struct{}, 1),
	}
}

// Start launches the polling goroutine. It returns immediately.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		failures := 0
		for {
			if err := p.Poll(ctx); err != nil {
				failures++
			} else {
				failures = 0
			}
			timer := time.NewTimer(calculateBackoff(failures, p.interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-p.nudge:
				timer.Stop()
			case <-timer.C:
			}
		}
	}()
}

// Refresh asks the poller to poll now instead of waiting for the next tick.
// It never blocks.
func (p *Poller) Refresh() {
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

// Poll runs one refresh and records the outcome in the store.
func (p *Poller) Poll(ctx context.Context) error {
	var session *transmission.SessionInfo
	if !p.store.Snapshot().HasSession {
		info, err := p.client.GetSession(ctx)
		if err != nil {
			return p.fail(err, "session poll failed")
		}
		session = &info
	}

	list, err := p.client.GetTorrents(ctx, transmission.NewTorrentGet().WithFields(MonitorFields...))
	if err != nil {
		return p.fail(err, "torrent poll failed")
	}
	p.store.Update(list.Torrents, session, nil)
	return nil
}

func (p *Poller) fail(err error, msg string) error {
	p.store.Update(nil, nil, err)
	p.log.Warn().Err(err).Msg(msg)
	return err
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
