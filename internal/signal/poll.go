package signal

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
	"golang.org/x/time/rate"
)

// PollingBridge queries an [AutomationBridge] on a fixed interval, acting as
// the fallback signal path when push notifications are unavailable or stale.
type PollingBridge struct {
	bridge   AutomationBridge
	logger   *log.Logger
	interval time.Duration
	limiter  *rate.Limiter
	signals  chan Signal

	lastIdentity string
	lastSourceID string
}

// PollingOpts configures a [PollingBridge].
type PollingOpts struct {
	Interval  time.Duration
	RateLimit float64 // max automation queries per second, 0 disables the limiter
	Buffer    int
}

// NewPollingBridge creates a PollingBridge polling the given automation interface.
func NewPollingBridge(bridge AutomationBridge, logger *log.Logger, opts PollingOpts) *PollingBridge {
	if opts.Interval <= 0 {
		opts.Interval = 3 * time.Second
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 16
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &PollingBridge{
		bridge:   bridge,
		logger:   logger.With("source", "poll"),
		interval: opts.Interval,
		limiter:  limiter,
		signals:  make(chan Signal, opts.Buffer),
	}
}

// Name identifies the source in logs and events.
func (b *PollingBridge) Name() string { return "poll" }

// Signals returns the channel of playback signals.
func (b *PollingBridge) Signals() <-chan Signal { return b.signals }

// Start polls the automation bridge until the context is cancelled.
func (b *PollingBridge) Start(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	// Prime with an immediate query so consumers don't wait a full interval.
	b.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.poll(ctx)
		}
	}
}

func (b *PollingBridge) poll(ctx context.Context) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}

	status, err := b.bridge.Query(ctx)
	if err != nil {
		// A missing or failing player is "no information", never a stop.
		if errors.Is(err, shared.ErrPlayerNotRunning) {
			b.logger.Debug("player not running")
		} else {
			b.logger.Warn("automation query failed", "error", err)
		}
		return
	}

	now := time.Now()

	if !status.IsPlaying {
		b.lastIdentity = ""
		b.lastSourceID = ""
		b.emit(Signal{State: models.StoppedState(), SourceName: b.Name(), ObservedAt: now})
		return
	}

	track := models.TrackSignal{
		Name:       status.TrackName,
		Artist:     status.Artist,
		Album:      status.Album,
		ObservedAt: now,
	}
	if track.Empty() {
		b.logger.Debug("playing status without track fields, ignoring")
		return
	}

	track.SourceID = b.externalID(ctx, track)
	b.emit(Signal{State: models.PlayingState(track), SourceName: b.Name(), ObservedAt: now})
}

// externalID exchanges the track for a store identifier, asking the bridge
// only once per distinct track.
func (b *PollingBridge) externalID(ctx context.Context, track models.TrackSignal) string {
	identity := track.Identity()
	if identity == b.lastIdentity {
		return b.lastSourceID
	}

	id, err := b.bridge.ExternalID(ctx, track)
	if err != nil {
		b.logger.Debug("external ID lookup failed", "error", err)
		id = ""
	}

	b.lastIdentity = identity
	b.lastSourceID = id
	return id
}

func (b *PollingBridge) emit(sig Signal) {
	select {
	case b.signals <- sig:
	default:
		b.logger.Warn("signal channel full, dropping poll result")
	}
}
