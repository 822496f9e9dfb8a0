package signal

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtrack/internal/models"
)

// Notification field keys as delivered by the player's notification channel.
// All fields are optional and tolerated when absent.
const (
	KeyPlayerState      = "PlayerState"
	KeyName             = "Name"
	KeyArtist           = "Artist"
	KeyAlbum            = "Album"
	KeyTotalTime        = "TotalTime"
	KeyPlaybackPosition = "PlaybackPosition"
	KeyStoreID          = "StoreID"
)

// PushSource converts player notifications into playback signals.
//
// The OS notification layer calls [PushSource.Deliver] with the raw key/value
// payload; parsing failures drop the notification rather than fabricating a
// stop.
type PushSource struct {
	logger  *log.Logger
	signals chan Signal
}

// NewPushSource creates a PushSource with the given channel buffer size.
func NewPushSource(logger *log.Logger, buffer int) *PushSource {
	if buffer <= 0 {
		buffer = 16
	}
	return &PushSource{
		logger:  logger.With("source", "push"),
		signals: make(chan Signal, buffer),
	}
}

// Name identifies the source in logs and events.
func (p *PushSource) Name() string { return "push" }

// Signals returns the channel of parsed playback signals.
func (p *PushSource) Signals() <-chan Signal { return p.signals }

// Start blocks until the context is cancelled. The push source has no work
// loop of its own; delivery is driven by the notification layer.
func (p *PushSource) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// Deliver parses one notification payload and emits the resulting signal.
// Payloads with no player state are ignored.
func (p *PushSource) Deliver(note map[string]string) {
	state, ok := note[KeyPlayerState]
	if !ok {
		p.logger.Debug("notification without player state, ignoring")
		return
	}

	now := time.Now()

	switch strings.ToLower(strings.TrimSpace(state)) {
	case "playing":
		track := models.TrackSignal{
			Name:       note[KeyName],
			Artist:     note[KeyArtist],
			Album:      note[KeyAlbum],
			SourceID:   note[KeyStoreID],
			ObservedAt: now,
		}
		if ms, err := strconv.Atoi(note[KeyTotalTime]); err == nil && ms > 0 {
			track.DurationSeconds = ms / 1000
		}
		if track.Empty() {
			p.logger.Debug("playing notification without track fields, ignoring")
			return
		}
		p.emit(Signal{State: models.PlayingState(track), SourceName: p.Name(), ObservedAt: now})
	case "paused", "stopped":
		p.emit(Signal{State: models.StoppedState(), SourceName: p.Name(), ObservedAt: now})
	default:
		p.logger.Debug("unrecognized player state", "state", state)
	}
}

func (p *PushSource) emit(sig Signal) {
	select {
	case p.signals <- sig:
	default:
		// Drop when the consumer lags; the next notification supersedes this one anyway.
		p.logger.Warn("signal channel full, dropping notification")
	}
}
