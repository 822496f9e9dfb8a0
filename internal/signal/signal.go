// package signal provides the playback signal sources feeding the reconciler.
//
// Two producers exist: [PushSource] for fire-and-forget player notifications
// and [PollingBridge] for periodic automation queries. Both emit [Signal]
// values on a buffered channel and never interpret a source failure as a
// stop: missing information is not information.
package signal

import (
	"context"
	"time"

	"github.com/desertthunder/favtrack/internal/models"
)

// Signal is one playback observation delivered to the reconciler.
type Signal struct {
	State      models.PlaybackState
	SourceName string
	ObservedAt time.Time
}

// Source is a playback signal producer.
//
// Start blocks until the context is cancelled. Signals are emitted on the
// channel returned by Signals; slow consumers cause drops, never blocking.
type Source interface {
	Name() string
	Signals() <-chan Signal
	Start(ctx context.Context) error
}

// Status is the result of one automation query against the local player.
type Status struct {
	IsPlaying bool
	TrackName string
	Artist    string
	Album     string
}

// AutomationBridge is the external scripting interface of the local player.
//
// Query returns [shared.ErrPlayerNotRunning] when the player process is not
// available. ExternalID exchanges an observed track for the player's store
// identifier and returns "" when the player has none.
type AutomationBridge interface {
	Query(ctx context.Context) (Status, error)
	ExternalID(ctx context.Context, track models.TrackSignal) (string, error)
}
