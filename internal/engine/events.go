package engine

import (
	"fmt"
	"time"

	"github.com/desertthunder/favtrack/internal/models"
)

// EventType enumerates the playback transitions the engine reports.
type EventType int

const (
	// EventTrackChanged fires once per accepted track transition, after
	// debounce, before catalog resolution completes.
	EventTrackChanged EventType = iota
	// EventStopped fires when playback stops. Never debounced.
	EventStopped
	// EventSongResolved fires when catalog resolution for the current
	// track completes with a match.
	EventSongResolved
	// EventResolveFailed fires when catalog resolution for the current
	// track completes without a usable result.
	EventResolveFailed
	// EventFavoriteStatusChanged fires after a favorite mutation or a
	// rating fetch changes the known status of the current song.
	EventFavoriteStatusChanged
)

func (t EventType) String() string {
	switch t {
	case EventTrackChanged:
		return "track_changed"
	case EventStopped:
		return "stopped"
	case EventSongResolved:
		return "song_resolved"
	case EventResolveFailed:
		return "resolve_failed"
	case EventFavoriteStatusChanged:
		return "favorite_status_changed"
	default:
		return ""
	}
}

// Event is a reconciliation outcome sent to CLI or UI consumers.
//
// Generation identifies which accepted track transition produced the
// event; consumers comparing against a Snapshot can discard events from
// superseded transitions.
type Event struct {
	Type       EventType
	Generation uint64
	Track      *models.TrackSignal  // Accepted track, nil for stop events
	Song       *models.ResolvedSong // Set on EventSongResolved and later
	Rating     models.Rating
	Err        error // Set on EventResolveFailed
	At         time.Time
}

func (e Event) String() string {
	switch e.Type {
	case EventTrackChanged:
		return fmt.Sprintf("track_changed: %s - %s", e.Track.Artist, e.Track.Name)
	case EventStopped:
		return "stopped"
	case EventSongResolved:
		return fmt.Sprintf("song_resolved: %s (%s)", e.Song.Title, e.Song.CatalogID)
	case EventResolveFailed:
		return fmt.Sprintf("resolve_failed: %v", e.Err)
	case EventFavoriteStatusChanged:
		return fmt.Sprintf("favorite_status_changed: %s", e.Rating)
	default:
		return ""
	}
}

func trackChangedEvent(gen uint64, track *models.TrackSignal) Event {
	return Event{Type: EventTrackChanged, Generation: gen, Track: track, Rating: models.RatingUnknown, At: time.Now()}
}

func stoppedEvent(gen uint64) Event {
	return Event{Type: EventStopped, Generation: gen, At: time.Now()}
}

func songResolvedEvent(gen uint64, track *models.TrackSignal, song *models.ResolvedSong, rating models.Rating) Event {
	return Event{Type: EventSongResolved, Generation: gen, Track: track, Song: song, Rating: rating, At: time.Now()}
}

func resolveFailedEvent(gen uint64, track *models.TrackSignal, err error) Event {
	return Event{Type: EventResolveFailed, Generation: gen, Track: track, Rating: models.RatingUnknown, Err: err, At: time.Now()}
}

func favoriteChangedEvent(gen uint64, song *models.ResolvedSong, rating models.Rating) Event {
	return Event{Type: EventFavoriteStatusChanged, Generation: gen, Song: song, Rating: rating, At: time.Now()}
}
