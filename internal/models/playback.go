package models

import (
	"strings"
	"time"

	"github.com/desertthunder/favtrack/internal/shared"
)

// TrackSignal is a single best-effort observation of the currently playing
// track, produced by a push notification or an automation poll.
type TrackSignal struct {
	Name            string
	Artist          string
	Album           string
	SourceID        string // Player-assigned identifier, exchangeable for a catalog ID
	DurationSeconds int
	ObservedAt      time.Time
}

// Identity returns the deduplication key for the signal.
//
// Two signals with the same identity describe the same track regardless of
// casing, surrounding whitespace, or which source observed them.
func (s TrackSignal) Identity() string {
	return shared.NormalizeTrackKey(s.Name, s.Artist) + "|" + strings.ToLower(strings.TrimSpace(s.SourceID))
}

// Empty reports whether the signal carries no usable track information.
func (s TrackSignal) Empty() bool {
	return strings.TrimSpace(s.Name) == "" && strings.TrimSpace(s.Artist) == ""
}

// PlaybackState is the canonical playing/stopped state owned by the reconciler.
//
// Track is non-nil only when IsPlaying is true.
type PlaybackState struct {
	IsPlaying bool
	Track     *TrackSignal
}

// HasTrack returns true if there is an active track.
func (s PlaybackState) HasTrack() bool {
	return s.IsPlaying && s.Track != nil
}

// PlayingState builds a playing state around the given track.
func PlayingState(track TrackSignal) PlaybackState {
	return PlaybackState{IsPlaying: true, Track: &track}
}

// StoppedState builds the stopped state. The track is always cleared.
func StoppedState() PlaybackState {
	return PlaybackState{}
}

// ResolvedSong is a track matched against the remote catalog. Absent for
// tracks the catalog does not know (local-only files).
type ResolvedSong struct {
	CatalogID       string
	Title           string
	ArtistName      string
	AlbumTitle      string
	DurationSeconds int
}

// Rating is the tri-state favorite status of a resolved song.
//
// Unknown is distinct from NotFavorited: a failed rating query must not
// present a song as unfavorited when the true state could not be read.
type Rating int

const (
	RatingUnknown Rating = iota
	RatingNotFavorited
	RatingFavorited
)

// String returns the string representation of the rating.
func (r Rating) String() string {
	switch r {
	case RatingFavorited:
		return "favorited"
	case RatingNotFavorited:
		return "not_favorited"
	default:
		return "unknown"
	}
}

// RatingCacheEntry is a cached favorite status for one catalog song.
type RatingCacheEntry struct {
	CatalogID string
	Rating    Rating
	ExpiresAt time.Time
}

// Expired reports whether the entry is stale at the given instant.
func (e RatingCacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
