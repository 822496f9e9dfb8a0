package server

import (
	"encoding/json"
	"net/http"

	"github.com/desertthunder/favtrack/internal/engine"
)

// SnapshotSource yields the current reconciled playback state.
// Implemented by the engine's Reconciler.
type SnapshotSource interface {
	Snapshot() engine.Snapshot
}

// nowPlayingResponse is the JSON shape served on /now.
type nowPlayingResponse struct {
	Playing    bool   `json:"playing"`
	Generation uint64 `json:"generation"`
	Track      string `json:"track,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	CatalogID  string `json:"catalog_id,omitempty"`
	Rating     string `json:"rating"`
}

// NowPlayingHandler serves the current playback snapshot as JSON.
// Implements the Handler interface for registration with a Router.
type NowPlayingHandler struct {
	source SnapshotSource
}

// NewNowPlayingHandler creates a handler over the given snapshot source.
func NewNowPlayingHandler(source SnapshotSource) *NowPlayingHandler {
	return &NowPlayingHandler{source: source}
}

// Routes returns the HTTP routes this handler serves.
func (h *NowPlayingHandler) Routes() []string {
	return []string{"/now"}
}

// ServeHTTP writes the current snapshot. Always 200; a stopped player is
// represented as playing=false rather than an error.
func (h *NowPlayingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.source.Snapshot()
	resp := nowPlayingResponse{
		Playing:    snap.Playing,
		Generation: snap.Generation,
		Rating:     snap.Rating.String(),
	}
	if snap.Track != nil {
		resp.Track = snap.Track.Name
		resp.Artist = snap.Track.Artist
		resp.Album = snap.Track.Album
	}
	if snap.Song != nil {
		resp.CatalogID = snap.Song.CatalogID
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
