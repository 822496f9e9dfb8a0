package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/favtrack/internal/engine"
	"github.com/desertthunder/favtrack/internal/models"
)

type staticSnapshot struct {
	snap engine.Snapshot
}

func (s staticSnapshot) Snapshot() engine.Snapshot { return s.snap }

func TestNowPlayingHandler(t *testing.T) {
	t.Run("playing state", func(t *testing.T) {
		handler := NewNowPlayingHandler(staticSnapshot{snap: engine.Snapshot{
			Playing:    true,
			Generation: 3,
			Track:      &models.TrackSignal{Name: "Test Song", Artist: "Test Artist"},
			Song:       &models.ResolvedSong{CatalogID: "cat-1"},
			Rating:     models.RatingFavorited,
		}})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/now", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["playing"] != true || resp["track"] != "Test Song" || resp["catalog_id"] != "cat-1" {
			t.Errorf("unexpected response: %v", resp)
		}
		if resp["rating"] != "favorited" {
			t.Errorf("rating = %v, want favorited", resp["rating"])
		}
	})

	t.Run("stopped state", func(t *testing.T) {
		handler := NewNowPlayingHandler(staticSnapshot{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/now", nil))

		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["playing"] != false {
			t.Errorf("playing = %v, want false", resp["playing"])
		}
		if _, ok := resp["track"]; ok {
			t.Error("stopped snapshot should omit track")
		}
	})

	t.Run("rejects non-GET", func(t *testing.T) {
		handler := NewNowPlayingHandler(staticSnapshot{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/now", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}
