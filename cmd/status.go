package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/favtrack/internal/catalog"
	"github.com/desertthunder/favtrack/internal/formatter"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/desertthunder/favtrack/internal/signal"
	"github.com/urfave/cli/v3"
)

// statusReport is the JSON shape of a one-shot player query.
type statusReport struct {
	Playing   bool   `json:"playing"`
	Track     string `json:"track,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	CatalogID string `json:"catalog_id,omitempty"`
	Rating    string `json:"rating,omitempty"`
}

// Status queries the player once and prints the current track.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	asJSON := cmd.Bool("json")
	resolve := cmd.Bool("resolve")

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	status, err := r.bridge.Query(queryCtx)
	if err != nil {
		if errors.Is(err, shared.ErrPlayerNotRunning) {
			if asJSON {
				return r.writeJSON(statusReport{Playing: false}, true)
			}
			r.writePlain("Player is not running\n")
			return nil
		}
		return fmt.Errorf("player query failed: %w", err)
	}

	report := statusReport{
		Playing: status.IsPlaying,
		Track:   status.TrackName,
		Artist:  status.Artist,
		Album:   status.Album,
	}

	rating := models.RatingUnknown
	if resolve && status.IsPlaying {
		song, rtg, err := r.resolveOnce(queryCtx, status)
		if err != nil {
			r.logger.Warn("resolution failed", "error", err)
		} else if song != nil {
			report.CatalogID = song.CatalogID
			rating = rtg
			report.Rating = rtg.String()
		}
	}

	if asJSON {
		return r.writeJSON(report, true)
	}

	r.writePlain("%s\n", formatter.FormatSnapshotLine(status.IsPlaying, status.TrackName, status.Artist, rating))
	if status.IsPlaying && status.Album != "" {
		r.writePlain("Album: %s\n", status.Album)
	}
	if report.CatalogID != "" {
		r.writePlain("Catalog ID: %s\n", report.CatalogID)
	}
	return nil
}

// resolveOnce maps one observed track to a catalog song and its rating.
func (r *Runner) resolveOnce(ctx context.Context, status signal.Status) (*models.ResolvedSong, models.Rating, error) {
	if r.catalog == nil {
		return nil, models.RatingUnknown, fmt.Errorf("%w: catalog client not configured", shared.ErrMissingCredentials)
	}

	track := models.TrackSignal{
		Name:       status.TrackName,
		Artist:     status.Artist,
		Album:      status.Album,
		ObservedAt: time.Now(),
	}
	if id, err := r.bridge.ExternalID(ctx, track); err == nil {
		track.SourceID = id
	}

	resolver := catalog.NewResolver(r.catalog, r.logger, r.config.Engine.SearchLimit)
	song, err := resolver.Resolve(ctx, track)
	if err != nil {
		return nil, models.RatingUnknown, err
	}
	if song == nil {
		return nil, models.RatingUnknown, fmt.Errorf("%w: no catalog match for %q", shared.ErrNotFound, track.Name)
	}

	rtg, err := r.catalog.GetRating(ctx, song.CatalogID)
	if err != nil {
		r.logger.Warn("rating lookup failed", "error", err)
		rtg = models.RatingUnknown
	}

	return song, rtg, nil
}
