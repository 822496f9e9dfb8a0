package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/favtrack/internal/retry"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavAdd favorites a song in the catalog. Without --id it favorites
// whatever the player is currently playing.
func (r *Runner) FavAdd(ctx context.Context, cmd *cli.Command) error {
	return r.mutateFavorite(ctx, cmd, true)
}

// FavRemove unfavorites a song in the catalog.
func (r *Runner) FavRemove(ctx context.Context, cmd *cli.Command) error {
	return r.mutateFavorite(ctx, cmd, false)
}

func (r *Runner) mutateFavorite(ctx context.Context, cmd *cli.Command, favorited bool) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: catalog client not configured", shared.ErrMissingCredentials)
	}

	catalogID, label, err := r.targetSong(ctx, cmd)
	if err != nil {
		return err
	}

	op := r.catalog.RemoveFavorite
	verb := "Unfavorited"
	if favorited {
		op = r.catalog.AddFavorite
		verb = "Favorited"
	}

	err = retry.Void(ctx, retry.Network, func(ctx context.Context) error {
		return op(ctx, catalogID)
	})
	if err != nil {
		if hint := shared.Suggestion(err); hint != "" {
			r.writePlain("✗ %s\n", hint)
		}
		return fmt.Errorf("favorite update failed: %w", err)
	}

	r.writePlain("✓ %s %s\n", verb, label)
	return nil
}

// targetSong picks the catalog song to mutate: the --id flag when given,
// otherwise the currently playing track resolved against the catalog.
func (r *Runner) targetSong(ctx context.Context, cmd *cli.Command) (catalogID, label string, err error) {
	if id := cmd.String("id"); id != "" {
		return id, id, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	status, err := r.bridge.Query(queryCtx)
	if err != nil {
		return "", "", fmt.Errorf("player query failed: %w", err)
	}
	if !status.IsPlaying {
		return "", "", fmt.Errorf("%w: nothing is playing", shared.ErrNotFound)
	}

	song, _, err := r.resolveOnce(queryCtx, status)
	if err != nil {
		return "", "", err
	}

	return song.CatalogID, fmt.Sprintf("%s - %s", song.ArtistName, song.Title), nil
}
