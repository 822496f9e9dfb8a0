package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/desertthunder/favtrack/internal/engine"
	"github.com/desertthunder/favtrack/internal/formatter"
	"github.com/desertthunder/favtrack/internal/server"
	"github.com/desertthunder/favtrack/internal/shared"
	sig "github.com/desertthunder/favtrack/internal/signal"
	"github.com/urfave/cli/v3"
)

// Watch runs the reconciliation engine headless, logging every track
// transition until interrupted.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	config := r.reloadConfig(cmd.String("config"))

	var recorder engine.Recorder
	if config.Engine.HistoryEnable && !cmd.Bool("no-history") {
		db, history, err := r.openHistory()
		if err != nil {
			return err
		}
		defer db.Close()
		recorder = history
	}

	eng, push, err := r.buildEngine(config, recorder)
	if err != nil {
		return err
	}

	if addr := cmd.String("serve"); addr != "" {
		httpServer := r.serveNowPlaying(ctx, addr, eng, push)
		defer httpServer.Close()
	} else if push != nil && config.Player.Mode == "push" {
		r.logger.Warn("push mode has no notification ingest without --serve; nothing will be observed")
	}

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- eng.Run(runCtx)
	}()

	r.writePlain("Watching player (mode: %s). Press Ctrl+C to stop.\n", config.Player.Mode)

	for {
		select {
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case ev := <-eng.Events():
			r.printEvent(ev)
		}
	}
}

// serveNowPlaying exposes the engine snapshot over HTTP for other tools,
// and the notification ingest route when a push source is active.
func (r *Runner) serveNowPlaying(ctx context.Context, addr string, eng *engine.Reconciler, push *sig.PushSource) *http.Server {
	router := server.NewBasicRouter()
	router.Handler(server.NewNowPlayingHandler(eng))
	if push != nil {
		router.Handler(server.NewNotifyHandler(push))
	}

	httpServer := &http.Server{Addr: addr, Handler: router}
	go func() {
		r.logger.Info("serving now-playing state", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Warn("now-playing server stopped", "error", err)
		}
	}()
	return httpServer
}

func (r *Runner) printEvent(ev engine.Event) {
	switch ev.Type {
	case engine.EventTrackChanged:
		r.writePlain("▶ %s - %s\n", ev.Track.Artist, ev.Track.Name)
	case engine.EventStopped:
		r.writePlain("■ Stopped\n")
	case engine.EventSongResolved:
		line := formatter.FormatSnapshotLine(true, ev.Song.Title, ev.Song.ArtistName, ev.Rating)
		r.writePlain("  resolved: %s [%s]\n", line, ev.Song.CatalogID)
	case engine.EventResolveFailed:
		r.writePlain("  not in catalog: %v\n", ev.Err)
		if hint := shared.Suggestion(ev.Err); hint != "" {
			r.writePlain("  hint: %s\n", hint)
		}
	case engine.EventFavoriteStatusChanged:
		r.writePlain("  favorite: %s\n", ev.Rating)
	}
}
