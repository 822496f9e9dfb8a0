package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/favtrack/internal/engine"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/desertthunder/favtrack/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive now-playing terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.reloadConfig(cmd.String("config"))

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/favtrack-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	var recorder engine.Recorder
	var historyProvider ui.HistoryProvider
	if config.Engine.HistoryEnable {
		db, history, err := r.openHistory()
		if err != nil {
			return err
		}
		defer db.Close()
		recorder = history
		historyProvider = history
	}

	eng, push, err := r.buildEngine(config, recorder)
	if err != nil {
		return err
	}
	if push != nil && config.Player.Mode == "push" {
		r.logger.Warn("push mode has no notification ingest in the TUI; set player.mode to hybrid or poll")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := eng.Run(runCtx); err != nil && runCtx.Err() == nil {
			r.logger.Error("engine stopped", "error", err)
		}
	}()

	model := ui.NewModel(runCtx, eng, historyProvider)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
