package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/favtrack/internal/formatter"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recorded plays in the requested format.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if cmd.Bool("favorited") {
		criteria["favorited"] = true
	}

	records, err := history.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list plays: %w", err)
	}

	if len(records) == 0 {
		r.writePlain("No plays recorded yet.\n")
		return nil
	}

	data, err := renderHistory(records, cmd.String("format"))
	if err != nil {
		return err
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		r.writePlain("✓ Wrote %d plays to %s\n", len(records), outputPath)
		return nil
	}

	return r.writePlain("%s", data)
}

// HistoryPurge deletes plays older than the given number of days.
func (r *Runner) HistoryPurge(ctx context.Context, cmd *cli.Command) error {
	days := cmd.Int("days")
	if days <= 0 {
		return fmt.Errorf("%w: --days must be positive", shared.ErrInvalidArgument)
	}

	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	cutoff := time.Now().AddDate(0, 0, -days)
	purged, err := history.DeleteBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge plays: %w", err)
	}

	r.writePlain("✓ Purged %d plays older than %s\n", purged, cutoff.Format("2006-01-02"))
	return nil
}

func renderHistory(records []*models.PlayRecord, format string) ([]byte, error) {
	switch format {
	case "", "text":
		return formatter.ExportToText(records)
	case "json":
		return formatter.ToJSON(records)
	case "csv":
		return formatter.ExportToCSV(records)
	case "markdown", "md":
		return formatter.ExportToMarkdown(records, "")
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}
