// package formatter provides functions to export play history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
)

// ExportToCSV converts play history to CSV format with columns: CatalogID, Title, Artist, Album, Duration, Favorited, PlayedAt
func ExportToCSV(records []*models.PlayRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"CatalogID", "Title", "Artist", "Album", "Duration", "Favorited", "PlayedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.CatalogID,
			record.Title,
			record.Artist,
			record.Album,
			strconv.Itoa(record.DurationSeconds),
			strconv.FormatBool(record.Favorited),
			record.PlayedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts play history to Markdown format
func ExportToMarkdown(records []*models.PlayRecord, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Play History"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Plays**: %d\n\n", len(records)))

	buf.WriteString("## Tracks\n\n")
	for i, record := range records {
		duration := shared.FormatDuration(record.DurationSeconds)
		albumPart := ""
		if record.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", record.Album)
		}
		marker := ""
		if record.Favorited {
			marker = " ♥"
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]%s\n", i+1, record.Artist, record.Title, albumPart, duration, marker))
	}

	return buf.Bytes(), nil
}

// ExportToText converts play history to plain text format
func ExportToText(records []*models.PlayRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Plays: %d\n\n", len(records)))

	for i, record := range records {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s)\n", i+1, record.Artist, record.Title, record.PlayedAt.Format("2006-01-02 15:04")))
	}

	return buf.Bytes(), nil
}

// ToJSON generates an indented JSON representation of play history
func ToJSON(records []*models.PlayRecord) ([]byte, error) {
	return shared.MarshalJSON(recordRows(records), true)
}

type recordRow struct {
	CatalogID       string    `json:"catalog_id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	Album           string    `json:"album,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	Favorited       bool      `json:"favorited"`
	PlayedAt        time.Time `json:"played_at"`
}

func recordRows(records []*models.PlayRecord) []recordRow {
	rows := make([]recordRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, recordRow{
			CatalogID:       record.CatalogID,
			Title:           record.Title,
			Artist:          record.Artist,
			Album:           record.Album,
			DurationSeconds: record.DurationSeconds,
			Favorited:       record.Favorited,
			PlayedAt:        record.PlayedAt,
		})
	}
	return rows
}

// FormatSnapshotLine renders a one-line now-playing summary for CLI output.
func FormatSnapshotLine(playing bool, track, artist string, rating models.Rating) string {
	if !playing {
		return "Nothing playing"
	}
	line := fmt.Sprintf("%s - %s", artist, track)
	switch rating {
	case models.RatingFavorited:
		line += " ♥"
	case models.RatingNotFavorited:
		line += " ♡"
	}
	return line
}

// WriteCSVExport exports play history to a CSV file.
//
// Defaults to history_tracks.csv as the filename.
func WriteCSVExport(records []*models.PlayRecord, filepath string) (string, error) {
	if filepath == "" {
		filepath = "history_tracks.csv"
	}

	csvData, err := ExportToCSV(records)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport exports play history to a Markdown file.
//
// Defaults to history.md as the filename.
func WriteMarkdownExport(records []*models.PlayRecord, filepath, title string) (string, error) {
	if filepath == "" {
		filepath = "history.md"
	}

	mdData, err := ExportToMarkdown(records, title)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport exports play history to a JSON file.
//
// Defaults to history.json as the filename.
func WriteJSONExport(records []*models.PlayRecord, filepath string) (string, error) {
	if filepath == "" {
		filepath = "history.json"
	}

	jsonData, err := ToJSON(records)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}
