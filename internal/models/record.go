package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/favtrack/internal/shared"
)

// PlayRecord is one catalog-resolved play appended to listening history.
type PlayRecord struct {
	RecordID        string
	Sequence        int
	CatalogID       string
	Title           string
	Artist          string
	Album           string
	DurationSeconds int
	Favorited       bool
	PlayedAt        time.Time
	Created         time.Time
	Updated         time.Time
}

// NewPlayRecord creates a PlayRecord for a resolved song with a fresh ID and timestamps.
func NewPlayRecord(sequence int, song ResolvedSong, playedAt time.Time) *PlayRecord {
	now := time.Now()
	return &PlayRecord{
		RecordID:        shared.GenerateID(),
		Sequence:        sequence,
		CatalogID:       song.CatalogID,
		Title:           song.Title,
		Artist:          song.ArtistName,
		Album:           song.AlbumTitle,
		DurationSeconds: song.DurationSeconds,
		PlayedAt:        playedAt,
		Created:         now,
		Updated:         now,
	}
}

// ID returns the unique identifier for this record.
func (r *PlayRecord) ID() string { return r.RecordID }

// CreatedAt returns when this record was created.
func (r *PlayRecord) CreatedAt() time.Time { return r.Created }

// UpdatedAt returns when this record was last updated.
func (r *PlayRecord) UpdatedAt() time.Time { return r.Updated }

// Validate checks required fields.
func (r *PlayRecord) Validate() error {
	if r.RecordID == "" {
		return fmt.Errorf("%w: missing record ID", shared.ErrInvalidInput)
	}
	if r.CatalogID == "" {
		return fmt.Errorf("%w: missing catalog ID", shared.ErrInvalidInput)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: missing title", shared.ErrInvalidInput)
	}
	if r.PlayedAt.IsZero() {
		return fmt.Errorf("%w: missing played_at", shared.ErrInvalidInput)
	}
	return nil
}
