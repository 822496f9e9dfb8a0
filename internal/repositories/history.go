package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/favtrack/internal/models"
)

// PlayHistoryRepository implements models.Repository[*models.PlayRecord]
// for the listening history table.
//
// Every catalog-resolved play is appended as one row. Rows are immutable
// apart from the favorited flag, which is updated when the user rates the
// song while it plays.
type PlayHistoryRepository struct {
	db *sql.DB
}

// NewPlayHistoryRepository creates a new PlayHistoryRepository with the given database connection
func NewPlayHistoryRepository(db *sql.DB) *PlayHistoryRepository {
	return &PlayHistoryRepository{db: db}
}

// Create inserts a new [models.PlayRecord] into the database
func (r *PlayHistoryRepository) Create(record *models.PlayRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO play_history (id, sequence, catalog_id, title, artist, album, duration_seconds, favorited, played_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.RecordID,
		record.Sequence,
		record.CatalogID,
		record.Title,
		record.Artist,
		record.Album,
		record.DurationSeconds,
		record.Favorited,
		record.PlayedAt,
		record.Created,
		record.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert play record: %w", err)
	}

	return nil
}

// Get retrieves a play record by ID
func (r *PlayHistoryRepository) Get(id string) (*models.PlayRecord, error) {
	query := `
		SELECT id, sequence, catalog_id, title, artist, album, duration_seconds, favorited, played_at, created_at, updated_at
		FROM play_history
		WHERE id = ?
	`

	record, err := scanRecord(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("play record not found: %s", id)
	}
	return record, err
}

// Update modifies an existing play record. Only the favorited flag and
// updated_at change after insertion.
func (r *PlayHistoryRepository) Update(record *models.PlayRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.Updated = now

	query := `
		UPDATE play_history
		SET favorited = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, record.Favorited, now, record.RecordID)
	if err != nil {
		return fmt.Errorf("failed to update play record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("play record not found: %s", record.RecordID)
	}

	return nil
}

// Delete removes a play record by ID
func (r *PlayHistoryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM play_history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete play record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("play record not found: %s", id)
	}

	return nil
}

// List retrieves play records matching the given criteria, newest first.
//
// Supported criteria: "catalog_id" (string), "favorited" (bool),
// "limit" (int).
func (r *PlayHistoryRepository) List(criteria map[string]any) ([]*models.PlayRecord, error) {
	query := `
		SELECT id, sequence, catalog_id, title, artist, album, duration_seconds, favorited, played_at, created_at, updated_at
		FROM play_history
		WHERE 1 = 1
	`

	args := []any{}

	if catalogID, ok := criteria["catalog_id"].(string); ok && catalogID != "" {
		query += " AND catalog_id = ?"
		args = append(args, catalogID)
	}

	if favorited, ok := criteria["favorited"].(bool); ok {
		query += " AND favorited = ?"
		args = append(args, favorited)
	}

	query += " ORDER BY played_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query play history: %w", err)
	}
	defer rows.Close()

	var records []*models.PlayRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// ListRecent retrieves the most recent plays, newest first.
func (r *PlayHistoryRepository) ListRecent(limit int) ([]*models.PlayRecord, error) {
	return r.List(map[string]any{"limit": limit})
}

// DeleteBefore removes all plays older than the given instant and returns
// the number of rows removed.
func (r *PlayHistoryRepository) DeleteBefore(cutoff time.Time) (int, error) {
	result, err := r.db.Exec("DELETE FROM play_history WHERE played_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge play history: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// Record appends a resolved play to history with a fresh ID and sequence.
// Satisfies the engine's recorder hook.
func (r *PlayHistoryRepository) Record(ctx context.Context, song models.ResolvedSong, playedAt time.Time) error {
	sequence, err := NextSequence(r.db, "play_history")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	return r.Create(models.NewPlayRecord(sequence, song, playedAt))
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.PlayRecord, error) {
	var (
		record   models.PlayRecord
		album    sql.NullString
		duration sql.NullInt64
	)

	err := row.Scan(
		&record.RecordID,
		&record.Sequence,
		&record.CatalogID,
		&record.Title,
		&record.Artist,
		&album,
		&duration,
		&record.Favorited,
		&record.PlayedAt,
		&record.Created,
		&record.Updated,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan play record: %w", err)
	}

	record.Album = album.String
	record.DurationSeconds = int(duration.Int64)

	return &record, nil
}
