// Package store persists normalized clips in a SQLite catalog for dataset
// builders to query.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/caretcaret/aurora/internal/theorytab"
)

// Store manages clip persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS clips (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    data_source TEXT NOT NULL,
    video_id TEXT NOT NULL,
    start_time REAL NOT NULL,
    end_time REAL NOT NULL,
    beats INTEGER NOT NULL,
    beats_per_measure INTEGER NOT NULL,
    tonic INTEGER NOT NULL,
    mode INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (data_source, start_time)
);
CREATE INDEX IF NOT EXISTS idx_clips_video ON clips(video_id);
`

// Open initializes or connects to the clip database and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveClips upserts a batch of clips, keyed on (data_source, start_time) so a
// re-parse of the same document replaces its own rows rather than duplicating
// them. Returns the number of rows written.
func (s *Store) SaveClips(ctx context.Context, clips []theorytab.Clip) (int, error) {
	if len(clips) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	written := 0
	for _, c := range clips {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO clips (
                data_source, video_id, start_time, end_time,
                beats, beats_per_measure, tonic, mode, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT (data_source, start_time) DO UPDATE SET
                video_id = excluded.video_id,
                end_time = excluded.end_time,
                beats = excluded.beats,
                beats_per_measure = excluded.beats_per_measure,
                tonic = excluded.tonic,
                mode = excluded.mode`,
			c.DataSource,
			c.Audio.VideoID,
			c.Audio.StartTime,
			c.Audio.EndTime,
			c.Meter.Beats,
			c.Meter.BeatsPerMeasure,
			c.Key.Tonic,
			c.Key.Mode,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("insert clip %s: %w", c.DataSource, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clips: %w", err)
	}
	return written, nil
}

// List returns clips ordered by data source then start time.
func (s *Store) List(ctx context.Context, limit, offset int) ([]theorytab.Clip, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT data_source, video_id, start_time, end_time,
                beats, beats_per_measure, tonic, mode
         FROM clips ORDER BY data_source, start_time LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var clips []theorytab.Clip
	for rows.Next() {
		var c theorytab.Clip
		if err := rows.Scan(
			&c.DataSource,
			&c.Audio.VideoID,
			&c.Audio.StartTime,
			&c.Audio.EndTime,
			&c.Meter.Beats,
			&c.Meter.BeatsPerMeasure,
			&c.Key.Tonic,
			&c.Key.Mode,
		); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

// Stats summarizes the catalog.
type Stats struct {
	Clips        int         `json:"clips"`
	Videos       int         `json:"videos"`
	TotalSeconds float64     `json:"total_seconds"`
	ByMode       map[int]int `json:"by_mode"`
}

// Summarize computes catalog-wide stats.
func (s *Store) Summarize(ctx context.Context) (Stats, error) {
	stats := Stats{ByMode: make(map[int]int)}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COUNT(DISTINCT video_id), COALESCE(SUM(end_time - start_time), 0) FROM clips`,
	)
	if err := row.Scan(&stats.Clips, &stats.Videos, &stats.TotalSeconds); err != nil {
		return Stats{}, fmt.Errorf("summarize clips: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT mode, COUNT(*) FROM clips GROUP BY mode`)
	if err != nil {
		return Stats{}, fmt.Errorf("summarize modes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mode, count int
		if err := rows.Scan(&mode, &count); err != nil {
			return Stats{}, fmt.Errorf("scan mode count: %w", err)
		}
		stats.ByMode[mode] = count
	}
	return stats, rows.Err()
}
