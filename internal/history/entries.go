package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Entry is one recorded download run.
type Entry struct {
	ID         int64
	RunID      string
	URL        string
	Quality    string
	OutputDir  string
	Mode       string
	Outcome    string
	FinalPath  string
	SizeBytes  int64
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall time the run took.
func (e Entry) Duration() time.Duration {
	if e.StartedAt.IsZero() || e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

const (
	insertColumns = "run_id, url, quality, output_dir, mode, outcome, final_path, size_bytes, detail, started_at, finished_at"
	entryColumns  = "id, " + insertColumns

	// timeLayout has a fixed-width fraction so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// DefaultLimit bounds Recent when callers pass a non-positive limit.
const DefaultLimit = 20

// Record inserts entry and returns its row ID.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	if entry.RunID == "" {
		return 0, fmt.Errorf("record run: run id required")
	}
	var id int64
	err := withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (`+insertColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.RunID,
			entry.URL,
			entry.Quality,
			entry.OutputDir,
			nullableString(entry.Mode),
			entry.Outcome,
			nullableString(entry.FinalPath),
			entry.SizeBytes,
			nullableString(entry.Detail),
			formatTime(entry.StartedAt),
			formatTime(entry.FinishedAt),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM runs ORDER BY started_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune deletes all but the newest keep runs and reports how many rows went.
// A non-positive keep retains everything.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	var removed int64
	err := withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM runs WHERE id NOT IN (
                SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
            )`, keep)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

// GetByRunID returns the run with the given ID, or nil when absent.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM runs WHERE run_id = ?", runID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &entry, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry       Entry
		mode        sql.NullString
		finalPath   sql.NullString
		detail      sql.NullString
		startedRaw  string
		finishedRaw string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.URL,
		&entry.Quality,
		&entry.OutputDir,
		&mode,
		&entry.Outcome,
		&finalPath,
		&entry.SizeBytes,
		&detail,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Entry{}, err
	}
	entry.Mode = mode.String
	entry.FinalPath = finalPath.String
	entry.Detail = detail.String
	entry.StartedAt = parseTime(startedRaw)
	entry.FinishedAt = parseTime(finishedRaw)
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
