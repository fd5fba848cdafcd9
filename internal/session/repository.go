package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Repository persists the BlockingSession record in sqlite. The table holds
// at most one row (id = 1); a missing row reads as the unblocked default.
type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *Repository) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS blocking_session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		session_id TEXT NOT NULL DEFAULT '',
		is_blocking INTEGER NOT NULL DEFAULT 0,
		blocking_end_time INTEGER,
		blocking_duration INTEGER,
		blocking_elapsed INTEGER NOT NULL DEFAULT 0,
		temp_unblock_active INTEGER NOT NULL DEFAULT 0,
		temp_unblock_end_time INTEGER
	)
	`
	_, err := r.db.Exec(query)
	return err
}

func (r *Repository) Load(ctx context.Context) (BlockingSession, error) {
	var (
		s                    BlockingSession
		isBlocking, tempAct  int
		endMs, durMs, tempMs sql.NullInt64
		elapsedMs            int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, is_blocking, blocking_end_time, blocking_duration, blocking_elapsed,
		        temp_unblock_active, temp_unblock_end_time
		 FROM blocking_session WHERE id = 1`,
	).Scan(&s.SessionID, &isBlocking, &endMs, &durMs, &elapsedMs, &tempAct, &tempMs)
	if errors.Is(err, sql.ErrNoRows) {
		return Unblocked(), nil
	}
	if err != nil {
		return BlockingSession{}, err
	}

	s.IsBlocking = isBlocking == 1
	s.TempUnblockActive = tempAct == 1
	s.BlockingElapsed = time.Duration(elapsedMs) * time.Millisecond
	s.BlockingEndTime = fromMillis(endMs)
	s.TempUnblockEndTime = fromMillis(tempMs)
	if durMs.Valid {
		d := time.Duration(durMs.Int64) * time.Millisecond
		s.BlockingDuration = &d
	}
	return s, nil
}

// Save replaces the stored record inside a single transaction.
func (r *Repository) Save(ctx context.Context, s BlockingSession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var durMs sql.NullInt64
	if s.BlockingDuration != nil {
		durMs = sql.NullInt64{Int64: s.BlockingDuration.Milliseconds(), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO blocking_session (id, session_id, is_blocking, blocking_end_time, blocking_duration,
		                               blocking_elapsed, temp_unblock_active, temp_unblock_end_time)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   session_id = excluded.session_id,
		   is_blocking = excluded.is_blocking,
		   blocking_end_time = excluded.blocking_end_time,
		   blocking_duration = excluded.blocking_duration,
		   blocking_elapsed = excluded.blocking_elapsed,
		   temp_unblock_active = excluded.temp_unblock_active,
		   temp_unblock_end_time = excluded.temp_unblock_end_time`,
		s.SessionID,
		boolToInt(s.IsBlocking),
		toMillis(s.BlockingEndTime),
		durMs,
		s.BlockingElapsed.Milliseconds(),
		boolToInt(s.TempUnblockActive),
		toMillis(s.TempUnblockEndTime),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
