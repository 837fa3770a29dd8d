package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"dealwatch/internal/model"
	"dealwatch/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// DefaultRetention is how many processed IDs are kept per source when no
// explicit retention is configured.
const DefaultRetention = 100

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db        *sql.DB
	retention int
}

// NewSQLite opens a SQLite database at dsn, runs pending migrations and
// keeps at most retention processed IDs per source (DefaultRetention when
// retention is not positive).
func NewSQLite(dsn string, retention int) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single connection: SQLite has one writer, and :memory: databases
	// are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if retention <= 0 {
		retention = DefaultRetention
	}
	return &SQLite{db: db, retention: retention}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Cursor returns the last seen message ID for a source, 0 if unseen.
func (s *SQLite) Cursor(ctx context.Context, sourceID string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_seen_id FROM cursors WHERE source_id = ?`, sourceID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query cursor: %w", err)
	}
	return id, nil
}

// Cursors returns all stored source cursors ordered by source ID.
func (s *SQLite) Cursors(ctx context.Context) ([]model.SourceCursor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, last_seen_id, last_check_at FROM cursors ORDER BY source_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query cursors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.SourceCursor
	for rows.Next() {
		var c model.SourceCursor
		var checked string
		if err := rows.Scan(&c.SourceID, &c.LastSeenID, &checked); err != nil {
			return nil, fmt.Errorf("scan cursor: %w", err)
		}
		c.LastCheckAt, _ = time.Parse(timeLayout, checked)
		out = append(out, c)
	}
	return out, rows.Err()
}

// AdvanceCursor raises the stored high-water mark for a source. Stale
// values (lower than the current cursor) only refresh the check time.
func (s *SQLite) AdvanceCursor(ctx context.Context, sourceID string, messageID int64) error {
	if err := s.advanceCursor(ctx, s.db, sourceID, messageID); err != nil {
		return fmt.Errorf("advance cursor: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) advanceCursor(ctx context.Context, db execer, sourceID string, messageID int64) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := db.ExecContext(ctx,
		`INSERT INTO cursors (source_id, last_seen_id, last_check_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET
		   last_seen_id = MAX(last_seen_id, excluded.last_seen_id),
		   last_check_at = excluded.last_check_at`,
		sourceID, messageID, now,
	)
	return err
}

// IsProcessed reports whether a message has already been evaluated.
func (s *SQLite) IsProcessed(ctx context.Context, sourceID string, messageID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processed WHERE source_id = ? AND message_id = ?`,
		sourceID, messageID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check processed: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed records a single message as evaluated and prunes the
// per-source window. Idempotent.
func (s *SQLite) MarkProcessed(ctx context.Context, sourceID string, messageID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := markProcessed(ctx, tx, sourceID, messageID); err != nil {
		return err
	}
	if err := s.prune(ctx, tx, sourceID); err != nil {
		return err
	}
	return tx.Commit()
}

// CommitBatch writes all processed IDs of one drained batch and the new
// cursor in a single transaction.
func (s *SQLite) CommitBatch(ctx context.Context, sourceID string, processed []int64, maxID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range processed {
		if err := markProcessed(ctx, tx, sourceID, id); err != nil {
			return err
		}
	}
	if err := s.prune(ctx, tx, sourceID); err != nil {
		return err
	}
	if maxID > 0 {
		if err := s.advanceCursor(ctx, tx, sourceID, maxID); err != nil {
			return fmt.Errorf("advance cursor: %w", err)
		}
	}
	return tx.Commit()
}

func markProcessed(ctx context.Context, tx *sql.Tx, sourceID string, messageID int64) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed (source_id, message_id, processed_at) VALUES (?, ?, ?)`,
		sourceID, messageID, now,
	)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// prune keeps only the newest retention IDs for a source.
func (s *SQLite) prune(ctx context.Context, tx *sql.Tx, sourceID string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM processed
		 WHERE source_id = ?
		   AND message_id NOT IN (
		     SELECT message_id FROM processed
		     WHERE source_id = ?
		     ORDER BY message_id DESC
		     LIMIT ?)`,
		sourceID, sourceID, s.retention,
	)
	if err != nil {
		return fmt.Errorf("prune processed: %w", err)
	}
	return nil
}
