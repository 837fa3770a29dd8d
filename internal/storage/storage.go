// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"dealwatch/internal/model"
)

// Storage owns the per-source cursor and the processed-message records.
// It is the single writer for both; everything else in the pipeline is
// stateless.
type Storage interface {
	// Cursor returns the high-water-mark message ID for a source,
	// 0 when the source has never been seen.
	Cursor(ctx context.Context, sourceID string) (int64, error)

	// Cursors returns the stored state of every known source.
	Cursors(ctx context.Context) ([]model.SourceCursor, error)

	// AdvanceCursor raises the high-water mark. A value lower than the
	// current cursor never regresses the stored one.
	AdvanceCursor(ctx context.Context, sourceID string, messageID int64) error

	// IsProcessed reports whether a message was already evaluated.
	IsProcessed(ctx context.Context, sourceID string, messageID int64) (bool, error)

	// MarkProcessed records a message as evaluated. Idempotent.
	MarkProcessed(ctx context.Context, sourceID string, messageID int64) error

	// CommitBatch records a batch of processed IDs and advances the
	// cursor to maxID in one transaction, so a crash can neither lose
	// marked records nor advance the cursor past unmarked messages.
	CommitBatch(ctx context.Context, sourceID string, processed []int64, maxID int64) error

	Close() error
}
