package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestDB(t *testing.T, retention int) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:", retention)
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCursorUnseenSource(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t, 0)

	got, err := s.Cursor(ctx, "turs_sale")
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if got != 0 {
		t.Errorf("cursor = %d, want 0 for unseen source", got)
	}
}

func TestAdvanceCursorMonotonic(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t, 0)

	steps := []struct {
		advance int64
		want    int64
	}{
		{advance: 10, want: 10},
		{advance: 25, want: 25},
		{advance: 7, want: 25},  // stale value must not regress
		{advance: 25, want: 25}, // equal value is a no-op
		{advance: 26, want: 26},
	}

	for _, st := range steps {
		if err := s.AdvanceCursor(ctx, "ch", st.advance); err != nil {
			t.Fatalf("advance to %d: %v", st.advance, err)
		}
		got, err := s.Cursor(ctx, "ch")
		if err != nil {
			t.Fatalf("cursor: %v", err)
		}
		if got != st.want {
			t.Errorf("after advance(%d): cursor = %d, want %d", st.advance, got, st.want)
		}
	}
}

func TestCursorsPerSource(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t, 0)

	if err := s.AdvanceCursor(ctx, "a", 5); err != nil {
		t.Fatalf("advance a: %v", err)
	}
	if err := s.AdvanceCursor(ctx, "b", 9); err != nil {
		t.Fatalf("advance b: %v", err)
	}

	cursors, err := s.Cursors(ctx)
	if err != nil {
		t.Fatalf("cursors: %v", err)
	}

	got := map[string]int64{}
	for _, c := range cursors {
		got[c.SourceID] = c.LastSeenID
		if c.LastCheckAt.IsZero() {
			t.Errorf("source %s has zero last check time", c.SourceID)
		}
	}
	want := map[string]int64{"a": 5, "b": 9}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cursors mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkProcessedIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t, 0)

	for i := 0; i < 2; i++ {
		if err := s.MarkProcessed(ctx, "ch", 42); err != nil {
			t.Fatalf("mark processed (attempt %d): %v", i+1, err)
		}
	}

	done, err := s.IsProcessed(ctx, "ch", 42)
	if err != nil {
		t.Fatalf("is processed: %v", err)
	}
	if !done {
		t.Error("expected message to be processed")
	}

	done, err = s.IsProcessed(ctx, "ch", 43)
	if err != nil {
		t.Fatalf("is processed: %v", err)
	}
	if done {
		t.Error("unmarked message must not be processed")
	}
}

func TestProcessedRetentionWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t, 3)

	for id := int64(1); id <= 10; id++ {
		if err := s.MarkProcessed(ctx, "ch", id); err != nil {
			t.Fatalf("mark %d: %v", id, err)
		}
	}

	for id := int64(1); id <= 7; id++ {
		done, err := s.IsProcessed(ctx, "ch", id)
		if err != nil {
			t.Fatalf("is processed %d: %v", id, err)
		}
		if done {
			t.Errorf("id %d should have been pruned", id)
		}
	}
	for id := int64(8); id <= 10; id++ {
		done, err := s.IsProcessed(ctx, "ch", id)
		if err != nil {
			t.Fatalf("is processed %d: %v", id, err)
		}
		if !done {
			t.Errorf("id %d should be retained", id)
		}
	}
}

func TestRetentionIsPerSource(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t, 2)

	for id := int64(1); id <= 5; id++ {
		if err := s.MarkProcessed(ctx, "a", id); err != nil {
			t.Fatalf("mark a/%d: %v", id, err)
		}
	}
	if err := s.MarkProcessed(ctx, "b", 1); err != nil {
		t.Fatalf("mark b/1: %v", err)
	}

	done, err := s.IsProcessed(ctx, "b", 1)
	if err != nil {
		t.Fatalf("is processed: %v", err)
	}
	if !done {
		t.Error("pruning source a must not evict records of source b")
	}
}

func TestCommitBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t, 0)

	if err := s.CommitBatch(ctx, "ch", []int64{10, 11, 12}, 12); err != nil {
		t.Fatalf("commit batch: %v", err)
	}

	cursor, err := s.Cursor(ctx, "ch")
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if cursor != 12 {
		t.Errorf("cursor = %d, want 12", cursor)
	}
	for _, id := range []int64{10, 11, 12} {
		done, err := s.IsProcessed(ctx, "ch", id)
		if err != nil {
			t.Fatalf("is processed %d: %v", id, err)
		}
		if !done {
			t.Errorf("id %d should be processed", id)
		}
	}
}

func TestCommitBatchEmptyStillAdvances(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t, 0)

	// A batch where every message was already processed earlier still
	// advances the cursor so the window is not re-fetched.
	if err := s.CommitBatch(ctx, "ch", nil, 30); err != nil {
		t.Fatalf("commit batch: %v", err)
	}
	cursor, err := s.Cursor(ctx, "ch")
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if cursor != 30 {
		t.Errorf("cursor = %d, want 30", cursor)
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := NewSQLite(path, 0)
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	if err := s.CommitBatch(ctx, "ch", []int64{7, 8}, 8); err != nil {
		t.Fatalf("commit batch: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := NewSQLite(path, 0)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s2.Close() })

	cursor, err := s2.Cursor(ctx, "ch")
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if cursor != 8 {
		t.Errorf("cursor after reopen = %d, want 8", cursor)
	}
	done, err := s2.IsProcessed(ctx, "ch", 7)
	if err != nil {
		t.Fatalf("is processed: %v", err)
	}
	if !done {
		t.Error("processed record must survive reopen")
	}
}
