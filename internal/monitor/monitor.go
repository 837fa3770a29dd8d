// Package monitor drives the per-source pipeline: read cursor, fetch
// newer messages, classify, notify matches, commit processed IDs and the
// advanced cursor in one batch.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dealwatch/internal/classify"
	"dealwatch/internal/model"
	"dealwatch/internal/source"
	"dealwatch/internal/storage"
)

// Notifier delivers match results and run-level notices.
type Notifier interface {
	NotifyMatch(ctx context.Context, msg model.Message, v model.Verdict) error
	NotifyNoMatches(ctx context.Context) error
}

// Monitor periodically drains all sources through the classifier.
type Monitor struct {
	store    storage.Storage
	engine   *classify.Engine
	notifier Notifier
	sources  []source.Named
	log      *slog.Logger
	interval time.Duration
}

// New creates a Monitor with a 30-minute default check interval.
func New(store storage.Storage, engine *classify.Engine, notifier Notifier, sources []source.Named, log *slog.Logger) *Monitor {
	return &Monitor{
		store:    store,
		engine:   engine,
		notifier: notifier,
		sources:  sources,
		log:      log,
		interval: 30 * time.Minute,
	}
}

// SetInterval overrides the default check interval.
func (m *Monitor) SetInterval(d time.Duration) {
	m.interval = d
}

// Run performs a check immediately, then on every interval tick, blocking
// until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.RunOnce(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

// RunOnce drains every source once. A failing source is logged and
// skipped; its cursor stays put so the batch is retried in full next run.
func (m *Monitor) RunOnce(ctx context.Context) {
	matches := 0
	for _, src := range m.sources {
		if ctx.Err() != nil {
			return
		}
		n, err := m.drainSource(ctx, src)
		if err != nil {
			m.log.Error("check source", "source", src.ID, "error", err)
			continue
		}
		matches += n
	}

	if matches == 0 {
		if err := m.notifier.NotifyNoMatches(ctx); err != nil {
			m.log.Error("send no-match notice", "error", err)
		}
		return
	}
	m.log.Info("run complete", "matches", matches)
}

func (m *Monitor) drainSource(ctx context.Context, src source.Named) (int, error) {
	cursor, err := m.store.Cursor(ctx, src.ID)
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}

	msgs, err := src.Messages(ctx, cursor)
	if err != nil {
		return 0, fmt.Errorf("fetch messages: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	m.log.Debug("new messages", "source", src.ID, "count", len(msgs))

	matches := 0
	var processed []int64
	var maxID int64
	for _, msg := range msgs {
		if msg.ID <= cursor {
			continue
		}
		if msg.ID > maxID {
			maxID = msg.ID
		}

		done, err := m.store.IsProcessed(ctx, src.ID, msg.ID)
		if err != nil {
			return matches, fmt.Errorf("check processed: %w", err)
		}
		if done {
			continue
		}

		verdict := m.engine.Classify(msg.Text)
		if verdict.Match {
			m.log.Info("match", "source", src.ID, "message_id", msg.ID, "reason", verdict.Reason)
			if err := m.notifier.NotifyMatch(ctx, msg, verdict); err != nil {
				m.log.Error("notify match", "source", src.ID, "message_id", msg.ID, "error", err)
			}
			matches++
		}
		processed = append(processed, msg.ID)
	}

	// The cursor advances to the highest ID seen even when nothing
	// matched, so the next run never re-fetches this batch.
	if err := m.store.CommitBatch(ctx, src.ID, processed, maxID); err != nil {
		return matches, fmt.Errorf("commit batch: %w", err)
	}
	return matches, nil
}
