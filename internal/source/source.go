// Package source provides access to the monitored message feeds.
package source

import (
	"context"

	"dealwatch/internal/model"
)

// Source yields the messages of one feed that are newer than afterID,
// in ascending ID order.
type Source interface {
	Messages(ctx context.Context, afterID int64) ([]model.Message, error)
}

// Named pairs a Source with the identifier its cursor and notifications
// are keyed under.
type Named struct {
	ID string
	Source
}
