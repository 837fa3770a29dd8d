package source

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"dealwatch/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RSS reads a channel through an RSS bridge (an RSSHub-style mirror of a
// public channel). Bridge items link to the original post, so the numeric
// message ID is recovered from the trailing path segment of the item link.
type RSS struct {
	client HTTPClient
	id     string
	url    string
}

// NewRSS creates an RSS bridge source identified as id, reading feedURL.
func NewRSS(client HTTPClient, id, feedURL string) *RSS {
	return &RSS{client: client, id: id, url: feedURL}
}

// Messages fetches the bridge feed and returns posts newer than afterID
// in ascending ID order. Items without a recoverable numeric post ID are
// skipped.
func (r *RSS) Messages(ctx context.Context, afterID int64) ([]model.Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "dealwatch/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var out []model.Message
	for _, item := range feed.Items {
		id, ok := postID(item)
		if !ok || id <= afterID {
			continue
		}
		text := item.Title
		if item.Description != "" {
			text += "\n\n" + item.Description
		}
		sentAt := time.Time{}
		if item.PublishedParsed != nil {
			sentAt = item.PublishedParsed.UTC()
		}
		out = append(out, model.Message{
			SourceID: r.id,
			ID:       id,
			Text:     text,
			SentAt:   sentAt,
		})
	}
	slices.SortFunc(out, func(a, b model.Message) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// postID recovers the numeric post ID from the item link or GUID.
func postID(item *gofeed.Item) (int64, bool) {
	for _, ref := range []string{item.Link, item.GUID} {
		ref = strings.TrimSuffix(ref, "/")
		if i := strings.LastIndex(ref, "/"); i >= 0 {
			ref = ref[i+1:]
		}
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}
