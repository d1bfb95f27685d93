package queue

import (
	"context"
	"time"
)

// PublishEvent announces that a page's published content changed. It carries
// no content: the source of truth is always a subsequent fetch.
type PublishEvent struct {
	PageID       string    `json:"pageId"`
	StoreID      string    `json:"storeId"`
	VersionIndex int64     `json:"versionIndex"`
	ChangedAt    time.Time `json:"changedAt"`
}

// PublishEventQueue fans publish events out to every server instance, each of
// which forwards them to its connected viewers.
type PublishEventQueue interface {
	// Publish appends a publish event to the queue.
	Publish(ctx context.Context, event *PublishEvent) error
	// Subscribe delivers publish events until the context is cancelled.
	Subscribe(ctx context.Context) (<-chan *PublishEvent, error)
}
