package watch

import (
	"context"
	"fmt"

	"github.com/lineup-dev/lineup/internal/client"
)

// FeedbackTracker follows the unread-feedback count across polls and keeps a
// local cache of the currently unread records.
type FeedbackTracker struct {
	client QueueClient
	unread []client.FeedbackRecord
}

// NewFeedbackTracker creates a tracker backed by the given client.
func NewFeedbackTracker(c QueueClient) *FeedbackTracker {
	return &FeedbackTracker{client: c}
}

// Update reconciles the local unread cache against the server-reported
// unread count and returns the newly unread records.
//
// On an increase the full collection is fetched, filtered to unread, and
// the cache replaced wholesale; the last delta entries are reported as new,
// relying on the server's append ordering. On a decrease the cache is
// cleared without a fetch: the only observed cause of a decreasing count is
// the user clearing all unread items externally. That is an assumption
// about the service, not a guarantee it makes.
func (t *FeedbackTracker) Update(ctx context.Context, serverUnreadCount int) ([]client.FeedbackRecord, error) {
	delta := serverUnreadCount - len(t.unread)

	switch {
	case delta > 0:
		records, err := t.client.Feedbacks(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch feedbacks: %w", err)
		}

		unread := make([]client.FeedbackRecord, 0, serverUnreadCount)
		for _, record := range records {
			if record.ReadAt == nil {
				unread = append(unread, record)
			}
		}

		t.unread = unread

		if delta > len(unread) {
			return unread, nil
		}

		return unread[len(unread)-delta:], nil

	case delta < 0:
		t.unread = nil
		return nil, nil

	default:
		return nil, nil
	}
}

// Unread returns the cached unread records.
func (t *FeedbackTracker) Unread() []client.FeedbackRecord {
	return t.unread
}
