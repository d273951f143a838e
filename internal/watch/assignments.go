package watch

import (
	"time"

	"github.com/lineup-dev/lineup/internal/client"
)

// AssignmentTracker diffs the assigned-items collection across polls. The
// seen set is append-only for the life of the process so an item never
// notifies twice.
type AssignmentTracker struct {
	startedAt time.Time
	seen      map[string]struct{}
}

// NewAssignmentTracker creates a tracker. Items assigned before startedAt
// are recorded but never counted toward the lifetime total.
func NewAssignmentTracker(startedAt time.Time) *AssignmentTracker {
	return &AssignmentTracker{
		startedAt: startedAt,
		seen:      make(map[string]struct{}),
	}
}

// Update records the server snapshot and returns the newly seen items in
// server order, plus how many of them were assigned after process start.
func (t *AssignmentTracker) Update(items []client.AssignedItem) (newItems []client.AssignedItem, newSinceStart int) {
	for _, item := range items {
		if _, ok := t.seen[item.ID]; ok {
			continue
		}

		t.seen[item.ID] = struct{}{}
		newItems = append(newItems, item)

		if item.AssignedAt.After(t.startedAt) {
			newSinceStart++
		}
	}

	return newItems, newSinceStart
}

// Seen reports whether an item id has already been observed.
func (t *AssignmentTracker) Seen(id string) bool {
	_, ok := t.seen[id]
	return ok
}
