// Package watch implements the reconciliation loop that keeps a single
// submission request alive against the Lineup queue and reacts to newly
// assigned work items and unread feedback.
package watch

import (
	"context"

	"github.com/lineup-dev/lineup/internal/client"
)

// QueueClient is the subset of the API client the loop depends on.
// Tests inject fakes.
type QueueClient interface {
	Count(ctx context.Context) (int, error)
	GetRequest(ctx context.Context) (*client.Request, error)
	CreateRequest(ctx context.Context, filters []client.ProjectFilter) (*client.Request, error)
	UpdateRequest(ctx context.Context, id string, filters []client.ProjectFilter) (*client.Request, error)
	RefreshRequest(ctx context.Context, id string) error
	DeleteRequest(ctx context.Context, id string) error
	Assigned(ctx context.Context) ([]client.AssignedItem, error)
	Positions(ctx context.Context, id string) ([]client.QueuePosition, error)
	FeedbackStats(ctx context.Context) (int, error)
	Feedbacks(ctx context.Context) ([]client.FeedbackRecord, error)
}

// LoopState is the mutable state threaded through each cycle. The loop owns
// it; tests inject one and inspect it directly after driving cycles.
type LoopState struct {
	// Tick counts cycles since the last create or update. It is reset to 0
	// whenever the outstanding request is freshly created or updated, and
	// advances on every other cycle, including failed ones.
	Tick int

	// AssignedCount is the server-reported number of assigned items as of
	// the last cycle.
	AssignedCount int

	// AssignedTotal counts items assigned since process start, each exactly
	// once regardless of how often they reappear in later polls.
	AssignedTotal int

	// Request is the outstanding submission request, nil when none exists.
	Request *client.Request

	// Positions is the latest queue-position snapshot, sorted ascending.
	Positions []client.QueuePosition

	// LastError holds the error that ended the previous cycle early, nil
	// after a clean cycle.
	LastError error
}
