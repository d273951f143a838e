package watch

import (
	"context"
	"sync"
	"time"

	"github.com/lineup-dev/lineup/internal/client"
	"github.com/lineup-dev/lineup/internal/notify"
)

// fakeClient is an in-memory QueueClient recording every call.
type fakeClient struct {
	mu sync.Mutex

	count    int
	countErr error

	current    *client.Request
	getErr     error
	createErr  error
	updateErr  error
	refreshErr error
	deleteErr  error

	// refreshBlock, when set, makes RefreshRequest block until the channel
	// is closed. Simulates a hung keep-alive call.
	refreshBlock chan struct{}

	assigned    []client.AssignedItem
	assignedErr error

	positions    []client.QueuePosition
	positionsErr error

	unreadCount  int
	statsErr     error
	feedbacks    []client.FeedbackRecord
	feedbacksErr error

	calls     []string
	refreshed []string
	deleted   []string
}

func (f *fakeClient) record(op string) {
	f.calls = append(f.calls, op)
}

func (f *fakeClient) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}

	return n
}

func (f *fakeClient) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("count")

	return f.count, f.countErr
}

func (f *fakeClient) GetRequest(_ context.Context) (*client.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get")

	return f.current, f.getErr
}

func (f *fakeClient) CreateRequest(_ context.Context, filters []client.ProjectFilter) (*client.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")

	if f.createErr != nil {
		return nil, f.createErr
	}

	f.current = &client.Request{
		ID:             "req-1",
		ProjectFilters: filters,
		ClosedAt:       time.Now().Add(30 * time.Minute),
	}

	return f.current, nil
}

func (f *fakeClient) UpdateRequest(_ context.Context, id string, filters []client.ProjectFilter) (*client.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")

	if f.updateErr != nil {
		return nil, f.updateErr
	}

	f.current = &client.Request{
		ID:             id,
		ProjectFilters: filters,
		ClosedAt:       time.Now().Add(30 * time.Minute),
	}

	return f.current, nil
}

func (f *fakeClient) RefreshRequest(_ context.Context, id string) error {
	f.mu.Lock()
	f.record("refresh")
	f.refreshed = append(f.refreshed, id)
	block := f.refreshBlock
	err := f.refreshErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	return err
}

func (f *fakeClient) DeleteRequest(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	f.deleted = append(f.deleted, id)

	return f.deleteErr
}

func (f *fakeClient) Assigned(_ context.Context) ([]client.AssignedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("assigned")

	return f.assigned, f.assignedErr
}

func (f *fakeClient) Positions(_ context.Context, _ string) ([]client.QueuePosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("positions")

	return f.positions, f.positionsErr
}

func (f *fakeClient) FeedbackStats(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stats")

	return f.unreadCount, f.statsErr
}

func (f *fakeClient) Feedbacks(_ context.Context) ([]client.FeedbackRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("feedbacks")

	return f.feedbacks, f.feedbacksErr
}

// fakeNotifier records delivered notifications.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)

	return nil
}

func (f *fakeNotifier) all() []notify.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]notify.Notification, len(f.sent))
	copy(out, f.sent)

	return out
}
