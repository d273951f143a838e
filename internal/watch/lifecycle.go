package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/lineup-dev/lineup/internal/client"
)

// refreshWindow is the proactive keep-alive deadline: a request whose expiry
// is closer than this gets refreshed on the current cycle.
const refreshWindow = 5 * time.Minute

// Action describes what the lifecycle manager did on one reconcile pass.
type Action int

const (
	// ActionNone means the request was left untouched.
	ActionNone Action = iota
	// ActionCreated means a new request was created.
	ActionCreated
	// ActionUpdated means the request's filters were replaced.
	ActionUpdated
	// ActionRefreshed means the request's expiry was extended.
	ActionRefreshed
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	case ActionRefreshed:
		return "refreshed"
	default:
		return "none"
	}
}

// Lifecycle owns the identity of the single outstanding request and decides
// create/update/refresh on each cycle. Deletion is never issued here; only
// the exit path deletes.
type Lifecycle struct {
	client QueueClient
	now    func() time.Time
}

// NewLifecycle creates a lifecycle manager backed by the given client.
func NewLifecycle(c QueueClient) *Lifecycle {
	return &Lifecycle{client: c, now: time.Now}
}

// Reconcile brings the outstanding request in line with the desired filters.
//
// No current request: create one. Project-id set differs (language ignored):
// update, replacing the filters. Otherwise refresh only when the expiry is
// inside the safety window. Remote failures are returned as-is; the next
// cycle is the retry policy.
func (l *Lifecycle) Reconcile(ctx context.Context, current *client.Request, desired []client.ProjectFilter) (*client.Request, Action, error) {
	if current == nil {
		created, err := l.client.CreateRequest(ctx, desired)
		if err != nil {
			return nil, ActionNone, fmt.Errorf("create request: %w", err)
		}

		return created, ActionCreated, nil
	}

	if !sameProjectIDs(current.ProjectFilters, desired) {
		updated, err := l.client.UpdateRequest(ctx, current.ID, desired)
		if err != nil {
			return current, ActionNone, fmt.Errorf("update request: %w", err)
		}

		return updated, ActionUpdated, nil
	}

	if l.now().Add(refreshWindow).After(current.ClosedAt) {
		if err := l.client.RefreshRequest(ctx, current.ID); err != nil {
			return current, ActionNone, fmt.Errorf("refresh request: %w", err)
		}

		return current, ActionRefreshed, nil
	}

	return current, ActionNone, nil
}

// sameProjectIDs compares two filter lists by project id only. Ordering and
// language changes do not count as a difference.
func sameProjectIDs(a, b []client.ProjectFilter) bool {
	ids := func(filters []client.ProjectFilter) map[string]struct{} {
		set := make(map[string]struct{}, len(filters))
		for _, f := range filters {
			set[f.ProjectID] = struct{}{}
		}

		return set
	}

	setA, setB := ids(a), ids(b)
	if len(setA) != len(setB) {
		return false
	}

	for id := range setA {
		if _, ok := setB[id]; !ok {
			return false
		}
	}

	return true
}

// BuildFilters expands project ids and languages into the filter pairs a
// request is scoped to, preserving the given ordering.
func BuildFilters(projectIDs, languages []string) []client.ProjectFilter {
	if len(languages) == 0 {
		filters := make([]client.ProjectFilter, 0, len(projectIDs))
		for _, id := range projectIDs {
			filters = append(filters, client.ProjectFilter{ProjectID: id})
		}

		return filters
	}

	filters := make([]client.ProjectFilter, 0, len(projectIDs)*len(languages))
	for _, id := range projectIDs {
		for _, lang := range languages {
			filters = append(filters, client.ProjectFilter{ProjectID: id, Language: lang})
		}
	}

	return filters
}
