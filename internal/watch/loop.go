package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lineup-dev/lineup/internal/client"
	"github.com/lineup-dev/lineup/internal/notify"
	"github.com/lineup-dev/lineup/internal/observability"
)

const (
	// DefaultInterval is the fixed cycle cadence.
	DefaultInterval = 30 * time.Second
	// Capacity is the assigned-item count at which the lifecycle branch is
	// skipped entirely.
	Capacity = 2
	// DefaultSubsample polls positions and feedback only every Nth cycle,
	// about five minutes at the default interval.
	DefaultSubsample = 10

	// DefaultLinkBase is the web URL notifications link to.
	DefaultLinkBase = "https://lineup.dev"
)

// Options configures a Loop. Zero values fall back to the defaults above.
type Options struct {
	Interval         time.Duration
	Subsample        int
	FeedbacksEnabled bool
	LinkBase         string

	// Desired is the filter set the outstanding request is reconciled to.
	Desired []client.ProjectFilter

	Notifiers []notify.Notifier
	Logger    *slog.Logger

	// Render is called once per cycle with the loop state. May be nil.
	Render func(*LoopState)
}

// Loop is the single long-lived reconciliation loop. Cycles never overlap:
// each one runs synchronously and the next is scheduled a fixed interval
// later, regardless of success or failure. That reschedule is the entire
// retry policy.
type Loop struct {
	client      QueueClient
	lifecycle   *Lifecycle
	assignments *AssignmentTracker
	feedback    *FeedbackTracker
	opts        Options

	// mu guards state and the trackers. The assignment fetch runs in a
	// spawned goroutine whose completion the cycle does not wait for, so
	// its result is applied under the same lock the cycle holds.
	mu    sync.Mutex
	state *LoopState

	lastCount int

	// wg tracks in-flight assignment fetches so tests can wait for them.
	wg sync.WaitGroup
}

// NewLoop creates a loop around the given client and state.
func NewLoop(c QueueClient, state *LoopState, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	if opts.Subsample <= 0 {
		opts.Subsample = DefaultSubsample
	}

	if opts.LinkBase == "" {
		opts.LinkBase = DefaultLinkBase
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Loop{
		client:      c,
		lifecycle:   NewLifecycle(c),
		assignments: NewAssignmentTracker(time.Now()),
		feedback:    NewFeedbackTracker(c),
		opts:        opts,
		state:       state,
	}
}

// Run executes cycles until the context is canceled. The first cycle runs
// immediately; each next cycle starts a fixed interval after the previous
// one finishes, so a slow cycle delays the schedule instead of being
// followed back-to-back.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Cycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.opts.Interval):
		}
	}
}

// Cycle runs one reconciliation pass: count assigned items, dispatch the
// assignment tracker on an increase, reconcile the request when under
// capacity, and poll positions and feedback on the sub-sampled cadence.
func (l *Loop) Cycle(parentCtx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, span := observability.Tracer("lineup.watch").Start(parentCtx, "watch.cycle",
		trace.WithAttributes(
			attribute.Int("watch.tick", l.state.Tick),
			attribute.Int("watch.assigned_count", l.state.AssignedCount),
		),
	)
	defer span.End()

	l.state.LastError = nil

	count, err := l.client.Count(ctx)
	if err != nil {
		l.state.Tick++
		l.recordError(span, fmt.Errorf("count assignments: %w", err))

		return
	}

	l.state.AssignedCount = count

	if count > l.lastCount {
		l.wg.Add(1)

		go l.collectAssignments(parentCtx)
	}

	l.lastCount = count

	action := ActionNone

	if count < Capacity {
		// Fetched fresh every cycle: a cached copy would keep retrying
		// refreshes against a request that expired or was deleted from
		// another session, and the next-cycle retry could never recover.
		current, err := l.client.GetRequest(ctx)
		if err != nil {
			l.state.Tick++
			l.recordError(span, fmt.Errorf("get request: %w", err))

			return
		}

		var request *client.Request

		request, action, err = l.lifecycle.Reconcile(ctx, current, l.opts.Desired)
		if err != nil {
			l.state.Request = current
			l.state.Tick++
			l.recordError(span, err)

			return
		}

		l.state.Request = request
	}

	span.SetAttributes(attribute.String("watch.lifecycle_action", action.String()))

	if action == ActionCreated || action == ActionUpdated {
		l.state.Tick = 0
		l.state.Positions = FetchPositions(ctx, l.client, l.state.Request.ID)
	} else {
		l.state.Tick++

		if count < Capacity && l.state.Tick%l.opts.Subsample == 0 {
			if l.state.Request != nil {
				l.state.Positions = FetchPositions(ctx, l.client, l.state.Request.ID)
			}

			if l.opts.FeedbacksEnabled {
				if err := l.pollFeedback(ctx); err != nil {
					l.recordError(span, err)
					return
				}
			}
		}
	}

	span.SetStatus(codes.Ok, "")
	l.render()
}

// Wait blocks until all in-flight assignment fetches finish.
func (l *Loop) Wait() {
	l.wg.Wait()
}

// Snapshot returns a copy of the loop state. Safe to call while the loop
// runs.
func (l *Loop) Snapshot() LoopState {
	l.mu.Lock()
	defer l.mu.Unlock()

	return *l.state
}

// RequestID returns the id of the outstanding request, or "" when none
// exists. Safe to call while the loop runs.
func (l *Loop) RequestID() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.Request == nil {
		return ""
	}

	return l.state.Request.ID
}

// collectAssignments fetches the assignment list, records newly seen items,
// and notifies per item. Dispatched fire-and-forget from the cycle: the
// cycle does not wait for it, so ordering against the next cycle is not
// guaranteed. Failures are recorded, never fatal.
func (l *Loop) collectAssignments(ctx context.Context) {
	defer l.wg.Done()

	items, err := l.client.Assigned(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.state.LastError = fmt.Errorf("fetch assignments: %w", err)
		l.opts.Logger.Warn("assignment fetch failed", "error", err)

		return
	}

	newItems, newSinceStart := l.assignments.Update(items)
	l.state.AssignedTotal += newSinceStart

	for _, item := range newItems {
		l.notifyAll(ctx, notify.Notification{
			Title:   "New assignment",
			Message: item.Project.Name,
			Sound:   true,
			Link:    fmt.Sprintf("%s/assignments/%s", l.opts.LinkBase, item.ID),
		})
	}
}

// pollFeedback reconciles the unread-feedback cache and notifies per newly
// unread record.
func (l *Loop) pollFeedback(ctx context.Context) error {
	unreadCount, err := l.client.FeedbackStats(ctx)
	if err != nil {
		return fmt.Errorf("feedback stats: %w", err)
	}

	newRecords, err := l.feedback.Update(ctx, unreadCount)
	if err != nil {
		return err
	}

	for _, record := range newRecords {
		l.notifyAll(ctx, notify.Notification{
			Title:   "New feedback",
			Message: fmt.Sprintf("Rated %d on %s", record.Rating, record.Project.Name),
			Link:    fmt.Sprintf("%s/feedbacks/%s", l.opts.LinkBase, record.ID),
		})
	}

	return nil
}

func (l *Loop) notifyAll(ctx context.Context, n notify.Notification) {
	for _, notifier := range l.opts.Notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			l.opts.Logger.Warn("notification delivery failed", "title", n.Title, "error", err)
		}
	}
}

// recordError captures a cycle-level failure. The cycle ends early; the
// next tick retries naturally.
func (l *Loop) recordError(span trace.Span, err error) {
	l.state.LastError = err
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	l.opts.Logger.Warn("watch cycle failed", "tick", l.state.Tick, "error", err)
	l.render()
}

func (l *Loop) render() {
	if l.opts.Render != nil {
		l.opts.Render(l.state)
	}
}
