package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lineup-dev/lineup/internal/errors"
)

// suspendRefreshGrace bounds how long the suspend path waits for the
// best-effort refresh to go out. The outcome never changes the exit code.
const suspendRefreshGrace = 2 * time.Second

// ExitReason names one of the two termination triggers.
type ExitReason int

const (
	// ReasonInterrupt is the interrupt signal: terminate and clean up the
	// outstanding request.
	ReasonInterrupt ExitReason = iota
	// ReasonSuspend is the escape key: leave the request to expire
	// naturally after a best-effort refresh.
	ReasonSuspend
)

func (r ExitReason) String() string {
	if r == ReasonSuspend {
		return "suspend"
	}

	return "interrupt"
}

// ExitController coordinates the two termination triggers. Both feed the
// same Trigger entry point; only the first caller performs the terminal
// action, later callers get the already-decided exit code.
type ExitController struct {
	client QueueClient
	logger *slog.Logger

	once sync.Once
	code int
}

// NewExitController creates an exit controller.
func NewExitController(c QueueClient, logger *slog.Logger) *ExitController {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExitController{client: c, logger: logger}
}

// Trigger performs the terminal action for the given reason and returns the
// process exit code.
//
// Interrupt deletes the outstanding request and exits non-zero when the
// delete fails, since cleanup could not be confirmed. Suspend fires a
// best-effort refresh, waits at most a short grace for it to go out, and
// always exits zero regardless of its outcome.
func (e *ExitController) Trigger(ctx context.Context, reason ExitReason, requestID string) int {
	e.once.Do(func() {
		e.code = e.run(ctx, reason, requestID)
	})

	return e.code
}

func (e *ExitController) run(ctx context.Context, reason ExitReason, requestID string) int {
	e.logger.Info("shutting down", "reason", reason.String(), "request_id", requestID)

	if requestID == "" {
		return errors.ExitSuccess
	}

	if reason == ReasonSuspend {
		// Give the refresh a moment to go out; a stuck call must not hold
		// up the exit.
		done := make(chan struct{})

		go func() {
			defer close(done)

			if err := e.client.RefreshRequest(ctx, requestID); err != nil {
				e.logger.Warn("best-effort refresh failed", "error", err)
			}
		}()

		select {
		case <-done:
		case <-ctx.Done():
		case <-time.After(suspendRefreshGrace):
		}

		return errors.ExitSuccess
	}

	if err := e.client.DeleteRequest(ctx, requestID); err != nil {
		e.logger.Error("failed to delete request during shutdown", "error", err)
		return errors.ExitCleanup
	}

	return errors.ExitSuccess
}
