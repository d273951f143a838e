package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lineup-dev/lineup/internal/auth"
	"github.com/lineup-dev/lineup/internal/client"
	"github.com/lineup-dev/lineup/internal/config"
	clierrors "github.com/lineup-dev/lineup/internal/errors"
	"github.com/lineup-dev/lineup/internal/notify"
	"github.com/lineup-dev/lineup/internal/observability"
	"github.com/lineup-dev/lineup/internal/output"
	"github.com/lineup-dev/lineup/internal/terminal"
	"github.com/lineup-dev/lineup/internal/watch"
)

// Raw-mode key codes for the suspend and interrupt keys.
const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
	keyQuit   = 'q'
)

const cleanupTimeout = 10 * time.Second

func newWatchCmd() *cobra.Command {
	var (
		projects  []string
		push      bool
		feedbacks bool
		interval  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the queue and keep your submission request alive",
		Long: `Watch runs the reconciliation loop: it keeps a single submission
request registered against the queue, refreshes it before expiry, and
notifies you about newly assigned work items and unread feedback.

Press Ctrl+C to stop and withdraw the request. Press q or Esc to stop
without withdrawing; the request then expires naturally within its
remaining window.`,
		Example: `  lineup watch
  lineup watch --projects 101,205
  lineup watch --projects all --push --feedbacks`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, projects, push, feedbacks, interval)
		},
	}

	cmd.Flags().StringSliceVar(&projects, "projects", nil, "Project ids to request work for (or 'all')")
	cmd.Flags().BoolVar(&push, "push", false, "Also deliver notifications to registered push devices")
	cmd.Flags().BoolVar(&feedbacks, "feedbacks", false, "Poll for unread feedback")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Cycle interval (default 30s)")

	return cmd
}

func runWatch(cmd *cobra.Command, projects []string, push, feedbacks bool, interval time.Duration) error {
	ctx := cmd.Context()
	out := output.FromContext(ctx)
	logger := observability.FromContext(ctx)
	cfg := config.Load()

	source, token := auth.GetCredentials()
	if token == "" {
		return clierrors.NotAuthenticated()
	}

	if expiry := cfg.TokenExpiry(); !expiry.IsZero() && expiry.Before(time.Now()) {
		return clierrors.TokenExpired()
	}

	certified := cfg.CertifiedProjects()
	if len(certified) == 0 {
		return clierrors.NoCertifiedProjects()
	}

	requested := projects
	if len(requested) == 0 {
		requested = cfg.RequestedProjects()
	}

	ids, uncertified := config.ResolveRequestedProjects(requested, certified)
	if len(uncertified) > 0 {
		return clierrors.UncertifiedProjects(uncertified)
	}

	c := client.New(token).WithBaseURL(cfg.APIURL())

	if _, err := c.ValidateToken(ctx); err != nil {
		return clierrors.AuthFailed(err)
	}

	notifiers := []notify.Notifier{notify.NewLocal()}

	if push {
		pushToken := cfg.PushAccessToken()
		if pushToken == "" {
			return clierrors.PushTokenMissing()
		}

		pushClient := notify.NewPush(pushToken)

		devices, err := pushClient.ListDevices(ctx)
		if err != nil {
			return clierrors.Wrap(clierrors.ExitNetwork, "Failed to validate push devices", err)
		}

		if len(devices) == 0 {
			return clierrors.NoPushDevices()
		}

		notifiers = append(notifiers, pushClient)
	}

	if interval <= 0 {
		interval = cfg.WatchInterval()
	}

	logger.Info("starting watch loop",
		"auth_source", string(source),
		"projects", ids,
		"interval", interval.String(),
		"push", push,
		"feedbacks", feedbacks || cfg.FeedbacksEnabled(),
	)

	state := &watch.LoopState{}
	loop := watch.NewLoop(c, state, watch.Options{
		Interval:         interval,
		Subsample:        cfg.Subsample(),
		FeedbacksEnabled: feedbacks || cfg.FeedbacksEnabled(),
		Desired:          watch.BuildFilters(ids, cfg.Languages()),
		Notifiers:        notifiers,
		Logger:           logger,
		Render: func(s *watch.LoopState) {
			watch.RenderStatus(out, s, certified)
		},
	})

	exit := watch.NewExitController(c, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reasons := make(chan watch.ExitReason, 2)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		reasons <- watch.ReasonInterrupt
	}()

	// Raw mode turns q/Esc into the suspend trigger. It also swallows
	// Ctrl+C, which then arrives as a key byte instead of a signal.
	if terminal.RawKeyReader() {
		keys, restore, err := terminal.RawKeys(runCtx)
		if err != nil {
			logger.Warn("raw key input unavailable", "error", err)
		} else {
			defer func() { _ = restore() }()

			go func() {
				for key := range keys {
					switch key {
					case keyQuit, keyEscape:
						reasons <- watch.ReasonSuspend
						return
					case keyCtrlC:
						reasons <- watch.ReasonInterrupt
						return
					}
				}
			}()

			out.Muted("Press q or Esc to suspend, Ctrl+C to stop and withdraw")
		}
	}

	go func() {
		_ = loop.Run(runCtx)
	}()

	reason := <-reasons
	cancel()

	cleanupCtx, cancelCleanup := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancelCleanup()

	code := exit.Trigger(cleanupCtx, reason, loop.RequestID())
	if code != clierrors.ExitSuccess {
		return clierrors.RequestCleanupFailed(errors.New("delete request did not complete"))
	}

	if reason == watch.ReasonSuspend {
		out.Success("Suspended. The request stays registered and expires on its own.")
	} else {
		out.Success("Stopped. Withdrew the outstanding request (%d assignments since start).", loop.Snapshot().AssignedTotal)
	}

	return nil
}

// summarizeFilters renders the desired filter set for the status command.
func summarizeFilters(filters []client.ProjectFilter, certified map[string]string) string {
	if len(filters) == 0 {
		return "none"
	}

	seen := make(map[string]struct{}, len(filters))
	summary := ""

	for _, f := range filters {
		if _, ok := seen[f.ProjectID]; ok {
			continue
		}

		seen[f.ProjectID] = struct{}{}

		name := f.ProjectID
		if display, ok := certified[f.ProjectID]; ok && display != "" {
			name = display
		}

		if summary != "" {
			summary += ", "
		}

		summary += name
	}

	return fmt.Sprintf("%s (%d filters)", summary, len(filters))
}
