package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lineup-dev/lineup/internal/client"
	"github.com/lineup-dev/lineup/internal/config"
	clierrors "github.com/lineup-dev/lineup/internal/errors"
	"github.com/lineup-dev/lineup/internal/output"
	"github.com/lineup-dev/lineup/internal/watch"
)

// StatusReport represents a one-shot queue snapshot for JSON output.
type StatusReport struct {
	AssignedCount int                    `json:"assigned_count"`
	Capacity      int                    `json:"capacity"`
	Request       *client.Request        `json:"request,omitempty"`
	Positions     []client.QueuePosition `json:"positions,omitempty"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current queue snapshot",
		Long: `Fetch a one-shot snapshot of your queue state: how many work items are
assigned, whether a submission request is outstanding, and your position
in each requested project's queue.`,
		Example: `  lineup status
  lineup status --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			_, apiClient, err := newAPIClient()
			if err != nil {
				return err
			}

			spin := out.Spinner("Fetching queue state")
			spin.Start()

			count, err := apiClient.Count(ctx)
			if err != nil {
				spin.StopWithFailure("Failed to fetch assignment count")
				return clierrors.Wrap(clierrors.ExitNetwork, "Failed to fetch assignment count", err)
			}

			request, err := apiClient.GetRequest(ctx)
			if err != nil {
				spin.StopWithFailure("Failed to fetch the outstanding request")
				return clierrors.Wrap(clierrors.ExitNetwork, "Failed to fetch the outstanding request", err)
			}

			var positions []client.QueuePosition
			if request != nil {
				positions = watch.FetchPositions(ctx, apiClient, request.ID)
			}

			spin.Stop()

			if out.JSON {
				report := StatusReport{
					AssignedCount: count,
					Capacity:      watch.Capacity,
					Request:       request,
					Positions:     positions,
				}

				if err := out.PrintJSON(report); err != nil {
					return fmt.Errorf("print status json: %w", err)
				}

				return nil
			}

			cfg := config.Load()
			certified := cfg.CertifiedProjects()

			out.Print("Assigned:  %d/%d\n", count, watch.Capacity)

			if request == nil {
				out.Print("Request:   none outstanding\n")
			} else {
				out.Print("Request:   %s\n", request.ID)
				out.Print("Projects:  %s\n", summarizeFilters(request.ProjectFilters, certified))
				out.Print("Expires:   %s\n", request.ClosedAt.Format(time.RFC3339))
			}

			if len(positions) > 0 {
				out.Println()
				out.Println(watch.PositionsTable(positions, certified))
			}

			return nil
		},
	}
}
