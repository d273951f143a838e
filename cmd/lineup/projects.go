package main

import (
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lineup-dev/lineup/internal/config"
	clierrors "github.com/lineup-dev/lineup/internal/errors"
	"github.com/lineup-dev/lineup/internal/output"
)

// ProjectInfo represents one certified project for JSON output.
type ProjectInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Requested bool   `json:"requested"`
}

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List certified projects",
		Long: `Display the projects you are certified for and whether each one is
currently requested by the watch loop.`,
		Example: `  lineup projects
  lineup projects --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			certified := cfg.CertifiedProjects()
			if len(certified) == 0 {
				return clierrors.NoCertifiedProjects()
			}

			requested, uncertified := config.ResolveRequestedProjects(cfg.RequestedProjects(), certified)

			requestedSet := make(map[string]bool, len(requested))
			for _, id := range requested {
				requestedSet[id] = true
			}

			ids := make([]string, 0, len(certified))
			for id := range certified {
				ids = append(ids, id)
			}

			sort.Strings(ids)

			if out.JSON {
				projects := make([]ProjectInfo, 0, len(ids))
				for _, id := range ids {
					projects = append(projects, ProjectInfo{
						ID:        id,
						Name:      certified[id],
						Requested: requestedSet[id],
					})
				}

				return out.PrintJSON(projects)
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Project", "Requested"})

			for _, id := range ids {
				mark := ""
				if requestedSet[id] {
					mark = output.CheckMark
				}

				t.AppendRow(table.Row{id, certified[id], mark})
			}

			out.Println(t.Render())

			if len(uncertified) > 0 {
				out.Println()
				out.Warning("Requested but not certified: %v", uncertified)
			}

			return nil
		},
	}
}
