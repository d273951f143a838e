package watch

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lineup-dev/lineup/internal/client"
	"github.com/lineup-dev/lineup/internal/output"
)

// PositionsTable renders queue positions as a table. Project ids are
// replaced with display names when the certified mapping knows them.
func PositionsTable(positions []client.QueuePosition, certified map[string]string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Project", "Language", "Position"})

	for _, p := range positions {
		name := p.ProjectID
		if display, ok := certified[p.ProjectID]; ok && display != "" {
			name = display
		}

		t.AppendRow(table.Row{name, p.Language, p.Position})
	}

	return t.Render()
}

// RenderStatus writes one cycle's snapshot to the console.
func RenderStatus(w *output.Writer, state *LoopState, certified map[string]string) {
	if state.LastError != nil {
		w.Warning("cycle failed, retrying next tick: %v", state.LastError)
		return
	}

	if state.Request != nil {
		w.Info("request %s active, %d/%d assigned, %d assigned since start",
			state.Request.ID, state.AssignedCount, Capacity, state.AssignedTotal)
	} else {
		w.Info("at capacity (%d/%d assigned), %d assigned since start",
			state.AssignedCount, Capacity, state.AssignedTotal)
	}

	if len(state.Positions) > 0 {
		w.Println(PositionsTable(state.Positions, certified))
	}
}
