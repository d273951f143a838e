package watch

import (
	"context"
	"sort"

	"github.com/lineup-dev/lineup/internal/client"
)

// FetchPositions fetches the queue positions for a request and returns them
// sorted ascending by position. Any failure yields an empty set: positions
// are informational and must never fail a cycle. The server appears to
// return sorted data already; sorting here keeps rendering deterministic.
func FetchPositions(ctx context.Context, c QueueClient, requestID string) []client.QueuePosition {
	if requestID == "" {
		return []client.QueuePosition{}
	}

	positions, err := c.Positions(ctx, requestID)
	if err != nil {
		return []client.QueuePosition{}
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Position < positions[j].Position
	})

	return positions
}
