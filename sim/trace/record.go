// Package trace provides decision-trace recording for the simulation
// driver. This package has no dependency on sim — it stores pure data
// types so the driver can record into it without an import cycle, and the
// embedding program can inspect or summarize a trace independently.
package trace

// EpochRecord captures what one epoch of the driver did: its time bounds,
// how many spikes the communicator gathered across all ranks, and how many
// events each local lane merged into its current buffer for the epoch.
type EpochRecord struct {
	EpochID        int64
	TBegin         float64
	TEnd           float64
	SpikesGathered int
	EventsMerged   []int // per local lane, same order as Simulation.Groups()
}

// TotalEventsMerged sums EventsMerged across every lane.
func (r EpochRecord) TotalEventsMerged() int {
	total := 0
	for _, n := range r.EventsMerged {
		total += n
	}
	return total
}
