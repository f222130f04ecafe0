// Package transport abstracts the collective operations the communicator
// needs to exchange spikes across ranks: a real multi-process rank, an
// in-process simulated fabric of goroutine ranks, and a dry-run mode that
// replicates a single real rank's output to approximate a larger run
// (spec.md §4.1, grounded on
// original_source/arbor/communication/dry_run_context.cpp).
//
// Transport deliberately speaks its own wire type rather than importing
// package sim, so the communicator is free to adapt domain spikes to and
// from SpikeMsg at the boundary without a dependency cycle.
package transport

// SpikeMsg is the wire representation of a spike: source gid, source lid
// and emission time, mirroring sim.Spike field-for-field.
type SpikeMsg struct {
	GID  uint32
	LID  uint32
	Time float64
}

// Transport is the collective-communication surface the communicator
// drives once per epoch.
type Transport interface {
	// Rank returns this process's rank index.
	Rank() int

	// NumRanks returns the total number of ranks participating.
	NumRanks() int

	// MinDelay reduces a local value to the global minimum across all
	// ranks; the driver calls it at the start of every run to compute the
	// epoch interval.
	MinDelay(local float64) float64

	// Max reduces a local value to the global maximum across all ranks.
	Max(local float64) float64

	// Sum reduces a local value to the global sum across all ranks.
	Sum(local float64) float64

	// GatherGids all-gathers every rank's local gid list: the result is
	// indexed by rank, result[i] being rank i's contribution, and is
	// identical on every rank. Domain decomposition (sim.BuildDomainDecomposition)
	// uses this to reconstruct the global gid_domain after each rank
	// restricts its own gap-junction search to its own block (spec.md §4.1,
	// §4.3).
	GatherGids(local []uint32) [][]uint32

	// Barrier blocks until every rank has called Barrier for the current
	// round.
	Barrier()

	// Exchange gathers every rank's local spikes and returns the
	// concatenation in rank order together with a partition: counts[i] is
	// the number of spikes contributed by rank i, so the caller can recover
	// each rank's sub-range of the combined slice without re-sorting.
	// Every rank observes identical results.
	Exchange(local []SpikeMsg) (combined []SpikeMsg, counts []int)

	// Close releases any transport-level resources (sockets, goroutines).
	Close() error
}
