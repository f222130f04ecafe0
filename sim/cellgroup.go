// Defines the CellGroup contract every concrete cell implementation
// (group_lif.go, group_spikesource.go, group_cable.go) satisfies, plus the
// binning-policy type the driver fans out to every group; the sampler
// types the contract refers to are in sampler.go (spec.md §4.4, §4.9).

package sim

// BinningPolicy controls how a cell group rounds event delivery times
// before integrating them, trading determinism/performance for temporal
// precision. None delivers events at their exact time; a non-zero interval
// rounds each event's time down to the nearest multiple of the interval
// relative to the epoch start, so repeated runs bin identically regardless
// of floating-point accumulation order (spec.md §4.9).
type BinningPolicy struct {
	Interval float64 // 0 disables binning
}

// Bin moves t onto a bin boundary relative to epochStart by truncating
// (t - epochStart) / Interval toward zero: for t at or after epochStart that
// is the boundary at or before t, for t before epochStart the boundary at
// or after t. With a zero Interval, Bin is the identity function.
func (p BinningPolicy) Bin(t, epochStart float64) float64 {
	if p.Interval <= 0 {
		return t
	}
	offset := t - epochStart
	n := float64(int64(offset / p.Interval))
	return epochStart + n*p.Interval
}

// CellGroup is the abstract per-group stepper the driver advances once per
// epoch (spec.md §4.4). Implementations own their cells' state and the
// bookkeeping needed to answer Spikes after Advance; they do not know about
// ranks, transport, or other groups.
type CellGroup interface {
	// Advance integrates every cell in the group from epoch.TBegin to
	// epoch.TEnd, consuming events (already binned if a policy is set) due
	// in that interval. Implementations must be deterministic: identical
	// epoch, events and prior state always produce identical spikes and
	// final state.
	Advance(epoch Epoch, events []Event)

	// Spikes returns every spike the group produced since the last
	// ClearSpikes, ordered by source LID then time.
	Spikes() []Spike

	// ClearSpikes discards the accumulated spike list, called by the driver
	// once a spike exchange has consumed it.
	ClearSpikes()

	// Reset returns every cell in the group to its initial state and clears
	// accumulated spikes, used to replay a simulation deterministically
	// from t=0.
	Reset()

	// AddSampler registers a sampler callback for the given target cells.
	// Returns immediately if none of targets belong to this group; a
	// CellGroup never errors on a sampler it happens not to cover.
	AddSampler(handle SamplerHandle, targets []GID, sched SamplerSchedule, fn SamplerFunc)

	// RemoveSampler unregisters a previously added sampler. A no-op if the
	// handle is not present in this group.
	RemoveSampler(handle SamplerHandle)

	// SetBinningPolicy installs the event-time rounding policy used by
	// subsequent Advance calls.
	SetBinningPolicy(policy BinningPolicy)

	// GIDs returns the cells this group owns, in ascending order.
	GIDs() []GID
}
