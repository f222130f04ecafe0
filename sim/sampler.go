// Implements the sampler handle registry: a dense pool of integer handles
// the driver fans out to every cell group on AddSampler/RemoveSampler, so
// the embedding program can attach a probe callback once and have it reach
// whichever group happens to own the target cell (spec.md §4.9).

package sim

// SamplerHandle identifies a registered sampler across its lifetime.
type SamplerHandle int

// Sample is one probe reading delivered to a SamplerFunc.
type Sample struct {
	GID   GID
	Time  float64
	Value float64
}

// SamplerFunc receives probe readings as a cell group produces them.
type SamplerFunc func(samples []Sample)

// SamplerSchedule is handed to every cell group along with its sampler.
// None of the cell groups in this package reads Interval: LIFGroup reports
// one sample after each event it applies to a targeted cell, whatever the
// Interval.
type SamplerSchedule struct {
	Interval float64
}

type samplerEntry struct {
	targets []GID
	sched   SamplerSchedule
	fn      SamplerFunc
}

// SamplerRegistry hands out dense SamplerHandles and fans registration out
// to every CellGroup in a Simulation. It does not itself dispatch samples;
// that is each CellGroup's job once it holds the callback.
type SamplerRegistry struct {
	entries []samplerEntry
	free    []SamplerHandle
	groups  []CellGroup
}

// NewSamplerRegistry creates a registry that fans out to the given groups.
func NewSamplerRegistry(groups []CellGroup) *SamplerRegistry {
	return &SamplerRegistry{groups: groups}
}

// Add registers fn to fire on sched for the given target cells, across
// whichever groups own them, and returns a handle for later removal.
func (r *SamplerRegistry) Add(targets []GID, sched SamplerSchedule, fn SamplerFunc) SamplerHandle {
	entry := samplerEntry{targets: targets, sched: sched, fn: fn}

	var h SamplerHandle
	if n := len(r.free); n > 0 {
		h = r.free[n-1]
		r.free = r.free[:n-1]
		r.entries[h] = entry
	} else {
		h = SamplerHandle(len(r.entries))
		r.entries = append(r.entries, entry)
	}

	for _, g := range r.groups {
		g.AddSampler(h, targets, sched, fn)
	}
	return h
}

// Remove unregisters a sampler from every group and frees its handle for
// reuse. Removing an unknown or already-removed handle is a *SamplerError.
func (r *SamplerRegistry) Remove(h SamplerHandle) error {
	if int(h) < 0 || int(h) >= len(r.entries) {
		return &SamplerError{Handle: h, Message: "unknown sampler handle"}
	}
	for _, free := range r.free {
		if free == h {
			return &SamplerError{Handle: h, Message: "sampler handle already removed"}
		}
	}

	for _, g := range r.groups {
		g.RemoveSampler(h)
	}
	r.entries[h] = samplerEntry{}
	r.free = append(r.free, h)
	return nil
}

// RemoveAll unregisters every currently-live sampler.
func (r *SamplerRegistry) RemoveAll() {
	for h := range r.entries {
		handle := SamplerHandle(h)
		if r.isFree(handle) {
			continue
		}
		for _, g := range r.groups {
			g.RemoveSampler(handle)
		}
	}
	r.entries = nil
	r.free = nil
}

func (r *SamplerRegistry) isFree(h SamplerHandle) bool {
	for _, free := range r.free {
		if free == h {
			return true
		}
	}
	return false
}
