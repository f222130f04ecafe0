// Implements LIFGroup, a cell group of leaky integrate-and-fire point
// neurons. Because the driver's epoch interface only requires determinism,
// not any particular solver, cells are integrated exactly between events
// via the closed-form LIF solution rather than a fixed-step numerical
// scheme (spec.md §1 explicitly excludes cable-equation solvers, not this).

package sim

import (
	"math"
	"sort"
)

type lifState struct {
	v               float64
	lastUpdate      float64
	refractoryUntil float64
}

// LIFGroup advances a set of independent LIF cells driven by synaptic
// events; cells never interact directly (no gap junctions on this kind).
type LIFGroup struct {
	gids     []GID
	params   []LIFParams
	state    []lifState
	spikes   []Spike
	binning  BinningPolicy
	samplers map[SamplerHandle]samplerBinding
}

type samplerBinding struct {
	lids  []int
	sched SamplerSchedule
	fn    SamplerFunc
}

// NewLIFGroup builds a group for the given gids, reading each cell's
// LIFParams from rec.
func NewLIFGroup(rec Recipe, gids []GID) *LIFGroup {
	g := &LIFGroup{
		gids:     append([]GID(nil), gids...),
		params:   make([]LIFParams, len(gids)),
		state:    make([]lifState, len(gids)),
		samplers: make(map[SamplerHandle]samplerBinding),
	}
	for i, gid := range gids {
		g.params[i] = rec.GetCellDescription(gid).LIF
	}
	return g
}

func (g *LIFGroup) GIDs() []GID { return append([]GID(nil), g.gids...) }

func (g *LIFGroup) indexOfLID(lid LID) int {
	idx := int(lid)
	if idx < 0 || idx >= len(g.gids) {
		return -1
	}
	return idx
}

// decayTo advances cell i's membrane potential from its lastUpdate to t
// using the exact exponential solution towards VRest, without checking
// threshold (decay alone cannot cross it upward).
func (g *LIFGroup) decayTo(i int, t float64) {
	s := &g.state[i]
	if t <= s.lastUpdate {
		return
	}
	p := g.params[i]
	dt := t - s.lastUpdate
	if p.Tau > 0 {
		s.v = p.VRest + (s.v-p.VRest)*math.Exp(-dt/p.Tau)
	}
	s.lastUpdate = t
}

// Advance integrates every cell through epoch, applying events (assumed
// sorted by time by the caller's event lane) as instantaneous weight jumps.
func (g *LIFGroup) Advance(epoch Epoch, events []Event) {
	for i := range g.state {
		if g.state[i].lastUpdate < epoch.TBegin {
			g.state[i].lastUpdate = epoch.TBegin
		}
	}

	for _, ev := range events {
		i := g.indexOfLID(ev.Dest)
		if i < 0 {
			continue
		}
		t := ev.Time
		if g.binning.Interval > 0 {
			t = g.binning.Bin(t, epoch.TBegin)
		}
		if t < epoch.TBegin || t >= epoch.TEnd {
			continue
		}
		s := &g.state[i]
		if t < s.refractoryUntil {
			continue
		}
		g.decayTo(i, t)
		p := g.params[i]
		s.v += ev.Weight
		if s.v >= p.VThresh {
			// LID 0: every LIF cell has exactly one spike detector: the
			// group-local index i addresses g's state, not the detector.
			g.spikes = append(g.spikes, Spike{Source: Endpoint{GID: g.gids[i], LID: 0}, Time: t})
			s.v = p.VReset
			s.refractoryUntil = t + p.RefractoryPeriod
		}
		g.dispatchSamplers(i, t, s.v)
	}

	for i := range g.state {
		g.decayTo(i, epoch.TEnd)
	}

	sort.Slice(g.spikes, func(i, j int) bool {
		if g.spikes[i].Source.LID != g.spikes[j].Source.LID {
			return g.spikes[i].Source.LID < g.spikes[j].Source.LID
		}
		return g.spikes[i].Time < g.spikes[j].Time
	})
}

func (g *LIFGroup) dispatchSamplers(i int, t, v float64) {
	for _, b := range g.samplers {
		for _, lid := range b.lids {
			if lid == i {
				b.fn([]Sample{{GID: g.gids[i], Time: t, Value: v}})
			}
		}
	}
}

func (g *LIFGroup) Spikes() []Spike { return g.spikes }

func (g *LIFGroup) ClearSpikes() { g.spikes = g.spikes[:0] }

func (g *LIFGroup) Reset() {
	for i := range g.state {
		g.state[i] = lifState{v: g.params[i].VRest}
	}
	g.spikes = nil
}

func (g *LIFGroup) AddSampler(handle SamplerHandle, targets []GID, sched SamplerSchedule, fn SamplerFunc) {
	set := make(map[GID]bool, len(targets))
	for _, gid := range targets {
		set[gid] = true
	}
	var lids []int
	for lid, gid := range g.gids {
		if set[gid] {
			lids = append(lids, lid)
		}
	}
	if len(lids) == 0 {
		return
	}
	g.samplers[handle] = samplerBinding{lids: lids, sched: sched, fn: fn}
}

func (g *LIFGroup) RemoveSampler(handle SamplerHandle) {
	delete(g.samplers, handle)
}

func (g *LIFGroup) SetBinningPolicy(policy BinningPolicy) {
	g.binning = policy
}
