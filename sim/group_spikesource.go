// Implements SpikeSourceGroup, a cell group that replays a fixed,
// pre-recorded spike train per cell. It never consumes events; advancing
// it simply emits whichever of its cells' recorded spikes fall in the
// epoch (spec.md §4.4 spike-source kind).

package sim

import "sort"

// SpikeSourceGroup replays each cell's SpikeTrain (from its
// CellDescription) in time order.
type SpikeSourceGroup struct {
	gids   []GID
	trains [][]float64
	cursor []int
	spikes []Spike
}

// NewSpikeSourceGroup builds a group for gids, reading each cell's spike
// train from rec. Trains are sorted ascending so the replay cursor can
// advance monotonically.
func NewSpikeSourceGroup(rec Recipe, gids []GID) *SpikeSourceGroup {
	g := &SpikeSourceGroup{
		gids:   append([]GID(nil), gids...),
		trains: make([][]float64, len(gids)),
		cursor: make([]int, len(gids)),
	}
	for i, gid := range gids {
		train := append([]float64(nil), rec.GetCellDescription(gid).SpikeTrain...)
		sort.Float64s(train)
		g.trains[i] = train
	}
	return g
}

func (g *SpikeSourceGroup) GIDs() []GID { return append([]GID(nil), g.gids...) }

// Advance emits every recorded spike in [epoch.TBegin, epoch.TEnd) for each
// cell; events is ignored, since spike sources accept no synaptic input.
func (g *SpikeSourceGroup) Advance(epoch Epoch, _ []Event) {
	for i, train := range g.trains {
		c := g.cursor[i]
		for c < len(train) && train[c] < epoch.TBegin {
			c++
		}
		for c < len(train) && train[c] < epoch.TEnd {
			// LID 0: a spike source exposes exactly one detector per cell.
			g.spikes = append(g.spikes, Spike{Source: Endpoint{GID: g.gids[i], LID: 0}, Time: train[c]})
			c++
		}
		g.cursor[i] = c
	}

	sort.Slice(g.spikes, func(i, j int) bool {
		if g.spikes[i].Source.LID != g.spikes[j].Source.LID {
			return g.spikes[i].Source.LID < g.spikes[j].Source.LID
		}
		return g.spikes[i].Time < g.spikes[j].Time
	})
}

func (g *SpikeSourceGroup) Spikes() []Spike { return g.spikes }

func (g *SpikeSourceGroup) ClearSpikes() { g.spikes = g.spikes[:0] }

func (g *SpikeSourceGroup) Reset() {
	for i := range g.cursor {
		g.cursor[i] = 0
	}
	g.spikes = nil
}

// AddSampler is a no-op: spike-source cells have no continuous state to
// sample, only the spikes already reported via Spikes.
func (g *SpikeSourceGroup) AddSampler(SamplerHandle, []GID, SamplerSchedule, SamplerFunc) {}

func (g *SpikeSourceGroup) RemoveSampler(SamplerHandle) {}

// SetBinningPolicy is a no-op: replayed spike times are never rounded.
func (g *SpikeSourceGroup) SetBinningPolicy(BinningPolicy) {}
