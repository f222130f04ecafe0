// Implements CableGroup, the placeholder for multi-compartment cable
// neurons. SWC morphology parsing, cable discretization and the numerical
// solvers that would integrate the cable equation are explicitly out of
// scope here (spec.md §1); CableGroup satisfies the CellGroup contract so
// the domain decomposition, communicator and driver can be exercised
// end-to-end against a recipe that names cable cells, but its Advance is a
// no-op beyond bookkeeping: cable cells never spike in this repository.

package sim

// CableGroup is a structural stand-in for a real multi-compartment solver.
type CableGroup struct {
	gids     []GID
	binning  BinningPolicy
	samplers map[SamplerHandle][]GID
}

// NewCableGroup builds a placeholder group for gids.
func NewCableGroup(gids []GID) *CableGroup {
	return &CableGroup{
		gids:     append([]GID(nil), gids...),
		samplers: make(map[SamplerHandle][]GID),
	}
}

func (g *CableGroup) GIDs() []GID { return append([]GID(nil), g.gids...) }

// Advance discards events and produces no spikes: see the package-level
// comment on why cable integration is not implemented.
func (g *CableGroup) Advance(Epoch, []Event) {}

func (g *CableGroup) Spikes() []Spike { return nil }

func (g *CableGroup) ClearSpikes() {}

func (g *CableGroup) Reset() {}

func (g *CableGroup) AddSampler(handle SamplerHandle, targets []GID, _ SamplerSchedule, _ SamplerFunc) {
	for _, t := range targets {
		for _, gid := range g.gids {
			if t == gid {
				g.samplers[handle] = targets
				return
			}
		}
	}
}

func (g *CableGroup) RemoveSampler(handle SamplerHandle) {
	delete(g.samplers, handle)
}

func (g *CableGroup) SetBinningPolicy(policy BinningPolicy) {
	g.binning = policy
}
