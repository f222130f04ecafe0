package sim

// Probe describes one measurement point on a cell. Its internal structure
// is opaque to the driver; Kind/Location are a minimal addressable handle
// for the embedding program and sampler callbacks.
type Probe struct {
	Kind     string
	Location string
}

// RecipeConnection is an incoming connection as returned by
// Recipe.ConnectionsOn: the peer the recipe still has to resolve is the
// source GID (the destination is implicit — it is the gid ConnectionsOn was
// called with).
type RecipeConnection struct {
	Source    GID
	SourceLID LID
	DestLID   LID
	Weight    float64
	Delay     float64
}

// GapJunctionPeer is one endpoint of an undirected gap-junction coupling.
type GapJunctionPeer struct {
	Peer GID
}

// Recipe is the pull-model description of the network (spec.md §4.2). Every
// method must be pure and reproducible: the same call with the same
// arguments returns the same result for the lifetime of the recipe, and the
// recipe may be queried many times from many goroutines.
//
// Contract: connections and gap junctions seen from both endpoints must
// agree; a connection listed on gid X from source Y must not be listed a
// second time on Y. All delays are strictly positive.
type Recipe interface {
	// NumCells returns the total GID count. Must be identical on all ranks.
	NumCells() int

	// GetCellKind returns the enumerated kind of gid.
	GetCellKind(gid GID) CellKind

	// GetCellDescription returns the opaque cell payload used only by
	// cell-group factories.
	GetCellDescription(gid GID) CellDescription

	// ConnectionsOn returns the incoming connections for gid, from any
	// source.
	ConnectionsOn(gid GID) []RecipeConnection

	// GapJunctionsOn returns gid's gap-junction peers, forming an
	// undirected connectivity graph together with the peers' own
	// GapJunctionsOn results.
	GapJunctionsOn(gid GID) []GapJunctionPeer

	// NumProbes returns the number of probes attached to gid.
	NumProbes(gid GID) int

	// GetProbe returns probe index of gid. index must be in [0, NumProbes(gid)).
	GetProbe(gid GID, index int) Probe
}

// ValidateRecipe checks the structural invariants spec.md §4.2/§7 require
// before a domain decomposition or communicator is built from rec:
// connection endpoints in range, strictly positive delays, and symmetric
// gap-junction listings. It does not check cross-kind gap-junction
// components; that is a property of the decomposition (spec.md §4.3) and is
// reported by BuildDomainDecomposition instead, since it requires the full
// connectivity graph to detect.
func ValidateRecipe(rec Recipe) error {
	n := rec.NumCells()
	gjSeen := make(map[GID]map[GID]bool)

	for gid := 0; gid < n; gid++ {
		g := GID(gid)
		for _, c := range rec.ConnectionsOn(g) {
			if int(c.Source) >= n {
				return &ConfigError{GID: g, Field: "connection.source", Message: "source gid out of range"}
			}
			if c.Delay <= 0 {
				return &ConfigError{GID: g, Field: "connection.delay", Message: "delay must be strictly positive"}
			}
		}
		for _, gj := range rec.GapJunctionsOn(g) {
			if int(gj.Peer) >= n {
				return &ConfigError{GID: g, Field: "gap_junction.peer", Message: "peer gid out of range"}
			}
			if gjSeen[g] == nil {
				gjSeen[g] = make(map[GID]bool)
			}
			gjSeen[g][gj.Peer] = true
		}
	}

	// Symmetry: every gap junction must be visible from both endpoints.
	for gid := 0; gid < n; gid++ {
		g := GID(gid)
		for peer := range gjSeen[g] {
			if !gjSeen[peer][g] {
				return &ConfigError{GID: g, Field: "gap_junction", Message: "gap junction not listed symmetrically from peer"}
			}
		}
	}

	return nil
}
