// Implements domain decomposition: the mapping of recipe cells onto
// (rank, cell group, backend) triples. Cells are first block-partitioned
// across ranks by gid, then cells coupled by gap junctions are pulled
// together onto a single rank and a single group so that a gap-junction
// connected component never splits across a rank boundary (spec.md §4.3,
// grounded on original_source/src/domain_decomposition.hpp).
//
// Building the decomposition is itself a distributed operation (spec.md
// §4.1, §4.3): each rank discovers ownership of gap-junction components
// with a manual BFS seeded only from gids in its own block — Recipe is pure
// and globally queryable, so the BFS is free to traverse through gids owned
// by other ranks, but a component is only kept by the rank holding its
// lowest gid. The per-rank results are then all-gathered with
// Transport.GatherGids to reconstruct the global gid_domain identically on
// every rank. Only after that gather, with the full gid_domain in hand,
// does each rank re-derive per-group structure and validate gap-junction
// kind-uniformity; gonum's graph utilities are used there, bounded to one
// rank's already-known, closed gid set rather than the full n-cell graph.
// Validation is deliberately deferred to this post-gather step: checking
// it any earlier would let one rank return a config error before reaching
// the GatherGids call, stranding every other rank waiting on that round.

package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/nrnsim/nrnsim/transport"
)

// GroupDescription describes one cell group: the cells it contains, the
// rank it runs on, the kind/backend pair it was built for, and the index
// used to address it in CellGroup-level APIs.
type GroupDescription struct {
	Index   GroupIndex
	Rank    int
	Kind    CellKind
	Backend Backend
	GIDs    []GID
}

// DomainDecomposition is the global (identical on every rank) assignment
// of every recipe cell to a rank and a group.
type DomainDecomposition struct {
	numRanks int
	groups   []GroupDescription
	rankOf   map[GID]int
	groupOf  map[GID]GroupIndex
	localPos map[GID]int // position of gid within its owning group's GIDs slice
}

// NumRanks returns the number of ranks this decomposition was built for.
func (d *DomainDecomposition) NumRanks() int { return d.numRanks }

// Groups returns every group in the decomposition, across all ranks.
func (d *DomainDecomposition) Groups() []GroupDescription { return d.groups }

// GroupsOnRank returns the groups assigned to the given rank.
func (d *DomainDecomposition) GroupsOnRank(rank int) []GroupDescription {
	var out []GroupDescription
	for _, g := range d.groups {
		if g.Rank == rank {
			out = append(out, g)
		}
	}
	return out
}

// RankOf returns the rank a gid is assigned to.
func (d *DomainDecomposition) RankOf(gid GID) (int, bool) {
	r, ok := d.rankOf[gid]
	return r, ok
}

// GroupOf returns the group index a gid is assigned to.
func (d *DomainDecomposition) GroupOf(gid GID) (GroupIndex, bool) {
	g, ok := d.groupOf[gid]
	return g, ok
}

// LocalIndex returns gid's position within its owning group's GIDs slice,
// the addressing a cell group uses internally for its per-cell state and
// the index an Event's Dest carries for routing (communicator.go).
func (d *DomainDecomposition) LocalIndex(gid GID) (int, bool) {
	i, ok := d.localPos[gid]
	return i, ok
}

// blockPartition splits [0, numCells) into numRanks contiguous blocks,
// sized ⌈numCells/numRanks⌉ for the first (numCells mod numRanks) ranks
// and ⌊numCells/numRanks⌋ for the rest, matching the original recipe's
// gid-range partition.
func blockPartition(numCells, numRanks int) []int {
	rankOf := make([]int, numCells)
	base := numCells / numRanks
	rem := numCells % numRanks
	gid := 0
	for rank := 0; rank < numRanks; rank++ {
		size := base
		if rank < rem {
			size++
		}
		for i := 0; i < size; i++ {
			rankOf[gid] = rank
			gid++
		}
	}
	return rankOf
}

// BuildDomainDecomposition computes the global decomposition for a recipe
// across tr.NumRanks() ranks, running the calling rank's share of the
// distributed algorithm (spec.md §4.1, §4.3). Gap-junction-coupled cells
// are identified via connected components of the gap-junction graph and
// moved as a unit onto the rank of their lowest-numbered member; a
// component spanning more than one cell kind is a configuration error
// (spec.md §4.3 edge case). When preferGPU is set, groups of a GPU-capable
// kind (HasGPUBackend) are assigned the GPU backend; all other groups run
// on the CPU backend.
//
// Every rank must call this with the same rec and preferGPU; it blocks on
// tr.GatherGids and so must be called by every rank participating in tr.
func BuildDomainDecomposition(rec Recipe, tr transport.Transport, preferGPU bool) (*DomainDecomposition, error) {
	n := rec.NumCells()
	numRanks := tr.NumRanks()
	if numRanks < 1 {
		return nil, &ConfigError{Field: "num_ranks", Message: "must be >= 1"}
	}

	initialRankOf := blockPartition(n, numRanks)
	myRank := tr.Rank()

	// Phase 1: ownership. BFS the gap-junction graph manually, seeded only
	// from gids in this rank's initial block; traversal itself follows
	// GapJunctionsOn wherever it leads, since Recipe is pure and globally
	// queryable, but a component is claimed only when its lowest gid
	// started out in this rank's own block. No validation happens here: an
	// early error on just this rank would leave every other rank blocked
	// on the GatherGids call below forever.
	visited := make([]bool, n)
	var localGids []GID
	for i := 0; i < n; i++ {
		if initialRankOf[i] != myRank || visited[i] {
			continue
		}
		comp := bfsComponent(rec, n, GID(i), visited)
		sort.Slice(comp, func(a, b int) bool { return comp[a] < comp[b] })
		if len(comp) == 1 {
			localGids = append(localGids, comp[0])
			continue
		}
		if initialRankOf[int(comp[0])] == myRank {
			localGids = append(localGids, comp...)
		}
	}
	sort.Slice(localGids, func(a, b int) bool { return localGids[a] < localGids[b] })

	// Phase 2: all-gather. Reconstruct the global gid_domain from every
	// rank's local contribution and verify no real cell was claimed twice;
	// this is the one blocking collective every rank in tr must reach.
	local32 := make([]uint32, len(localGids))
	for i, gid := range localGids {
		local32[i] = uint32(gid)
	}
	gidDomain := tr.GatherGids(local32)

	finalRankOf := make(map[GID]int, n)
	claimed := make([]bool, n)
	for rank, gids := range gidDomain {
		for _, g := range gids {
			gid := GID(g)
			if int(g) < n {
				if claimed[g] {
					return nil, &ConfigError{
						GID:     gid,
						Field:   "domain_decomposition",
						Message: fmt.Sprintf("gid %d claimed by both rank %d and rank %d", gid, finalRankOf[gid], rank),
					}
				}
				claimed[g] = true
			}
			finalRankOf[gid] = rank
		}
	}
	// A single-process transport approximating many ranks (transport.DryRun)
	// only ever calls in as rank 0, so its own block is the only one a BFS
	// seeded from tr.Rank()'s block discovers; real cells no rank claimed
	// fall to the calling rank, since that is the one rank actually running
	// a cell group for them (sim.Construct builds groups only for
	// tr.Rank()). A genuinely distributed transport never hits this path:
	// every rank 0..numRanks-1 makes its own call, and blockPartition
	// guarantees their blocks already cover every real cell between them.
	for i := 0; i < n; i++ {
		if !claimed[i] {
			finalRankOf[GID(i)] = myRank
		}
	}

	// Phase 3: grouping. With the full gid_domain in hand, re-derive each
	// rank's gap-junction components and bucket cells into groups. This is
	// the same check on every rank for every rank's gid_domain entry, so it
	// is deterministic and symmetric: there is no risk of one rank erroring
	// while another proceeds, even though no further collective follows.
	componentRoot := make(map[GID]GID, n)
	for _, gids := range gidDomain {
		owned := make(map[GID]bool, len(gids))
		for _, g := range gids {
			owned[GID(g)] = true
		}
		comps, err := groupComponents(rec, gids, owned)
		if err != nil {
			return nil, err
		}
		for _, comp := range comps {
			if len(comp) < 2 {
				continue
			}
			for _, gid := range comp {
				componentRoot[gid] = comp[0]
			}
		}
	}

	// Bucket cells into groups keyed by (rank, kind, backend, component
	// root). Cells in a multi-member gap-junction component always share a
	// group together; other cells are grouped per (rank, kind).
	type bucketKey struct {
		rank       int
		kind       CellKind
		root       GID
		standalone bool
	}
	buckets := make(map[bucketKey][]GID)
	var order []bucketKey
	for i := 0; i < n; i++ {
		gid := GID(i)
		kind := rec.GetCellKind(gid)
		rank := finalRankOf[gid]
		var key bucketKey
		if root, hasRoot := componentRoot[gid]; hasRoot {
			key = bucketKey{rank: rank, kind: kind, root: root}
		} else {
			// Cells with no gap junction of their own share one group per
			// (rank, kind); standalone distinguishes this bucket from any
			// component coincidentally rooted at gid 0.
			key = bucketKey{rank: rank, kind: kind, standalone: true}
		}
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], gid)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].rank != order[j].rank {
			return order[i].rank < order[j].rank
		}
		if order[i].kind != order[j].kind {
			return order[i].kind < order[j].kind
		}
		return order[i].root < order[j].root
	})

	groups := make([]GroupDescription, 0, len(order))
	groupOf := make(map[GID]GroupIndex, n)
	localPos := make(map[GID]int, n)
	for idx, key := range order {
		gids := buckets[key]
		sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })
		backend := BackendCPU
		if preferGPU && HasGPUBackend(key.kind) {
			backend = BackendGPU
		}
		groups = append(groups, GroupDescription{
			Index:   GroupIndex(idx),
			Rank:    key.rank,
			Kind:    key.kind,
			Backend: backend,
			GIDs:    gids,
		})
		for pos, gid := range gids {
			groupOf[gid] = GroupIndex(idx)
			localPos[gid] = pos
		}
	}

	return &DomainDecomposition{
		numRanks: numRanks,
		groups:   groups,
		rankOf:   finalRankOf,
		groupOf:  groupOf,
		localPos: localPos,
	}, nil
}

// bfsComponent returns the full gap-junction connected component containing
// seed, marking every visited gid (including ones outside the caller's own
// block) in visited so repeated calls across a rank's own block don't
// retraverse the same component.
func bfsComponent(rec Recipe, n int, seed GID, visited []bool) []GID {
	visited[seed] = true
	queue := []GID{seed}
	var comp []GID
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		comp = append(comp, cur)
		for _, peer := range rec.GapJunctionsOn(cur) {
			if int(peer.Peer) >= n || visited[peer.Peer] {
				continue
			}
			visited[peer.Peer] = true
			queue = append(queue, peer.Peer)
		}
	}
	return comp
}

// groupComponents finds the gap-junction connected components within one
// rank's already-known gid_domain entry, bounded to gids that rank owns
// rather than the full n-cell graph, and verifies every multi-member
// component shares a single cell kind.
func groupComponents(rec Recipe, gids []uint32, owned map[GID]bool) ([][]GID, error) {
	g := simple.NewUndirectedGraph()
	for _, gid := range gids {
		g.AddNode(simple.Node(int64(gid)))
	}
	for _, gid := range gids {
		for _, peer := range rec.GapJunctionsOn(GID(gid)) {
			if !owned[peer.Peer] {
				continue
			}
			u, v := int64(gid), int64(peer.Peer)
			if u == v || g.HasEdgeBetween(u, v) {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
		}
	}

	raw := topo.ConnectedComponents(g)
	comps := make([][]GID, 0, len(raw))
	for _, nodes := range raw {
		comp := make([]GID, len(nodes))
		for i, nd := range nodes {
			comp[i] = GID(nd.ID())
		}
		sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
		comps = append(comps, comp)

		if len(comp) < 2 {
			continue
		}
		kind := rec.GetCellKind(comp[0])
		for _, gid := range comp[1:] {
			if rec.GetCellKind(gid) != kind {
				return nil, &ConfigError{
					GID:     gid,
					Field:   "gap_junction",
					Message: fmt.Sprintf("gap-junction component rooted at gid %d mixes cell kinds", comp[0]),
				}
			}
		}
	}
	return comps, nil
}
