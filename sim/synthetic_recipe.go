package sim

import "math/rand"

// synthetic_recipe.go provides small, self-contained Recipe implementations
// used by the seed tests (spec.md §8 S1-S6) and the `--network` flag of the
// CLI's `run` command, so the driver can be exercised without an external morphology or
// mechanism-description toolchain. These mirror the ring/all-to-all network
// generators original_source ships under example/ for its miniapp and unit
// tests, reduced to what Recipe needs.

// staticRecipe is the common backing store for the synthetic recipes: a
// flat, precomputed adjacency list keyed by destination gid.
type staticRecipe struct {
	n        int
	kind     CellKind
	desc     func(GID) CellDescription
	incoming map[GID][]RecipeConnection
	gapJuncs map[GID][]GapJunctionPeer
}

func newStaticRecipe(n int, kind CellKind, desc func(GID) CellDescription) *staticRecipe {
	return &staticRecipe{
		n:        n,
		kind:     kind,
		desc:     desc,
		incoming: make(map[GID][]RecipeConnection),
		gapJuncs: make(map[GID][]GapJunctionPeer),
	}
}

func (r *staticRecipe) connect(src, dst GID, srcLID, dstLID LID, weight, delay float64) {
	r.incoming[dst] = append(r.incoming[dst], RecipeConnection{
		Source: src, SourceLID: srcLID, DestLID: dstLID, Weight: weight, Delay: delay,
	})
}

// addGapJunction records an undirected gap-junction pair, listed from both
// endpoints as Recipe requires.
func (r *staticRecipe) addGapJunction(a, b GID) {
	r.gapJuncs[a] = append(r.gapJuncs[a], GapJunctionPeer{Peer: b})
	r.gapJuncs[b] = append(r.gapJuncs[b], GapJunctionPeer{Peer: a})
}

func (r *staticRecipe) NumCells() int { return r.n }

func (r *staticRecipe) GetCellKind(GID) CellKind { return r.kind }

func (r *staticRecipe) GetCellDescription(gid GID) CellDescription { return r.desc(gid) }

func (r *staticRecipe) ConnectionsOn(gid GID) []RecipeConnection { return r.incoming[gid] }

func (r *staticRecipe) GapJunctionsOn(gid GID) []GapJunctionPeer { return r.gapJuncs[gid] }

func (r *staticRecipe) NumProbes(GID) int { return 0 }

func (r *staticRecipe) GetProbe(GID, int) Probe { return Probe{} }

// RingRecipe builds an n-cell LIF ring: cell i connects to cell (i+1)%n with
// the given weight and delay (S2 in spec.md §8).
func RingRecipe(n int, weight, delay float64) Recipe {
	r := newStaticRecipe(n, CellKindLIF, func(GID) CellDescription {
		return CellDescription{Kind: CellKindLIF, LIF: DefaultLIFParams()}
	})
	for i := 0; i < n; i++ {
		src := GID(i)
		dst := GID((i + 1) % n)
		r.connect(src, dst, 0, 0, weight, delay)
	}
	return r
}

// AllToAllRecipe builds an n-cell LIF network where every ordered pair
// (i, j), i != j, has a connection i -> j with the given weight and delay
// (S3 in spec.md §8).
func AllToAllRecipe(n int, weight, delay float64) Recipe {
	r := newStaticRecipe(n, CellKindLIF, func(GID) CellDescription {
		return CellDescription{Kind: CellKindLIF, LIF: DefaultLIFParams()}
	})
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			r.connect(GID(i), GID(j), 0, 0, weight, delay)
		}
	}
	return r
}

// RandomRecipeConfig parametrizes RandomRecipe.
type RandomRecipeConfig struct {
	NumCells      int
	InDegree      int
	WeightMean    float64
	WeightStdDev  float64
	DelayMin      float64
	DelayMax      float64
	Seed          int64
}

// RandomRecipe builds a bounded-in-degree random directed network: every
// cell draws InDegree distinct sources (no self-loops), with weights drawn
// from a clamped Gaussian and delays drawn uniformly from
// [DelayMin, DelayMax]. Deterministic given Seed, drawn from the
// SubsystemRecipe RNG subsystem (rng.go) so recipe generation does not
// perturb any other subsystem's sequence.
func RandomRecipe(cfg RandomRecipeConfig) Recipe {
	if cfg.DelayMin <= 0 {
		cfg.DelayMin = 0.1
	}
	if cfg.DelayMax < cfg.DelayMin {
		cfg.DelayMax = cfg.DelayMin
	}
	prng := NewPartitionedRNG(NewSimulationKey(cfg.Seed)).ForSubsystem(SubsystemRecipe)

	r := newStaticRecipe(cfg.NumCells, CellKindLIF, func(GID) CellDescription {
		return CellDescription{Kind: CellKindLIF, LIF: DefaultLIFParams()}
	})

	n := cfg.NumCells
	inDegree := cfg.InDegree
	if inDegree > n-1 {
		inDegree = n - 1
	}
	for dst := 0; dst < n; dst++ {
		sources := distinctSources(prng, n, dst, inDegree)
		for _, src := range sources {
			weight := clampedGaussian(prng, cfg.WeightMean, cfg.WeightStdDev, 0, cfg.WeightMean*4+1)
			delay := cfg.DelayMin + prng.Float64()*(cfg.DelayMax-cfg.DelayMin)
			r.connect(GID(src), GID(dst), 0, 0, weight, delay)
		}
	}
	return r
}

// distinctSources draws k distinct gids from [0, n) excluding exclude.
func distinctSources(rng *rand.Rand, n, exclude, k int) []int {
	if k <= 0 {
		return nil
	}
	seen := make(map[int]bool, k)
	out := make([]int, 0, k)
	for len(out) < k && len(seen) < n-1 {
		c := rng.Intn(n)
		if c == exclude || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// clampedGaussian mirrors the corpus's clamped-Gaussian sampler idiom
// (sampling a jittered parameter, then clamping to a valid range) rather
// than returning unbounded tails.
func clampedGaussian(rng *rand.Rand, mean, stdDev, min, max float64) float64 {
	v := rng.NormFloat64()*stdDev + mean
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
