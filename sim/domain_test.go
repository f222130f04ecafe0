package sim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nrnsim/nrnsim/transport"
)

// buildDecompositions calls BuildDomainDecomposition concurrently across
// every rank's Transport handle, since the all-gather it performs blocks
// until every rank has called in. It returns each rank's (identical)
// *DomainDecomposition in rank order.
func buildDecompositions(t *testing.T, rec Recipe, trs []transport.Transport, preferGPU bool) []*DomainDecomposition {
	t.Helper()
	decomps := make([]*DomainDecomposition, len(trs))
	errs := make([]error, len(trs))
	var wg sync.WaitGroup
	for i, tr := range trs {
		wg.Add(1)
		go func(i int, tr transport.Transport) {
			defer wg.Done()
			decomps[i], errs[i] = BuildDomainDecomposition(rec, tr, preferGPU)
		}(i, tr)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	return decomps
}

// zeroRankTransport is a minimal Transport stub reporting zero ranks, used
// only to exercise BuildDomainDecomposition's num_ranks guard.
type zeroRankTransport struct{}

func (zeroRankTransport) Rank() int                              { return 0 }
func (zeroRankTransport) NumRanks() int                           { return 0 }
func (zeroRankTransport) MinDelay(local float64) float64          { return local }
func (zeroRankTransport) Max(local float64) float64               { return local }
func (zeroRankTransport) Sum(local float64) float64               { return local }
func (zeroRankTransport) GatherGids(local []uint32) [][]uint32    { return nil }
func (zeroRankTransport) Barrier()                                {}
func (zeroRankTransport) Exchange(local []transport.SpikeMsg) ([]transport.SpikeMsg, []int) {
	return local, nil
}
func (zeroRankTransport) Close() error { return nil }

func TestBlockPartition_DistributesRemainderToLowRanks(t *testing.T) {
	// 10 cells across 3 ranks: sizes 4,3,3
	rankOf := blockPartition(10, 3)

	counts := map[int]int{}
	for _, r := range rankOf {
		counts[r]++
	}
	assert.Equal(t, 4, counts[0])
	assert.Equal(t, 3, counts[1])
	assert.Equal(t, 3, counts[2])
}

func TestBuildDomainDecomposition_RingRecipe_SingleRank(t *testing.T) {
	rec := RingRecipe(4, 1.0, 1.0)

	decomp, err := BuildDomainDecomposition(rec, transport.NewSingle(), false)
	assert.NoError(t, err)
	assert.Equal(t, 1, decomp.NumRanks())

	groups := decomp.GroupsOnRank(0)
	if assert.Len(t, groups, 1) {
		assert.Equal(t, CellKindLIF, groups[0].Kind)
		assert.Len(t, groups[0].GIDs, 4)
	}
}

func TestBuildDomainDecomposition_RejectsZeroRanks(t *testing.T) {
	rec := RingRecipe(2, 1.0, 1.0)

	_, err := BuildDomainDecomposition(rec, zeroRankTransport{}, false)
	assert.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestBuildDomainDecomposition_GapJunctionComponent_SharesOneGroupAndRank(t *testing.T) {
	// GIVEN a recipe with two cells on different ranks coupled by a gap
	// junction
	rec := newStaticRecipe(4, CellKindLIF, func(GID) CellDescription {
		return CellDescription{Kind: CellKindLIF, LIF: DefaultLIFParams()}
	})
	rec.addGapJunction(0, 3)

	// WHEN decomposed across 4 ranks (one cell per rank absent the gap
	// junction)
	decomps := buildDecompositions(t, rec, transport.NewFabric(4), false)
	decomp := decomps[0]

	// THEN gids 0 and 3 land on the same rank and the same group, and every
	// rank's view agrees
	rank0, _ := decomp.RankOf(0)
	rank3, _ := decomp.RankOf(3)
	assert.Equal(t, rank0, rank3)

	group0, _ := decomp.GroupOf(0)
	group3, _ := decomp.GroupOf(3)
	assert.Equal(t, group0, group3)

	for _, other := range decomps[1:] {
		assert.Equal(t, decomp.Groups(), other.Groups())
	}
}

func TestBuildDomainDecomposition_GapJunctionAcrossKinds_IsConfigError(t *testing.T) {
	rec := newStaticRecipe(2, CellKindLIF, func(gid GID) CellDescription {
		if gid == 1 {
			return CellDescription{Kind: CellKindSpikeSource}
		}
		return CellDescription{Kind: CellKindLIF, LIF: DefaultLIFParams()}
	})
	// override GetCellKind to differ per gid: wrap via a thin recipe
	rec2 := &kindOverrideRecipe{staticRecipe: rec, kinds: map[GID]CellKind{0: CellKindLIF, 1: CellKindSpikeSource}}
	rec2.addGapJunction(0, 1)

	_, err := BuildDomainDecomposition(rec2, transport.NewSingle(), false)
	assert.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

// kindOverrideRecipe lets a test assign a distinct CellKind per gid, since
// staticRecipe itself is single-kind.
type kindOverrideRecipe struct {
	*staticRecipe
	kinds map[GID]CellKind
}

func (r *kindOverrideRecipe) GetCellKind(gid GID) CellKind {
	if k, ok := r.kinds[gid]; ok {
		return k
	}
	return r.staticRecipe.GetCellKind(gid)
}

func TestBuildDomainDecomposition_PreferGPU_AssignsGPUOnlyToCableKind(t *testing.T) {
	rec := newStaticRecipe(2, CellKindCable, func(GID) CellDescription {
		return CellDescription{Kind: CellKindCable}
	})

	decomp, err := BuildDomainDecomposition(rec, transport.NewSingle(), true)
	assert.NoError(t, err)

	groups := decomp.Groups()
	if assert.Len(t, groups, 1) {
		assert.Equal(t, BackendGPU, groups[0].Backend)
	}
}

func TestBuildDomainDecomposition_NoPreferGPU_AlwaysCPU(t *testing.T) {
	rec := newStaticRecipe(2, CellKindCable, func(GID) CellDescription {
		return CellDescription{Kind: CellKindCable}
	})

	decomp, err := BuildDomainDecomposition(rec, transport.NewSingle(), false)
	assert.NoError(t, err)

	for _, g := range decomp.Groups() {
		assert.Equal(t, BackendCPU, g.Backend)
	}
}
