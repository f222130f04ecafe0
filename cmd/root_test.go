package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nrnsim/nrnsim/sim"
)

func TestBuildNetwork_Ring(t *testing.T) {
	network, numCells, weight, delay = "ring", 5, 2.0, 1.0
	defer func() { network, numCells = "ring", 4 }()

	rec, err := buildNetwork()
	assert.NoError(t, err)
	assert.Equal(t, 5, rec.NumCells())
}

func TestBuildNetwork_AllToAll(t *testing.T) {
	network, numCells, weight, delay = "all-to-all", 3, 1.0, 0.5
	defer func() { network, numCells = "ring", 4 }()

	rec, err := buildNetwork()
	assert.NoError(t, err)
	assert.Equal(t, 3, rec.NumCells())
}

func TestBuildNetwork_Random(t *testing.T) {
	network, numCells, inDegree, weight, delay, seed = "random", 6, 2, 1.0, 1.0, 7
	defer func() { network, numCells = "ring", 4 }()

	rec, err := buildNetwork()
	assert.NoError(t, err)
	assert.Equal(t, 6, rec.NumCells())
}

func TestBuildNetwork_UnknownKindIsError(t *testing.T) {
	network = "spaghetti"
	defer func() { network = "ring" }()

	_, err := buildNetwork()
	assert.Error(t, err)
}

func TestBuildTransport_InProcessDefault(t *testing.T) {
	ctx := sim.DefaultContext()
	tr, err := buildTransport(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, tr.NumRanks())
	assert.NoError(t, tr.Close())
}

func TestBuildTransport_DryRunUsesConfiguredRanksAndTileSize(t *testing.T) {
	numCells = 4
	ctx := sim.DefaultContext()
	ctx.Transport = string(sim.TransportDryRun)
	ctx.DryRunRanks = 3
	ctx.DryRunCellsPerTile = 4

	tr, err := buildTransport(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, tr.NumRanks())
	assert.NoError(t, tr.Close())
}

func TestBuildTransport_MultiRankWithoutPeerFileIsError(t *testing.T) {
	peerFile = ""
	ctx := sim.DefaultContext()
	ctx.Transport = string(sim.TransportMultiRank)

	_, err := buildTransport(ctx)
	assert.Error(t, err)
}

func TestBuildTransport_UnknownKindIsError(t *testing.T) {
	ctx := sim.DefaultContext()
	ctx.Transport = "teleport"

	_, err := buildTransport(ctx)
	assert.Error(t, err)
}

func TestReadPeerFile_SkipsBlankLinesAndTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peers.txt")
	content := "127.0.0.1:9001\n\n  127.0.0.1:9002  \n127.0.0.1:9003\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	addrs, err := readPeerFile(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:9001", "127.0.0.1:9002", "127.0.0.1:9003"}, addrs)
}

func TestReadPeerFile_MissingFileIsError(t *testing.T) {
	_, err := readPeerFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestApplyContextFlagOverrides_OnlyChangedFlagsOverrideConfig(t *testing.T) {
	ctx := sim.Context{NumThreads: 8, GPUID: 2, Transport: "dry-run", BinPolicy: "regular", BinInterval: 0.1}

	assert.NoError(t, runCmd.Flags().Set("threads", "16"))
	defer runCmd.Flags().Set("threads", "1")

	applyContextFlagOverrides(runCmd, &ctx)

	assert.Equal(t, 16, ctx.NumThreads)
	assert.Equal(t, 2, ctx.GPUID)
	assert.Equal(t, "dry-run", ctx.Transport)
}
