package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nrnsim/nrnsim/sim"
	"github.com/nrnsim/nrnsim/sim/trace"
	"github.com/nrnsim/nrnsim/transport"
)

var (
	seed     int64
	horizon  float64
	dt       float64
	logLevel string

	threads int
	gpuID   int

	transportKind      string
	dryRunRanks        int
	dryRunCellsPerTile int
	peerFile           string
	rank               int

	binPolicy   string
	binInterval float64

	network  string
	numCells int
	delay    float64
	weight   float64
	inDegree int

	spikeFilePath string
	configPath    string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "nrnsim",
	Short: "Epoch-stepping driver for networks of multi-compartment neurons",
}

// runCmd drives a synthetic network through the simulation driver, printing
// a summary of spikes and epoch tracing on completion.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a synthetic network through the simulation driver",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		ctx := sim.DefaultContext()
		if configPath != "" {
			loaded, err := sim.LoadContextYAML(configPath)
			if err != nil {
				logrus.Fatalf("loading config %s: %v", configPath, err)
			}
			ctx = loaded
		}
		applyContextFlagOverrides(cmd, &ctx)

		rec, err := buildNetwork()
		if err != nil {
			logrus.Fatalf("building network: %v", err)
		}

		tr, err := buildTransport(ctx)
		if err != nil {
			logrus.Fatalf("building transport: %v", err)
		}
		defer tr.Close()

		decomp, err := sim.BuildDomainDecomposition(rec, tr, ctx.GPUID >= 0)
		if err != nil {
			logrus.Fatalf("building domain decomposition: %v", err)
		}

		s, err := sim.Construct(rec, decomp, tr, ctx.NumThreads)
		if err != nil {
			logrus.Fatalf("constructing simulation: %v", err)
		}
		s.SetBinningPolicy(sim.BinningPolicyFromContext(ctx))

		st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEpochs})
		s.SetTrace(st)

		if spikeFilePath != "" {
			f, err := os.Create(spikeFilePath)
			if err != nil {
				logrus.Fatalf("creating spike file %s: %v", spikeFilePath, err)
			}
			defer f.Close()
			w := sim.NewSpikeFileWriter(f)
			defer w.Flush()
			s.SetGlobalSpikeCallback(w.SpikeExportCallback())
		}

		if tr.Rank() == 0 {
			s.EnqueueStimulus(sim.ExternalStimulus{Target: sim.Endpoint{GID: 0, LID: 0}, Time: 0.0})
		}

		logrus.Infof("rank %d/%d: running %s network of %d cells to t=%g (threads=%d, transport=%s)",
			tr.Rank(), tr.NumRanks(), network, numCells, horizon, ctx.NumThreads, ctx.Transport)

		reached := s.Run(horizon)

		summary := trace.Summarize(st)
		logrus.Infof("reached t=%g, num_spikes=%d, epochs=%d, mean spikes/epoch=%.2f",
			reached, s.NumSpikes(), summary.TotalEpochs, summary.MeanSpikesPerEpoch)
	},
}

// applyContextFlagOverrides overlays any explicitly-set flag onto ctx,
// which may already carry values loaded from --config; flags always win
// over file values (SPEC_FULL.md §4.11).
func applyContextFlagOverrides(cmd *cobra.Command, ctx *sim.Context) {
	if cmd.Flags().Changed("threads") {
		ctx.NumThreads = threads
	}
	if cmd.Flags().Changed("gpu-id") {
		ctx.GPUID = gpuID
	}
	if cmd.Flags().Changed("transport") {
		ctx.Transport = transportKind
	}
	if cmd.Flags().Changed("dry-run-ranks") {
		ctx.DryRunRanks = dryRunRanks
	}
	if cmd.Flags().Changed("dry-run-cells-per-tile") {
		ctx.DryRunCellsPerTile = dryRunCellsPerTile
	}
	if cmd.Flags().Changed("bin-policy") {
		ctx.BinPolicy = binPolicy
	}
	if cmd.Flags().Changed("bin-interval") {
		ctx.BinInterval = binInterval
	}
}

// buildNetwork constructs the synthetic recipe named by --network.
func buildNetwork() (sim.Recipe, error) {
	switch network {
	case "ring":
		return sim.RingRecipe(numCells, weight, delay), nil
	case "all-to-all":
		return sim.AllToAllRecipe(numCells, weight, delay), nil
	case "random":
		return sim.RandomRecipe(sim.RandomRecipeConfig{
			NumCells:     numCells,
			InDegree:     inDegree,
			WeightMean:   weight,
			WeightStdDev: weight / 4,
			DelayMin:     delay,
			DelayMax:     delay,
			Seed:         seed,
		}), nil
	default:
		return nil, fmt.Errorf("unknown --network %q (want ring, all-to-all, or random)", network)
	}
}

// buildTransport constructs the transport named by ctx.Transport.
// multi-rank reads every peer's address from --peer-file, one per line, in
// rank order, matching the launch model of one process per rank.
func buildTransport(ctx sim.Context) (transport.Transport, error) {
	switch sim.TransportKind(ctx.Transport) {
	case sim.TransportInProcess, "":
		return transport.NewSingle(), nil
	case sim.TransportDryRun:
		n := ctx.DryRunRanks
		if n <= 0 {
			n = 1
		}
		cellsPerTile := ctx.DryRunCellsPerTile
		if cellsPerTile <= 0 {
			cellsPerTile = numCells
		}
		return transport.NewDryRun(n, uint32(cellsPerTile)), nil
	case sim.TransportMultiRank:
		if peerFile == "" {
			return nil, fmt.Errorf("--transport multi-rank requires --peer-file")
		}
		addrs, err := readPeerFile(peerFile)
		if err != nil {
			return nil, err
		}
		return transport.NewTCP(rank, addrs)
	default:
		return nil, fmt.Errorf("unknown transport %q (want in-process, dry-run, or multi-rank)", ctx.Transport)
	}
}

// readPeerFile reads one listen address per line, in rank order.
func readPeerFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading peer file %s: %w", path, err)
	}
	var addrs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		addrs = append(addrs, line)
	}
	return addrs, nil
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for synthetic network generation")
	runCmd.Flags().Float64Var(&horizon, "horizon", 10.0, "Simulation horizon (t_final)")
	runCmd.Flags().Float64Var(&dt, "dt", 0.025, "Preferred per-cell internal step (unused by the closed-form LIF/spike-source kinds; reserved for future fixed-step cell kinds)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().IntVar(&threads, "threads", 1, "Worker goroutines for the per-epoch cell-group advance")
	runCmd.Flags().IntVar(&gpuID, "gpu-id", -1, "GPU device id, or -1 for none")

	runCmd.Flags().StringVar(&transportKind, "transport", "in-process", "Transport backend (in-process, dry-run, multi-rank)")
	runCmd.Flags().IntVar(&dryRunRanks, "dry-run-ranks", 1, "Number of simulated ranks for the dry-run transport")
	runCmd.Flags().IntVar(&dryRunCellsPerTile, "dry-run-cells-per-tile", 0, "GID shift per simulated tile for the dry-run transport (defaults to --cells)")
	runCmd.Flags().StringVar(&peerFile, "peer-file", "", "Path to a newline-delimited list of peer addresses, in rank order (multi-rank transport)")
	runCmd.Flags().IntVar(&rank, "rank", 0, "This process's rank (multi-rank transport)")

	runCmd.Flags().StringVar(&binPolicy, "bin-policy", "none", "Event time binning policy (none, regular, following)")
	runCmd.Flags().Float64Var(&binInterval, "bin-interval", 0, "Binning bucket width")

	runCmd.Flags().StringVar(&network, "network", "ring", "Synthetic network kind (ring, all-to-all, random)")
	runCmd.Flags().IntVar(&numCells, "cells", 4, "Number of cells in the synthetic network")
	runCmd.Flags().Float64Var(&delay, "delay", 1.0, "Connection delay")
	runCmd.Flags().Float64Var(&weight, "weight", 2.0, "Connection weight")
	runCmd.Flags().IntVar(&inDegree, "in-degree", 2, "Per-cell in-degree for --network random")

	runCmd.Flags().StringVar(&spikeFilePath, "spike-file", "", "Path to write the global spike file (one \"<gid> <time>\" line per spike)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Optional YAML file populating the resource Context; explicit flags take precedence")

	rootCmd.AddCommand(runCmd)
}
