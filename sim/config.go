// Implements Context, the run-time resource allocation surface (spec.md
// §6), and its optional YAML loading, mirroring default_config.go's
// strict-field decoder pattern.

package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TransportKind selects which transport.Transport construction to use.
type TransportKind string

const (
	TransportInProcess TransportKind = "in-process"
	TransportDryRun    TransportKind = "dry-run"
	TransportMultiRank TransportKind = "multi-rank"
)

// Context is the resource allocation surface construct() is given
// alongside a recipe and domain decomposition (spec.md §6): thread count,
// optional GPU device, and which transport backend to build.
type Context struct {
	NumThreads int    `yaml:"num_threads"`
	GPUID      int    `yaml:"gpu_id"` // -1 means none
	Transport  string `yaml:"transport"`

	DryRunRanks        int `yaml:"dry_run_ranks"`
	DryRunCellsPerTile int `yaml:"dry_run_cells_per_tile"`

	BinPolicy   string  `yaml:"bin_policy"` // none | regular | following
	BinInterval float64 `yaml:"bin_interval"`
}

// DefaultContext returns a single-threaded, in-process, no-GPU, no-binning
// context.
func DefaultContext() Context {
	return Context{
		NumThreads: 1,
		GPUID:      -1,
		Transport:  string(TransportInProcess),
		BinPolicy:  "none",
	}
}

// LoadContextYAML reads a YAML file into a Context, starting from
// DefaultContext so unset fields keep their defaults. Unknown fields are a
// hard error (a config typo should fail loudly, not silently no-op).
func LoadContextYAML(path string) (Context, error) {
	cfg := DefaultContext()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// BinningPolicyFromContext translates the context's bin policy fields into
// a BinningPolicy. An unrecognized or "none" BinPolicy yields the
// zero-interval policy (no rounding).
func BinningPolicyFromContext(ctx Context) BinningPolicy {
	switch ctx.BinPolicy {
	case "regular", "following":
		return BinningPolicy{Interval: ctx.BinInterval}
	default:
		return BinningPolicy{}
	}
}
