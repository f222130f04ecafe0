package sim

// CellKind enumerates the supported cell implementations. A tagged-union
// cell description is built from the recipe and dispatched by the group
// factory (see newCellGroup in driver.go); no virtual dispatch is required at the driver
// level beyond this boundary (spec.md §9).
type CellKind int

const (
	// CellKindCable is a multi-compartment cable neuron. Numerical
	// integration of the cable equation is out of scope here (spec.md §1);
	// CellKindCable is accepted by the domain decomposition and factory
	// wiring but the reference implementation in this repository is a
	// minimal placeholder (see group_cable.go).
	CellKindCable CellKind = iota
	// CellKindLIF is a leaky integrate-and-fire point neuron.
	CellKindLIF
	// CellKindSpikeSource replays a fixed, pre-recorded spike train and
	// never consumes events.
	CellKindSpikeSource
)

func (k CellKind) String() string {
	switch k {
	case CellKindCable:
		return "cable"
	case CellKindLIF:
		return "lif"
	case CellKindSpikeSource:
		return "spike_source"
	default:
		return "unknown"
	}
}

// Backend selects the implementation target for a cell group.
type Backend int

const (
	BackendCPU Backend = iota
	BackendGPU
)

func (b Backend) String() string {
	if b == BackendGPU {
		return "gpu"
	}
	return "cpu"
}

// HasGPUBackend reports whether a cell kind has a GPU-capable
// implementation available in this repository. Only cable cells are ever
// GPU-eligible, mirroring the per-kind capability predicate of spec.md §4.3;
// LIF and spike-source cells are always CPU cells.
func HasGPUBackend(k CellKind) bool {
	return k == CellKindCable
}

// CellDescription is the opaque-to-the-driver payload a recipe hands to a
// cell-group factory. Only the fields a given CellKind's factory reads are
// populated; it is a tagged union keyed by Kind.
type CellDescription struct {
	Kind CellKind

	// LIF parameters (CellKindLIF).
	LIF LIFParams

	// SpikeSource parameters (CellKindSpikeSource): a fixed, time-sorted
	// train of spikes the cell emits regardless of input.
	SpikeTrain []float64
}

// LIFParams parametrizes the leaky integrate-and-fire reference cell.
type LIFParams struct {
	Tau       float64 // membrane time constant
	VReset    float64
	VThresh   float64
	VRest     float64
	RefractoryPeriod float64
}

// DefaultLIFParams returns parameters producing a reasonably excitable cell
// for a single strong input, used by the synthetic recipes and seed tests.
func DefaultLIFParams() LIFParams {
	return LIFParams{
		Tau:              20,
		VReset:           0,
		VThresh:          1,
		VRest:            0,
		RefractoryPeriod: 0,
	}
}
