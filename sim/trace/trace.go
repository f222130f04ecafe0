package trace

// TraceLevel controls the verbosity of epoch tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEpochs captures one EpochRecord per epoch.
	TraceLevelEpochs TraceLevel = "epochs"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEpochs: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects epoch records during a simulation run.
type SimulationTrace struct {
	Config TraceConfig
	Epochs []EpochRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Epochs: make([]EpochRecord, 0),
	}
}

// RecordEpoch appends an epoch record. A no-op when the trace's level is
// TraceLevelNone, so the driver can call it unconditionally.
func (st *SimulationTrace) RecordEpoch(record EpochRecord) {
	if st.Config.Level == TraceLevelNone || st.Config.Level == "" {
		return
	}
	st.Epochs = append(st.Epochs, record)
}
