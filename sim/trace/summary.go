package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEpochs         int
	TotalSpikesGathered int
	MeanSpikesPerEpoch  float64
	MaxSpikesPerEpoch   int
	TotalEventsMerged   int
	MeanEventsPerEpoch  float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}

	summary.TotalEpochs = len(st.Epochs)
	for _, e := range st.Epochs {
		summary.TotalSpikesGathered += e.SpikesGathered
		if e.SpikesGathered > summary.MaxSpikesPerEpoch {
			summary.MaxSpikesPerEpoch = e.SpikesGathered
		}
		summary.TotalEventsMerged += e.TotalEventsMerged()
	}

	if summary.TotalEpochs > 0 {
		summary.MeanSpikesPerEpoch = float64(summary.TotalSpikesGathered) / float64(summary.TotalEpochs)
		summary.MeanEventsPerEpoch = float64(summary.TotalEventsMerged) / float64(summary.TotalEpochs)
	}

	return summary
}
