package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEpochs})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalEpochs != 0 {
		t.Errorf("expected 0 total epochs, got %d", summary.TotalEpochs)
	}
	if summary.TotalSpikesGathered != 0 || summary.MaxSpikesPerEpoch != 0 {
		t.Error("expected 0 spike counts")
	}
	if summary.MeanSpikesPerEpoch != 0 || summary.MeanEventsPerEpoch != 0 {
		t.Error("expected 0 mean values")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with several epoch records
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEpochs})
	st.RecordEpoch(EpochRecord{EpochID: 0, SpikesGathered: 2, EventsMerged: []int{1, 0}})
	st.RecordEpoch(EpochRecord{EpochID: 1, SpikesGathered: 4, EventsMerged: []int{2, 2}})
	st.RecordEpoch(EpochRecord{EpochID: 2, SpikesGathered: 0, EventsMerged: []int{0, 0}})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalEpochs != 3 {
		t.Errorf("expected 3 total epochs, got %d", summary.TotalEpochs)
	}
	if summary.TotalSpikesGathered != 6 {
		t.Errorf("expected 6 total spikes gathered, got %d", summary.TotalSpikesGathered)
	}
	if summary.MaxSpikesPerEpoch != 4 {
		t.Errorf("expected max spikes per epoch 4, got %d", summary.MaxSpikesPerEpoch)
	}
	if summary.TotalEventsMerged != 5 {
		t.Errorf("expected 5 total events merged, got %d", summary.TotalEventsMerged)
	}
}

func TestSummarize_MeanStatistics_CorrectAverages(t *testing.T) {
	// GIVEN epoch records with known spike and event counts
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEpochs})
	st.RecordEpoch(EpochRecord{EpochID: 0, SpikesGathered: 1, EventsMerged: []int{1}})
	st.RecordEpoch(EpochRecord{EpochID: 1, SpikesGathered: 3, EventsMerged: []int{3}})

	// WHEN summarized
	summary := Summarize(st)

	// THEN mean spikes per epoch = (1 + 3) / 2 = 2
	if summary.MeanSpikesPerEpoch != 2 {
		t.Errorf("expected mean spikes per epoch 2, got %.4f", summary.MeanSpikesPerEpoch)
	}
	// THEN mean events per epoch = (1 + 3) / 2 = 2
	if summary.MeanEventsPerEpoch != 2 {
		t.Errorf("expected mean events per epoch 2, got %.4f", summary.MeanEventsPerEpoch)
	}
}

func TestSummarize_NilTrace_ReturnsZeroSummary(t *testing.T) {
	// GIVEN a nil trace
	// WHEN summarized
	summary := Summarize(nil)

	// THEN all fields are zero
	if summary.TotalEpochs != 0 || summary.TotalSpikesGathered != 0 {
		t.Error("expected zero-value summary for nil trace")
	}
}
