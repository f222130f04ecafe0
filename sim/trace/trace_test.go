package trace

import (
	"testing"
)

func TestSimulationTrace_RecordEpoch_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for epoch recording
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEpochs})

	// WHEN an epoch record is recorded
	st.RecordEpoch(EpochRecord{
		EpochID:        0,
		TBegin:         0,
		TEnd:           0.5,
		SpikesGathered: 3,
		EventsMerged:   []int{1, 2},
	})

	// THEN the trace contains one epoch record with correct data
	if len(st.Epochs) != 1 {
		t.Fatalf("expected 1 epoch, got %d", len(st.Epochs))
	}
	if st.Epochs[0].SpikesGathered != 3 {
		t.Errorf("expected 3 spikes gathered, got %d", st.Epochs[0].SpikesGathered)
	}
	if st.Epochs[0].TotalEventsMerged() != 3 {
		t.Errorf("expected 3 total events merged, got %d", st.Epochs[0].TotalEventsMerged())
	}
}

func TestSimulationTrace_RecordEpoch_NoneLevelIsNoOp(t *testing.T) {
	// GIVEN a trace with tracing disabled
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelNone})

	// WHEN an epoch record is recorded
	st.RecordEpoch(EpochRecord{EpochID: 0, SpikesGathered: 5})

	// THEN nothing is stored
	if len(st.Epochs) != 0 {
		t.Errorf("expected 0 epochs recorded at TraceLevelNone, got %d", len(st.Epochs))
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEpochs})

	// WHEN multiple epoch records are added
	st.RecordEpoch(EpochRecord{EpochID: 0, TBegin: 0, TEnd: 0.5})
	st.RecordEpoch(EpochRecord{EpochID: 1, TBegin: 0.5, TEnd: 1.0})

	// THEN order is preserved
	if len(st.Epochs) != 2 {
		t.Fatalf("expected 2 epochs, got %d", len(st.Epochs))
	}
	if st.Epochs[0].EpochID != 0 || st.Epochs[1].EpochID != 1 {
		t.Error("epoch order not preserved")
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"epochs", true},
		{"", true}, // empty defaults to none
		{"detailed", false},
		{"foobar", false},
		{"NONE", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
