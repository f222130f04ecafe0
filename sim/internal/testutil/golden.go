// Package testutil provides shared test infrastructure for the simulation
// driver: the seed-scenario fixture loader and floating-point comparison
// helpers used across sim/ tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SeedScenarioSet is the structure of testdata/seed_scenarios.json, which
// holds the end-to-end scenarios S2 and S3 of spec.md §8.
type SeedScenarioSet struct {
	Scenarios []SeedScenario `json:"scenarios"`
}

// SeedScenario describes one seed test's synthetic network and the
// cumulative spike count it must produce.
type SeedScenario struct {
	Name              string  `json:"name"`
	Network           string  `json:"network"` // ring | all-to-all
	Cells             int     `json:"cells"`
	Delay             float64 `json:"delay"`
	Weight            float64 `json:"weight"`
	Horizon           float64 `json:"horizon"`
	Ranks             int     `json:"ranks"`
	ExpectedNumSpikes int     `json:"expected_num_spikes"`
}

// LoadSeedScenarios loads the seed scenario fixtures from the testdata
// directory. The path is resolved relative to this source file:
// sim/internal/testutil/ → testdata/.
func LoadSeedScenarios(t *testing.T) *SeedScenarioSet {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "seed_scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read seed scenarios: %v", err)
	}

	var set SeedScenarioSet
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatalf("Failed to parse seed scenarios: %v", err)
	}

	return &set
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
