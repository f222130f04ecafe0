package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinningPolicy_Bin_RoundsDownToIntervalBoundary(t *testing.T) {
	policy := BinningPolicy{Interval: 0.25}

	assert.Equal(t, 1.0, policy.Bin(1.1, 1.0))
	assert.Equal(t, 1.25, policy.Bin(1.26, 1.0))
	assert.Equal(t, 1.0, policy.Bin(1.0, 1.0))
}

func TestBinningPolicy_Bin_ZeroIntervalIsIdentity(t *testing.T) {
	policy := BinningPolicy{}
	assert.Equal(t, 1.2345, policy.Bin(1.2345, 1.0))
}
