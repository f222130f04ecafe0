package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeGroup is a minimal CellGroup double used to verify the registry's
// fan-out without depending on a concrete group implementation.
type fakeGroup struct {
	gids    []GID
	added   []SamplerHandle
	removed []SamplerHandle
}

func (f *fakeGroup) Advance(Epoch, []Event)    {}
func (f *fakeGroup) Spikes() []Spike           { return nil }
func (f *fakeGroup) ClearSpikes()              {}
func (f *fakeGroup) Reset()                    {}
func (f *fakeGroup) SetBinningPolicy(BinningPolicy) {}
func (f *fakeGroup) GIDs() []GID               { return f.gids }
func (f *fakeGroup) AddSampler(h SamplerHandle, targets []GID, _ SamplerSchedule, _ SamplerFunc) {
	f.added = append(f.added, h)
}
func (f *fakeGroup) RemoveSampler(h SamplerHandle) {
	f.removed = append(f.removed, h)
}

func TestSamplerRegistry_Add_FansOutToEveryGroup(t *testing.T) {
	g1 := &fakeGroup{gids: []GID{0}}
	g2 := &fakeGroup{gids: []GID{1}}
	reg := NewSamplerRegistry([]CellGroup{g1, g2})

	h := reg.Add([]GID{0, 1}, SamplerSchedule{}, func([]Sample) {})

	assert.Equal(t, []SamplerHandle{h}, g1.added)
	assert.Equal(t, []SamplerHandle{h}, g2.added)
}

func TestSamplerRegistry_Add_HandlesAreDenseAndIncreasing(t *testing.T) {
	reg := NewSamplerRegistry(nil)

	h0 := reg.Add(nil, SamplerSchedule{}, nil)
	h1 := reg.Add(nil, SamplerSchedule{}, nil)

	assert.Equal(t, SamplerHandle(0), h0)
	assert.Equal(t, SamplerHandle(1), h1)
}

func TestSamplerRegistry_Remove_FansOutAndFreesHandle(t *testing.T) {
	g := &fakeGroup{}
	reg := NewSamplerRegistry([]CellGroup{g})

	h := reg.Add(nil, SamplerSchedule{}, nil)
	err := reg.Remove(h)

	assert.NoError(t, err)
	assert.Equal(t, []SamplerHandle{h}, g.removed)
}

func TestSamplerRegistry_Remove_HandleIsReused(t *testing.T) {
	reg := NewSamplerRegistry(nil)

	h0 := reg.Add(nil, SamplerSchedule{}, nil)
	assert.NoError(t, reg.Remove(h0))

	h1 := reg.Add(nil, SamplerSchedule{}, nil)
	assert.Equal(t, h0, h1)
}

func TestSamplerRegistry_Remove_UnknownHandle_ReturnsSamplerError(t *testing.T) {
	reg := NewSamplerRegistry(nil)

	err := reg.Remove(SamplerHandle(42))

	var samplerErr *SamplerError
	assert.ErrorAs(t, err, &samplerErr)
}

func TestSamplerRegistry_Remove_DoubleRemove_ReturnsSamplerError(t *testing.T) {
	reg := NewSamplerRegistry(nil)

	h := reg.Add(nil, SamplerSchedule{}, nil)
	assert.NoError(t, reg.Remove(h))

	err := reg.Remove(h)
	var samplerErr *SamplerError
	assert.ErrorAs(t, err, &samplerErr)
}

func TestSamplerRegistry_RemoveAll_ClearsEveryLiveSampler(t *testing.T) {
	g := &fakeGroup{}
	reg := NewSamplerRegistry([]CellGroup{g})

	h0 := reg.Add(nil, SamplerSchedule{}, nil)
	h1 := reg.Add(nil, SamplerSchedule{}, nil)

	reg.RemoveAll()

	assert.ElementsMatch(t, []SamplerHandle{h0, h1}, g.removed)
}
