package sim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalSpikeStore_InsertThenExchange_MakesSpikesReadable(t *testing.T) {
	// GIVEN a fresh store with spikes inserted
	store := NewLocalSpikeStore()
	store.Insert([]Spike{{Source: Endpoint{GID: 1}, Time: 0.1}})

	// WHEN Exchange is called
	store.Exchange()

	// THEN Read returns the inserted spikes
	assert.Len(t, store.Read(), 1)
}

func TestLocalSpikeStore_Exchange_ClearsWriteBuffer(t *testing.T) {
	store := NewLocalSpikeStore()
	store.Insert([]Spike{{Source: Endpoint{GID: 1}, Time: 0.1}})
	store.Exchange()
	store.Exchange()

	// Nothing was inserted between the two Exchange calls, so the second
	// Exchange should leave Read empty.
	assert.Empty(t, store.Read())
}

func TestLocalSpikeStore_Clear_DropsPendingWrites(t *testing.T) {
	store := NewLocalSpikeStore()
	store.Insert([]Spike{{Source: Endpoint{GID: 1}, Time: 0.1}})
	store.Clear()
	store.Exchange()

	assert.Empty(t, store.Read())
}

func TestLocalSpikeStore_Insert_ConcurrentSafe(t *testing.T) {
	// GIVEN many goroutines inserting concurrently
	store := NewLocalSpikeStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Insert([]Spike{{Source: Endpoint{GID: GID(i)}, Time: float64(i)}})
		}(i)
	}
	wg.Wait()
	store.Exchange()

	assert.Len(t, store.Read(), 100)
}

func TestLocalSpikeStore_Insert_EmptySliceIsNoOp(t *testing.T) {
	store := NewLocalSpikeStore()
	store.Insert(nil)
	store.Exchange()

	assert.Empty(t, store.Read())
}
