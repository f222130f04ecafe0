// Implements the communicator: the connection table built from a recipe
// and domain decomposition, the min-delay reduction, and spike-to-event
// routing. Grounded directly on
// original_source/src/communication/communicator.hpp, translated from its
// partition-by-source-domain connection table and make_event_queues merge
// scan (spec.md §4.5, §4.6).

package sim

import (
	"fmt"
	"sort"

	"github.com/nrnsim/nrnsim/transport"
)

// Communicator owns every connection whose destination is local to this
// rank, partitioned by the connection's source rank and sorted within each
// partition by source endpoint, and drives the per-epoch spike exchange.
type Communicator struct {
	rank           int
	numRanks       int
	localGroups    []GroupDescription
	localGroupPos  map[GroupIndex]int // global GroupIndex -> position in localGroups / queues

	connections []Connection
	connPart    []int // len numRanks+1; connections[connPart[r]:connPart[r+1]] come from rank r

	transport transport.Transport
	numSpikes uint64
}

// NewCommunicator builds the connection table for the local groups of
// decomp's rank matching tr.Rank().
func NewCommunicator(rec Recipe, decomp *DomainDecomposition, tr transport.Transport) (*Communicator, error) {
	rank := tr.Rank()
	numRanks := tr.NumRanks()
	if numRanks != decomp.NumRanks() {
		return nil, &ConfigError{Field: "num_ranks", Message: fmt.Sprintf("transport reports %d ranks, decomposition has %d", numRanks, decomp.NumRanks())}
	}

	localGroups := decomp.GroupsOnRank(rank)
	localGroupPos := make(map[GroupIndex]int, len(localGroups))
	for pos, group := range localGroups {
		localGroupPos[group.Index] = pos
	}

	type pending struct {
		conn       Connection
		srcRank    int
	}
	var all []pending
	srcCounts := make([]int, numRanks)

	for _, group := range localGroups {
		for _, gid := range group.GIDs {
			for _, rc := range rec.ConnectionsOn(gid) {
				srcRank, ok := decomp.RankOf(rc.Source)
				if !ok {
					return nil, &ConfigError{GID: gid, Field: "connection.source", Message: "source gid has no rank assignment"}
				}
				// The event's Dest LID addresses gid's state within its own
				// owning cell group, not the recipe's synapse selector: no
				// cell group implemented here models more than one synapse
				// per cell, so routing uses the group-local position.
				destPos, ok := decomp.LocalIndex(gid)
				if !ok {
					return nil, &ConfigError{GID: gid, Field: "connection.dest", Message: "destination gid has no group assignment"}
				}
				conn := Connection{
					Source:    rc.Source,
					Dest:      Endpoint{GID: gid, LID: LID(destPos)},
					SourceLID: rc.SourceLID,
					Weight:    rc.Weight,
					Delay:     rc.Delay,
					DestGroup: group.Index,
				}
				all = append(all, pending{conn: conn, srcRank: srcRank})
				srcCounts[srcRank]++
			}
		}
	}

	connPart := make([]int, numRanks+1)
	for r := 0; r < numRanks; r++ {
		connPart[r+1] = connPart[r] + srcCounts[r]
	}

	connections := make([]Connection, len(all))
	offsets := append([]int(nil), connPart[:numRanks]...)
	for _, p := range all {
		i := offsets[p.srcRank]
		connections[i] = p.conn
		offsets[p.srcRank]++
	}

	for r := 0; r < numRanks; r++ {
		part := connections[connPart[r]:connPart[r+1]]
		sort.Slice(part, func(i, j int) bool { return part[i].Less(part[j]) })
	}

	return &Communicator{
		rank:          rank,
		numRanks:      numRanks,
		localGroups:   localGroups,
		localGroupPos: localGroupPos,
		connections:   connections,
		connPart:      connPart,
		transport:     tr,
	}, nil
}

// MinDelay returns the global minimum connection delay, reduced across all
// ranks. Called at the start of every Run to size the epoch interval
// (spec.md §4.7).
func (c *Communicator) MinDelay() float64 {
	localMin := maxFloat64
	for _, conn := range c.connections {
		if conn.Delay < localMin {
			localMin = conn.Delay
		}
	}
	return c.transport.MinDelay(localMin)
}

const maxFloat64 = 1.7976931348623157e+308

// Exchange sorts localSpikes by source endpoint, gathers every rank's
// spikes via the transport, and returns them together with the partition
// boundaries needed by MakeEventQueues.
func (c *Communicator) Exchange(localSpikes []Spike) (gathered []Spike, partition []int) {
	sorted := append([]Spike(nil), localSpikes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	msgs := make([]transport.SpikeMsg, len(sorted))
	for i, s := range sorted {
		msgs[i] = transport.SpikeMsg{GID: uint32(s.Source.GID), LID: uint32(s.Source.LID), Time: s.Time}
	}

	combined, counts := c.transport.Exchange(msgs)
	c.numSpikes += uint64(len(combined))

	gathered = make([]Spike, len(combined))
	for i, m := range combined {
		gathered[i] = Spike{Source: Endpoint{GID: GID(m.GID), LID: LID(m.LID)}, Time: m.Time}
	}

	partition = make([]int, len(counts)+1)
	for i, n := range counts {
		partition[i+1] = partition[i] + n
	}
	return gathered, partition
}

// MakeEventQueues matches every globally gathered spike against the local
// connection table and returns one event slice per local group, indexed by
// GroupIndex position within decomp.GroupsOnRank(rank) (i.e. queues[i]
// corresponds to the i'th local group in that order). For each source
// rank's partition, it walks whichever of (connections, spikes) is
// shorter, using a sorted equal-range scan against the other — matching
// communicator.hpp's make_event_queues exactly.
func (c *Communicator) MakeEventQueues(gathered []Spike, partition []int) [][]Event {
	queues := make([][]Event, len(c.localGroups))

	deliver := func(conn Connection, s Spike) {
		pos := c.localGroupPos[conn.DestGroup]
		queues[pos] = append(queues[pos], MakeEvent(s, conn))
	}

	for dom := 0; dom < c.numRanks; dom++ {
		cons := c.connections[c.connPart[dom]:c.connPart[dom+1]]
		var spks []Spike
		if dom < len(partition)-1 {
			spks = gathered[partition[dom]:partition[dom+1]]
		}
		if len(cons) == 0 || len(spks) == 0 {
			continue
		}

		if len(cons) < len(spks) {
			si := 0
			for ci := 0; ci < len(cons) && si < len(spks); ci++ {
				src := cons[ci].SourceEndpoint()
				lo, hi := equalRangeSpikes(spks, si, src)
				for _, s := range spks[lo:hi] {
					deliver(cons[ci], s)
				}
				si = lo
			}
		} else {
			ci := 0
			for si := 0; si < len(spks) && ci < len(cons); si++ {
				src := spks[si].Source
				lo, hi := equalRangeConns(cons, ci, src)
				for _, conn := range cons[lo:hi] {
					deliver(conn, spks[si])
				}
				ci = lo
			}
		}
	}

	return queues
}

// equalRangeSpikes returns the [lo, hi) sub-range of spks[from:] whose
// Source equals target, assuming spks is sorted by Source.
func equalRangeSpikes(spks []Spike, from int, target Endpoint) (int, int) {
	lo := from + sort.Search(len(spks)-from, func(i int) bool {
		return !spks[from+i].Source.Less(target)
	})
	hi := lo + sort.Search(len(spks)-lo, func(i int) bool {
		return target.Less(spks[lo+i].Source)
	})
	return lo, hi
}

// equalRangeConns returns the [lo, hi) sub-range of cons[from:] whose
// SourceEndpoint equals target, assuming cons is sorted by source endpoint.
func equalRangeConns(cons []Connection, from int, target Endpoint) (int, int) {
	lo := from + sort.Search(len(cons)-from, func(i int) bool {
		return !cons[from+i].SourceEndpoint().Less(target)
	})
	hi := lo + sort.Search(len(cons)-lo, func(i int) bool {
		return target.Less(cons[lo+i].SourceEndpoint())
	})
	return lo, hi
}

// NumSpikes returns the cumulative number of global spikes observed over
// every Exchange call since construction or the last Reset.
func (c *Communicator) NumSpikes() uint64 { return c.numSpikes }

// Reset zeroes the spike counter; the connection table itself never
// changes after construction.
func (c *Communicator) Reset() { c.numSpikes = 0 }

// Connections returns the local connection table, ordered by source rank
// then source endpoint.
func (c *Communicator) Connections() []Connection { return c.connections }
