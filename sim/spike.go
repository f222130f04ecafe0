package sim

// Spike is a threshold-crossing event produced by a cell group and consumed
// by the communicator. Spikes are ordered by Source for sorting before
// exchange, and by Time for delivery scheduling.
type Spike struct {
	Source Endpoint
	Time   float64
}

// Less orders spikes by source endpoint, the order required before a
// communicator exchange.
func (s Spike) Less(o Spike) bool {
	return s.Source.Less(o.Source)
}

// Event is a weighted impulse delivered to a cell endpoint at a scheduled
// time, derived from a Spike and the Connection that carried it:
//
//	Event.Dest   = connection.Dest.LID
//	Event.Time   = spike.Time + connection.Delay
//	Event.Weight = connection.Weight
type Event struct {
	Dest   LID
	Time   float64
	Weight float64
}

// Less implements the event lane's total order: time, then target LID,
// then weight. This is the order invariant #2/#8 in spec.md §8 requires for
// deterministic delivery within an epoch.
func (e Event) Less(o Event) bool {
	if e.Time != o.Time {
		return e.Time < o.Time
	}
	if e.Dest != o.Dest {
		return e.Dest < o.Dest
	}
	return e.Weight < o.Weight
}

// MakeEvent derives the postsynaptic event a spike produces when routed
// through connection c.
func MakeEvent(s Spike, c Connection) Event {
	return Event{
		Dest:   c.Dest.LID,
		Time:   s.Time + c.Delay,
		Weight: c.Weight,
	}
}
