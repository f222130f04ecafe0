// Implements EventLane, the per-cell-group double-buffered queue of
// pending synaptic events. The communicator delivers newly-routed events
// into the "next" lane while a cell group's advance() consumes the
// "current" lane; the driver rotates the two at each epoch boundary and
// merges any events that arrived early (spec.md §4.6, grounded on
// original_source/src/model.cpp's merge_events).

package sim

import "sort"

// EventLane holds events destined for a single cell group, sorted by
// (time, target LID, weight).
type EventLane struct {
	events []Event
}

// Push appends an unsorted batch of events; Sort must be called before the
// lane is consumed.
func (l *EventLane) Push(evs ...Event) {
	l.events = append(l.events, evs...)
}

// Sort orders the lane's events by (time, target, weight), the tie-break
// required by spec.md §4.6 so replays are deterministic regardless of
// delivery order.
func (l *EventLane) Sort() {
	sort.Slice(l.events, func(i, j int) bool {
		return l.events[i].Less(l.events[j])
	})
}

// Events returns the lane's contents in sorted order. Callers must not
// mutate the returned slice.
func (l *EventLane) Events() []Event {
	return l.events
}

// Len returns the number of queued events.
func (l *EventLane) Len() int {
	return len(l.events)
}

// Clear empties the lane, retaining its backing array.
func (l *EventLane) Clear() {
	l.events = l.events[:0]
}

// EventLaneBank is the pair of lanes (current, next) a cell group advances
// against: "current" holds events due during the epoch just elapsed,
// "next" accumulates events the communicator routed for the epoch after.
type EventLaneBank struct {
	current EventLane
	next    EventLane
}

// Current returns the lane a cell group should drain for the epoch that
// just elapsed.
func (b *EventLaneBank) Current() *EventLane {
	return &b.current
}

// DeliverToNext pushes newly-routed events into the next lane. Called by
// the communicator while cell groups are still advancing against current.
func (b *EventLaneBank) DeliverToNext(evs ...Event) {
	b.next.Push(evs...)
}

// NextLen returns the number of events accumulated in the next lane, before
// Rotate merges them into current. Used for epoch tracing.
func (b *EventLaneBank) NextLen() int {
	return b.next.Len()
}

// Rotate implements merge_events: events left over in current (because
// they were delivered for a time beyond the epoch boundary) are merged
// with next's accumulated events to form the new current lane, and next is
// reset empty. epochEnd is the time boundary of the epoch that just
// elapsed; any event in current with Time >= epochEnd is carried forward
// rather than dropped, since a cell group's advance may legitimately stop
// short of consuming events scheduled past its own epoch.
func (b *EventLaneBank) Rotate(epochEnd float64) {
	b.current.Sort()

	split := sort.Search(len(b.current.events), func(i int) bool {
		return b.current.events[i].Time >= epochEnd
	})
	carried := append([]Event(nil), b.current.events[split:]...)

	b.next.Sort()
	merged := make([]Event, 0, len(carried)+len(b.next.events))
	merged = mergeSortedEvents(merged, carried, b.next.events)

	b.current.events = merged
	b.next.events = b.next.events[:0]
}

// mergeSortedEvents merges two already-sorted event slices into dst,
// preserving the (time, target, weight) order (the stable equivalent of
// std::merge in original_source/src/model.cpp).
func mergeSortedEvents(dst, a, b []Event) []Event {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Less(b[j]) || !b[j].Less(a[i]) {
			dst = append(dst, a[i])
			i++
		} else {
			dst = append(dst, b[j])
			j++
		}
	}
	dst = append(dst, a[i:]...)
	dst = append(dst, b[j:]...)
	return dst
}
