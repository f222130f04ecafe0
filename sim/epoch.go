package sim

import "fmt"

// Epoch is a non-overlapping, contiguous time interval over which cell
// groups are advanced once. Epochs never overlap and tile [0, t_final]
// contiguously.
type Epoch struct {
	ID      int64
	TBegin  float64
	TEnd    float64
}

// Duration returns TEnd - TBegin.
func (e Epoch) Duration() float64 {
	return e.TEnd - e.TBegin
}

// Contains reports whether t falls in this epoch's half-open interval
// [TBegin, TEnd), the rule used to decide which epoch an event belongs to.
func (e Epoch) Contains(t float64) bool {
	return t >= e.TBegin && t < e.TEnd
}

func (e Epoch) String() string {
	return fmt.Sprintf("epoch(%d, [%g, %g))", e.ID, e.TBegin, e.TEnd)
}

// Advance returns the next contiguous epoch covering [e.TEnd, tEnd).
func (e Epoch) Advance(tEnd float64) Epoch {
	return Epoch{ID: e.ID + 1, TBegin: e.TEnd, TEnd: tEnd}
}
