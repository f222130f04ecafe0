package sim

import "fmt"

// ConfigError reports a configuration-time inconsistency in the recipe or
// the decomposition built from it: a connection endpoint out of range, a
// non-positive delay, a gap-junction component spanning heterogeneous cell
// kinds, or a decomposition producing an empty group. Construction never
// panics on recipe data; it returns *ConfigError so the embedding program
// can print one diagnostic identifying the offending GID and property
// (spec.md §7).
type ConfigError struct {
	GID     GID
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: gid=%d field=%s: %s", e.GID, e.Field, e.Message)
}

// TransportError reports a fatal failure in a collective operation. The
// driver does not attempt to recover a lost rank (spec.md §4.1).
type TransportError struct {
	Op      string
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %s", e.Op, e.Message)
}

// SamplerError reports misuse of the sampler registry: an unknown handle or
// a double-remove. Fails fast with a precondition error (spec.md §7).
type SamplerError struct {
	Handle  SamplerHandle
	Message string
}

func (e *SamplerError) Error() string {
	return fmt.Sprintf("sampler error: handle=%d: %s", e.Handle, e.Message)
}
