// Implements the spike file writer described in spec.md §6: one spike per
// line, "<gid> <time>", time formatted with four fractional digits, in
// emission order. This is not a wire protocol and carries no framing beyond
// newlines, so it is plain buffered text I/O rather than a serialization
// library concern.

package sim

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// SpikeFileWriter appends spikes to an underlying writer in spike-file
// format, in whatever order WriteSpikes is called. It does not sort: the
// caller (typically a global spike export callback) controls emission
// order.
type SpikeFileWriter struct {
	w *bufio.Writer
}

// NewSpikeFileWriter wraps w in a buffered spike file writer. Callers own w
// and must Flush before closing it.
func NewSpikeFileWriter(w io.Writer) *SpikeFileWriter {
	return &SpikeFileWriter{w: bufio.NewWriter(w)}
}

// WriteSpikes appends one line per spike, "<gid> <time>" with time at four
// fractional digits.
func (s *SpikeFileWriter) WriteSpikes(spikes []Spike) error {
	for _, sp := range spikes {
		if _, err := fmt.Fprintf(s.w, "%d %.4f\n", sp.Source.GID, sp.Time); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered output to the underlying writer.
func (s *SpikeFileWriter) Flush() error { return s.w.Flush() }

// SpikeExportCallback returns a SpikeExportFunc that writes each batch to s,
// logging rather than returning write errors: spike export callbacks have
// no error return (spec.md §4.7), matching the driver's one-way callback
// contract.
func (s *SpikeFileWriter) SpikeExportCallback() SpikeExportFunc {
	return func(spikes []Spike) {
		if err := s.WriteSpikes(spikes); err != nil {
			logrus.Errorf("sim: spike file write failed: %v", err)
		}
	}
}
