package bufstream

import (
	"fmt"
	"time"
)

// Config bundles the construction-time parameters of a BufferedStream. All
// fields are fixed once passed to New and never mutated afterwards.
type Config struct {
	// Name is purely observational: it is attached to log lines and metric
	// labels so multiple BufferedStream instances (e.g. one per station in
	// cmd/bufstreamd) can be told apart. The producer goroutine carries no
	// runtime label.
	Name string

	// BufferSize is the total capacity of the ring, in bytes.
	BufferSize int

	// ReadThreshold is the headroom, in bytes, configured for the producer.
	// It is validated against BufferSize but does not gate the producer:
	// the producer sleeps whenever free space is smaller than ReadSize and
	// re-checks after every consumer Read or Skip.
	ReadThreshold int

	// ReadSize is the chunk size requested from the source on each producer
	// iteration.
	ReadSize int

	// ReadyThreshold is the available-bytes mark at which the stream
	// becomes ready and the ready signal fires (once, on the rising edge).
	ReadyThreshold int

	// NotReadyThreshold is the available-bytes mark at or below which the
	// stream reports not-ready. Must be strictly less than ReadyThreshold.
	NotReadyThreshold int

	// WaitForReady makes Read block on the ready signal whenever the stream
	// is not yet ready, instead of returning a short (possibly zero) read.
	WaitForReady bool

	// EndWithSource makes the producer terminate as soon as the source
	// reports EOF (Read returning 0), instead of treating it as transient
	// and continuing to poll.
	EndWithSource bool

	// Logger receives lifecycle and readiness-transition log lines. Nil is
	// treated as a no-op logger.
	Logger Logger

	// Metrics receives coordination-protocol instrumentation. Nil is
	// treated as a no-op recorder.
	Metrics MetricsRecorder

	// StallBackoff bounds how long the producer sleeps after a transient
	// (EndWithSource == false) zero-byte read before polling the source
	// again. Zero selects a small built-in default.
	StallBackoff time.Duration
}

// validate checks the invariant-6 preconditions from the data model: without
// these, the hysteresis band collapses or the producer can never make
// progress.
func (c Config) validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("bufstream: BufferSize must be > 0, got %d", c.BufferSize)
	}
	if c.ReadSize <= 0 || c.ReadSize > c.BufferSize {
		return fmt.Errorf("bufstream: ReadSize must be in (0, %d], got %d", c.BufferSize, c.ReadSize)
	}
	if c.ReadThreshold < 0 || c.ReadThreshold > c.BufferSize {
		return fmt.Errorf("bufstream: ReadThreshold must be in [0, %d], got %d", c.BufferSize, c.ReadThreshold)
	}
	if c.ReadyThreshold < 0 || c.ReadyThreshold > c.BufferSize {
		return fmt.Errorf("bufstream: ReadyThreshold must be in [0, %d], got %d", c.BufferSize, c.ReadyThreshold)
	}
	if c.NotReadyThreshold < 0 {
		return fmt.Errorf("bufstream: NotReadyThreshold must be >= 0, got %d", c.NotReadyThreshold)
	}
	if c.NotReadyThreshold >= c.ReadyThreshold {
		return fmt.Errorf("bufstream: NotReadyThreshold (%d) must be < ReadyThreshold (%d) to leave a hysteresis band", c.NotReadyThreshold, c.ReadyThreshold)
	}
	return nil
}
