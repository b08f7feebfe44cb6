// Package bufstream implements a bounded, producer-consumer ring buffer
// that adapts a blocking ByteSource into a decoupled, flow-controlled byte
// stream. A background goroutine pulls fixed-size chunks from the source
// and deposits them into a circular buffer; the foreground consumer reads
// bytes out of the same buffer through BufferedStream's Read/Skip methods.
//
// BufferedStream is safe for concurrent use between exactly one producer
// (managed internally) and one consumer goroutine; concurrent consumers
// must be serialized by the caller.
package bufstream

import (
	"sync"
	"sync/atomic"
)

// BufferedStream is the core component described by this package's design:
// a fixed-size ring buffer, a background producer loop, a consumer API, and
// the semaphore/mutex coordination that ties them together.
type BufferedStream struct {
	cfg Config

	logger  Logger
	metrics MetricsRecorder

	mu   sync.Mutex
	ring *ring

	available atomic.Int64
	readTotal atomic.Int64

	running   atomic.Bool
	terminate atomic.Bool

	spaceReady *notifier // posted by the consumer, waited on by the producer
	dataReady  *notifier // posted by the producer, waited on by the consumer, single-slot

	readyWaiters []*notifier // external WaitReady callers; broadcast on each ready crossing

	source ByteSource

	doneCh chan struct{} // closed by Close to unblock a parked producer
	wg     sync.WaitGroup
}

// New constructs a BufferedStream in the dormant (Idle) state. It returns an
// error only for a malformed Config; per §7 this is the one place
// construction-time misuse surfaces as an error rather than a routine
// false/zero return.
func New(cfg Config) (*BufferedStream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &BufferedStream{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		spaceReady: newNotifier(),
		dataReady:  newNotifier(),
	}, nil
}

// Open installs source, allocates the ring buffer on first use, resets
// cursors and counters, and launches the background producer. It returns
// false if the stream is already open; opening never returns an error, per
// §7's "misuse is a false/zero return, never a crash" policy.
func (s *BufferedStream) Open(source ByteSource) bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}

	s.mu.Lock()
	if s.ring == nil {
		s.ring = newRing(s.cfg.BufferSize)
	} else {
		s.ring.reset()
	}
	s.source = source
	s.readyWaiters = nil
	s.mu.Unlock()

	s.available.Store(0)
	s.readTotal.Store(0)
	s.terminate.Store(false)
	s.doneCh = make(chan struct{})
	s.spaceReady = newNotifier()
	s.dataReady = newNotifier()

	s.logger.Infof("bufstream[%s]: opened, buffer=%d bytes", s.cfg.Name, s.cfg.BufferSize)

	s.wg.Add(1)
	go s.runProducer()

	return true
}

// Read copies up to len(dst) bytes from the buffer into dst and returns the
// number of bytes copied. It is deliberately single-span: a request larger
// than the contiguous run currently available yields a short read.
func (s *BufferedStream) Read(dst []byte) (n int) {
	return s.consume(len(dst), dst)
}

// Skip discards up to n bytes from the buffer without copying them
// anywhere, advancing the read cursor exactly as Read would. It returns the
// number of bytes actually skipped.
func (s *BufferedStream) Skip(n int) int {
	return s.consume(n, nil)
}

// consume implements the shared body of Read and Skip: wait-for-ready, the
// locked cursor/counter update, and the space-available post. dst is nil for
// Skip, in which case no copy happens but the cursor still advances by the
// same amount Read would have consumed.
func (s *BufferedStream) consume(want int, dst []byte) int {
	if !s.running.Load() {
		return 0
	}

	if s.cfg.WaitForReady && !s.IsReady() && !s.terminate.Load() {
		// Wakes on a ready-threshold crossing or on the producer's shutdown
		// post; either way, fall through and read whatever is available now.
		s.dataReady.await()
		// A signal left over from a crossing that intervening reads already
		// consumed can wake this with nothing yet available and the
		// producer still running; that would otherwise read as a spurious
		// zero-byte return, so wait again rather than fall through.
		for s.available.Load() == 0 && !s.terminate.Load() {
			s.dataReady.await()
		}
	}
	if s.terminate.Load() && s.available.Load() == 0 {
		return 0
	}

	s.mu.Lock()
	before := s.available.Load()
	avail := int(before)
	span := s.ring.readableSpan(want, avail)
	n := len(span)
	if dst != nil {
		n = copy(dst, span)
	}
	var after int64
	var crossedNotReady bool
	if n > 0 {
		s.ring.commitRead(n)
		after = s.available.Add(-int64(n))
		s.readTotal.Add(int64(n))
		s.metrics.SetAvailable(s.cfg.Name, int(after))
		crossedNotReady = before > int64(s.cfg.NotReadyThreshold) && after <= int64(s.cfg.NotReadyThreshold)
	}
	s.mu.Unlock()

	if crossedNotReady {
		s.logger.Debugf("bufstream[%s]: not ready (available=%d)", s.cfg.Name, after)
		s.metrics.IncNotReadyCrossing(s.cfg.Name)
	}

	if n > 0 {
		s.metrics.AddBytesDelivered(s.cfg.Name, n)
		s.spaceReady.signal()
	}

	return n
}

// Position returns the total number of bytes delivered to the caller across
// Read and Skip calls since Open.
func (s *BufferedStream) Position() int64 {
	return s.readTotal.Load()
}

// Size returns the source's reported size, or 0 if unknown or not open.
func (s *BufferedStream) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return 0
	}
	return s.source.Size()
}

// Available returns the current number of bytes buffered and ready for
// consumption. It supplements IsReady/IsNotReady with the raw occupancy
// count, per the original header's public readAvailable field.
func (s *BufferedStream) Available() int {
	return int(s.available.Load())
}

// IsReady reports whether available has reached readyThreshold.
func (s *BufferedStream) IsReady() bool {
	return s.available.Load() >= int64(s.cfg.ReadyThreshold)
}

// IsNotReady reports whether available has fallen to or below
// notReadyThreshold. Note that IsReady and IsNotReady are not complements:
// the hysteresis band between the two thresholds reports neither.
func (s *BufferedStream) IsNotReady() bool {
	return s.available.Load() <= int64(s.cfg.NotReadyThreshold)
}

// WaitReady blocks until the stream becomes ready or done is closed,
// returning false in the latter case. Unlike the internal wiring behind
// Config.WaitForReady (a single-slot signal consumed by whichever Read call
// observes it first), WaitReady supports any number of concurrent callers:
// each gets its own notifier, broadcast to on every rising readyThreshold
// crossing.
func (s *BufferedStream) WaitReady(done <-chan struct{}) bool {
	if !s.running.Load() {
		return false
	}

	w := newNotifier()
	s.mu.Lock()
	if s.IsReady() {
		s.mu.Unlock()
		return true
	}
	s.readyWaiters = append(s.readyWaiters, w)
	s.mu.Unlock()

	if !w.wait(done) {
		return false
	}
	// The broadcast may have come from termination rather than a genuine
	// crossing (see handleSourceStall); re-check rather than trust the wake.
	return s.IsReady()
}

// broadcastReady wakes every pending WaitReady caller. Called by the
// producer on a rising readyThreshold crossing and by Close on shutdown, so
// a waiter observes either "became ready" or "stream closed" and never
// blocks forever.
func (s *BufferedStream) broadcastReady() {
	s.mu.Lock()
	waiters := s.readyWaiters
	s.readyWaiters = nil
	s.mu.Unlock()

	for _, w := range waiters {
		w.signal()
	}
}

// Close signals termination, wakes a parked producer and a parked consumer,
// waits for the producer goroutine to exit, and resets the stream to Idle.
// It is safe to call repeatedly; calls after the first are a no-op.
func (s *BufferedStream) Close() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	s.terminate.Store(true)
	close(s.doneCh)
	s.spaceReady.signal()
	s.dataReady.signal()
	s.broadcastReady()

	s.wg.Wait()

	s.mu.Lock()
	if s.ring != nil {
		s.ring.reset()
	}
	s.source = nil
	s.mu.Unlock()

	s.available.Store(0)
	s.readTotal.Store(0)

	s.logger.Infof("bufstream[%s]: closed", s.cfg.Name)
}
