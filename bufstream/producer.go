package bufstream

import "time"

// defaultStallBackoff is how long the producer sleeps after a transient
// zero-byte read (EndWithSource == false) before polling the source again.
const defaultStallBackoff = 20 * time.Millisecond

// runProducer is the background loop described in §4.2. It runs for the
// lifetime of one Open/Close session and is joined by Close via
// BufferedStream.wg.
func (s *BufferedStream) runProducer() {
	defer s.wg.Done()

	backoff := s.cfg.StallBackoff
	if backoff <= 0 {
		backoff = defaultStallBackoff
	}

	for {
		if s.terminate.Load() {
			return
		}

		free := s.cfg.BufferSize - int(s.available.Load())
		if free < s.cfg.ReadSize {
			if !s.spaceReady.wait(s.doneCh) {
				return
			}
			continue
		}

		if !s.fillOnce(free) {
			if s.terminate.Load() {
				return
			}
			select {
			case <-s.doneCh:
				return
			case <-time.After(backoff):
			}
		}
	}
}

// fillOnce performs one producer iteration: it acquires the buffer mutex,
// asks the source for one chunk, and applies the result. It returns true if
// bytes were written (the caller should immediately loop again without
// backing off), false on a stalled/EOF read.
func (s *BufferedStream) fillOnce(free int) bool {
	s.mu.Lock()
	span := s.ring.writableSpan(s.cfg.ReadSize, free)
	if span == nil {
		s.mu.Unlock()
		return false
	}

	n := s.source.Read(span)

	var crossedReady bool
	var after int64
	if n > 0 {
		before := s.available.Load()
		s.ring.commitWrite(n)
		after = s.available.Add(int64(n))
		crossedReady = before < int64(s.cfg.ReadyThreshold) && after >= int64(s.cfg.ReadyThreshold)
	}
	s.mu.Unlock()

	if n <= 0 {
		s.handleSourceStall()
		return false
	}

	s.metrics.SetAvailable(s.cfg.Name, int(after))
	if crossedReady {
		s.logger.Debugf("bufstream[%s]: ready (available=%d)", s.cfg.Name, after)
		s.metrics.IncReadyCrossing(s.cfg.Name)
		s.dataReady.signal()
		s.broadcastReady()
	}
	return true
}

// handleSourceStall implements step 6 of §4.2: a zero-byte read is either
// terminal (EndWithSource) or transient. On the terminal path the ready
// signal is posted once so a consumer parked in Read observes shutdown
// instead of blocking forever, per §5's cancellation guarantee.
func (s *BufferedStream) handleSourceStall() {
	if s.cfg.EndWithSource {
		s.logger.Infof("bufstream[%s]: source ended, stopping producer", s.cfg.Name)
		s.terminate.Store(true)
		s.dataReady.signal()
		s.broadcastReady()
		return
	}
	s.logger.Debugf("bufstream[%s]: source stalled, retrying", s.cfg.Name)
	s.metrics.IncProducerStall(s.cfg.Name)
}
