package bufstream_test

import "sync"

// fakeSource is a deterministic ByteSource used across the scenario and
// property tests: it hands out bytes from a fixed sequence, one requested
// chunk at a time.
type fakeSource struct {
	mu       sync.Mutex
	data     []byte
	pos      int
	closed   bool
	sizeHint int64

	pacing chan struct{} // non-nil while gated Read calls remain
	gate   int           // number of upcoming Read calls that must wait on pacing
}

func newFakeSource(data []byte) *fakeSource {
	return &fakeSource{data: data, sizeHint: int64(len(data))}
}

// gated makes the first n calls to Read block until unblock is called once
// per call; every call after that proceeds immediately. Because the core
// holds its buffer mutex across the call to Read, a source that blocks
// indefinitely would deadlock any concurrent consumer call, so gating is
// always bounded — used by the hysteresis scenario (S2) to control exactly
// when the first few chunks land.
func (f *fakeSource) gated(n int) *fakeSource {
	f.pacing = make(chan struct{})
	f.gate = n
	return f
}

func (f *fakeSource) unblock() {
	f.pacing <- struct{}{}
}

func (f *fakeSource) Read(p []byte) int {
	f.mu.Lock()
	gated := f.pacing != nil && f.gate > 0
	if gated {
		f.gate--
	}
	f.mu.Unlock()

	if gated {
		<-f.pacing
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.pos >= len(f.data) {
		return 0
	}

	n := copy(p, f.data[f.pos:])
	f.pos += n
	return n
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) Size() int64 {
	return f.sizeHint
}
