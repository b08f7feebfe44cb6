package bufstream_test

import "sync/atomic"

// fakeMetrics records the coordination-protocol events a
// bufstream.MetricsRecorder receives, so tests can assert on ready/not-ready
// crossing counts directly instead of inferring them from timing.
type fakeMetrics struct {
	readyCrossings    atomic.Int64
	notReadyCrossings atomic.Int64
	stalls            atomic.Int64
	delivered         atomic.Int64
	lastAvailable     atomic.Int64
}

func (m *fakeMetrics) SetAvailable(_ string, available int) { m.lastAvailable.Store(int64(available)) }
func (m *fakeMetrics) IncReadyCrossing(string)               { m.readyCrossings.Add(1) }
func (m *fakeMetrics) IncNotReadyCrossing(string)            { m.notReadyCrossings.Add(1) }
func (m *fakeMetrics) IncProducerStall(string)               { m.stalls.Add(1) }
func (m *fakeMetrics) AddBytesDelivered(_ string, n int)     { m.delivered.Add(int64(n)) }
