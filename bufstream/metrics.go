package bufstream

// MetricsRecorder is the instrumentation hook BufferedStream reports its
// coordination protocol through. The core package itself never imports a
// metrics library; internal/metrics supplies a Prometheus-backed
// implementation used by cmd/bufstreamd. A nil recorder is replaced with a
// no-op one, so instrumentation is entirely opt-in.
type MetricsRecorder interface {
	// SetAvailable reports the current number of buffered bytes.
	SetAvailable(name string, available int)
	// IncReadyCrossing counts a rising crossing of readyThreshold.
	IncReadyCrossing(name string)
	// IncNotReadyCrossing counts available falling to or below notReadyThreshold.
	IncNotReadyCrossing(name string)
	// IncProducerStall counts a source read returning 0 while endWithSource is false.
	IncProducerStall(name string)
	// AddBytesDelivered adds n bytes to the running total delivered to the consumer.
	AddBytesDelivered(name string, n int)
}

type nopMetrics struct{}

func (nopMetrics) SetAvailable(string, int)     {}
func (nopMetrics) IncReadyCrossing(string)      {}
func (nopMetrics) IncNotReadyCrossing(string)   {}
func (nopMetrics) IncProducerStall(string)      {}
func (nopMetrics) AddBytesDelivered(string, int) {}
