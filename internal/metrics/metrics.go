// Package metrics wires bufstream's coordination-protocol events to
// Prometheus collectors, in the shape of tiny-http-proxy's main.go
// promauto/prometheus.CounterOpts usage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements bufstream.MetricsRecorder. All collectors are
// labeled by stream name so one process can run several stations, matching
// SPEC_FULL.md's "one BufferedStream per station" deployment shape.
type Prometheus struct {
	available         *prometheus.GaugeVec
	readyCrossings    *prometheus.CounterVec
	notReadyCrossings *prometheus.CounterVec
	producerStalls    *prometheus.CounterVec
	bytesDelivered    *prometheus.CounterVec
}

// New registers the collectors against the default registry and returns a
// recorder ready to hand to bufstream.Config.Metrics.
func New() *Prometheus {
	return &Prometheus{
		available: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bufstream_available_bytes",
			Help: "Bytes currently buffered and available for consumption.",
		}, []string{"stream"}),
		readyCrossings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bufstream_ready_crossings_total",
			Help: "Number of times available rose across readyThreshold.",
		}, []string{"stream"}),
		notReadyCrossings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bufstream_not_ready_crossings_total",
			Help: "Number of times available fell across notReadyThreshold.",
		}, []string{"stream"}),
		producerStalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bufstream_producer_stalls_total",
			Help: "Number of transient zero-byte reads from the source (endWithSource=false).",
		}, []string{"stream"}),
		bytesDelivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bufstream_bytes_delivered_total",
			Help: "Total bytes handed to consumers via Read or Skip.",
		}, []string{"stream"}),
	}
}

func (p *Prometheus) SetAvailable(stream string, available int) {
	p.available.WithLabelValues(stream).Set(float64(available))
}

func (p *Prometheus) IncReadyCrossing(stream string) {
	p.readyCrossings.WithLabelValues(stream).Inc()
}

func (p *Prometheus) IncNotReadyCrossing(stream string) {
	p.notReadyCrossings.WithLabelValues(stream).Inc()
}

func (p *Prometheus) IncProducerStall(stream string) {
	p.producerStalls.WithLabelValues(stream).Inc()
}

func (p *Prometheus) AddBytesDelivered(stream string, n int) {
	p.bytesDelivered.WithLabelValues(stream).Add(float64(n))
}
