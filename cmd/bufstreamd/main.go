// Command bufstreamd is a thin HTTP daemon around the bufstream package: it
// reads a YAML station list, dials each station's upstream over HTTP, and
// re-serves the buffered bytes to any number of HTTP clients. All flow
// control lives in bufstream; this daemon only adapts it to the wire.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xorpaul/sigolo"

	bs "github.com/sushydev/bufstream/bufstream"
	"github.com/sushydev/bufstream/internal/config"
	"github.com/sushydev/bufstream/internal/httpsource"
	"github.com/sushydev/bufstream/internal/logging"
	"github.com/sushydev/bufstream/internal/metrics"
)

func main() {
	var (
		configFileFlag = flag.String("config", "bufstreamd.yaml", "which config file to use")
		verboseFlag    = flag.Bool("verbose", false, "log debug output")
	)
	flag.Parse()

	cfg, err := config.Load(*configFileFlag)
	if err != nil {
		sigolo.Fatal("could not read config %s: %s", *configFileFlag, err.Error())
	}

	logging.SetVerbose(*verboseFlag || cfg.Logging.Verbose)
	sigolo.Info("config loaded, %d station(s)", len(cfg.Stations))

	d := newDaemon(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/stream/", d.handleStream)
	mux.HandleFunc("/status/", d.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", cfg.Listen.Host, cfg.Listen.Port)
	sigolo.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		sigolo.Fatal("server exited: %s", err.Error())
	}
}

// daemon holds the shared logger/metrics recorder and per-station config
// templates. Every HTTP client that connects to a station gets its own
// BufferedStream and its own upstream dial, per §10.5: sharing one
// BufferedStream across concurrent consumers would violate §5's
// single-consumer assumption.
type daemon struct {
	logger  bs.Logger
	metrics bs.MetricsRecorder

	stations map[string]config.StationConfig

	mu     sync.Mutex
	active map[string]*bs.BufferedStream // last-opened instance per station, for /status
}

func newDaemon(cfg *config.Config) *daemon {
	d := &daemon{
		logger:   logging.New(),
		metrics:  metrics.New(),
		stations: make(map[string]config.StationConfig, len(cfg.Stations)),
		active:   make(map[string]*bs.BufferedStream),
	}
	for _, st := range cfg.Stations {
		d.stations[st.ID] = st
	}
	return d
}

func stationID(path, prefix string) string {
	if len(path) <= len(prefix) {
		return ""
	}
	return path[len(prefix):]
}

func (d *daemon) handleStream(w http.ResponseWriter, r *http.Request) {
	id := stationID(r.URL.Path, "/stream/")
	st, ok := d.stations[id]
	if !ok {
		http.NotFound(w, r)
		return
	}

	source := httpsource.New(httpsource.Config{
		URL:            st.Source.URL,
		Headers:        st.Source.RequestHeaders,
		ConnectTimeout: msDuration(st.Source.ConnectTimeoutMs),
		ReadTimeout:    msDuration(st.Source.ReadTimeoutMs),
	})

	stream, err := bs.New(st.BufferedStreamConfig(d.logger, d.metrics))
	if err != nil {
		sigolo.Error("station %s: bad buffering config: %s", id, err.Error())
		http.Error(w, "misconfigured station", http.StatusInternalServerError)
		return
	}
	if !stream.Open(source) {
		http.Error(w, "station busy", http.StatusServiceUnavailable)
		return
	}
	// source.Close() must run before stream.Close(): stream.Close() joins
	// the producer goroutine, which can be parked inside source.Read, and
	// only source.Close() cancels that. Closing in the wrong order can
	// block this handler on a stalled upstream indefinitely.
	defer func() {
		source.Close()
		stream.Close()
	}()

	d.mu.Lock()
	d.active[id] = stream
	d.mu.Unlock()

	w.Header().Set("Content-Type", "application/octet-stream")
	flusher, canFlush := w.(http.Flusher)

	buf := make([]byte, 4096)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n := stream.Read(buf)
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}

type statusResponse struct {
	ID         string `json:"id"`
	Position   int64  `json:"position"`
	IsReady    bool   `json:"isReady"`
	IsNotReady bool   `json:"isNotReady"`
	Available  int    `json:"available"`
	BufferSize int    `json:"bufferSize"`
}

func (d *daemon) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := stationID(r.URL.Path, "/status/")
	st, ok := d.stations[id]
	if !ok {
		http.NotFound(w, r)
		return
	}

	d.mu.Lock()
	stream := d.active[id]
	d.mu.Unlock()

	resp := statusResponse{ID: id, BufferSize: st.Buffering.BufferBytes}
	if stream != nil {
		resp.Position = stream.Position()
		resp.IsReady = stream.IsReady()
		resp.IsNotReady = stream.IsNotReady()
		resp.Available = stream.Available()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
