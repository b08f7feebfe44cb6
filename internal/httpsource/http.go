// Package httpsource implements bufstream.ByteSource over a streaming HTTP
// GET, grounded on harperreed-radio-metadata-streamer's
// internal/infrastructure/source/http.go.
package httpsource

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

type Config struct {
	URL            string
	Headers        map[string]string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// HTTPSource lazily dials the upstream on the first Read call and then
// streams from the response body. It satisfies bufstream.ByteSource: Read
// never returns an error, treating a failed dial, a non-200 response, or a
// dropped connection as ordinary EOF (n == 0) per §7's error taxonomy, and
// logs are the caller's responsibility to add via a wrapping type if
// diagnostics beyond "the stream ended" are needed.
//
// The request is issued with a context cancelled by Close, the way
// harperreed's source/http.go threads a context through Connect: Close must
// unblock a goroutine parked inside Read (§5's cancellation guarantee), and
// holding a mutex across the blocking body.Read call would prevent that, so
// the mutex only ever guards the short setup/teardown sections, never the
// read itself.
type HTTPSource struct {
	cfg    Config
	client *http.Client

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	body    io.ReadCloser
	size    int64
	dialErr bool
}

func New(cfg Config) *HTTPSource {
	transport := &http.Transport{
		DisableCompression: true,
	}
	if cfg.ConnectTimeout > 0 {
		transport.DialContext = (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &HTTPSource{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.ReadTimeout,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// connect must be called with h.mu held.
func (h *HTTPSource) connect() error {
	req, err := http.NewRequestWithContext(h.ctx, http.MethodGet, h.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("httpsource: create request: %w", err)
	}
	for k, v := range h.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpsource: request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("httpsource: unexpected status %d", resp.StatusCode)
	}

	h.body = resp.Body
	h.size = resp.ContentLength
	return nil
}

// Read implements bufstream.ByteSource. On first call it dials the
// upstream; a dial failure is reported as a permanent zero-byte read rather
// than a panic, so a misconfigured station degrades to "never becomes
// ready" instead of crashing the daemon. The blocking body.Read happens
// outside h.mu so a concurrent Close can cancel h.ctx and tear down the
// body without waiting on this call to return on its own.
func (h *HTTPSource) Read(p []byte) int {
	h.mu.Lock()
	if h.dialErr {
		h.mu.Unlock()
		return 0
	}
	if h.body == nil {
		if err := h.connect(); err != nil {
			h.dialErr = true
			h.mu.Unlock()
			return 0
		}
	}
	body := h.body
	h.mu.Unlock()

	n, err := body.Read(p)
	if err != nil && n == 0 {
		return 0
	}
	return n
}

func (h *HTTPSource) Close() error {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.body != nil {
		return h.body.Close()
	}
	return nil
}

// Size returns the upstream's Content-Length, or 0 if unknown or not yet
// connected, per §6.
func (h *HTTPSource) Size() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.size < 0 {
		return 0
	}
	return h.size
}
