// Package config loads bufstreamd's YAML configuration file, in the shape
// of harperreed-radio-metadata-streamer's internal/application/config
// package.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	bs "github.com/sushydev/bufstream/bufstream"
)

type Config struct {
	Listen   ListenConfig    `yaml:"listen"`
	Stations []StationConfig `yaml:"stations"`
	Logging  LoggingConfig   `yaml:"logging"`
}

type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StationConfig struct {
	ID        string          `yaml:"id"`
	Source    SourceConfig    `yaml:"source"`
	Buffering BufferingConfig `yaml:"buffering"`
}

type SourceConfig struct {
	URL              string            `yaml:"url"`
	RequestHeaders   map[string]string `yaml:"request_headers"`
	ConnectTimeoutMs int               `yaml:"connect_timeout_ms"`
	ReadTimeoutMs    int               `yaml:"read_timeout_ms"`
}

// BufferingConfig maps directly onto §3's configuration fields.
type BufferingConfig struct {
	BufferBytes       int  `yaml:"buffer_bytes"`
	ReadThreshold     int  `yaml:"read_threshold"`
	ReadSize          int  `yaml:"read_size"`
	ReadyThreshold    int  `yaml:"ready_threshold"`
	NotReadyThreshold int  `yaml:"not_ready_threshold"`
	WaitForReady      bool `yaml:"wait_for_ready"`
	EndWithSource     bool `yaml:"end_with_source"`
	StallBackoffMs    int  `yaml:"stall_backoff_ms"`
}

type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Load reads and parses the YAML file at path and validates every station's
// buffering block against §3 invariant 6 by constructing a throwaway
// bufstream.BufferedStream for it, so a misconfigured station is reported
// before the daemon starts serving any station.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if len(cfg.Stations) == 0 {
		return nil, fmt.Errorf("config: no stations configured")
	}
	seen := make(map[string]bool, len(cfg.Stations))
	for _, st := range cfg.Stations {
		if st.ID == "" {
			return nil, fmt.Errorf("config: station missing id")
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("config: duplicate station id %q", st.ID)
		}
		seen[st.ID] = true
		if st.Source.URL == "" {
			return nil, fmt.Errorf("config: station %q missing source.url", st.ID)
		}
		if _, err := bs.New(st.BufferedStreamConfig(nil, nil)); err != nil {
			return nil, fmt.Errorf("config: station %q: %w", st.ID, err)
		}
	}

	return &cfg, nil
}

// BufferedStreamConfig translates a station's buffering block into a
// bufstream.Config, wiring in the shared logger and metrics recorder.
func (st StationConfig) BufferedStreamConfig(logger bs.Logger, metrics bs.MetricsRecorder) bs.Config {
	return bs.Config{
		Name:              st.ID,
		BufferSize:        st.Buffering.BufferBytes,
		ReadThreshold:     st.Buffering.ReadThreshold,
		ReadSize:          st.Buffering.ReadSize,
		ReadyThreshold:    st.Buffering.ReadyThreshold,
		NotReadyThreshold: st.Buffering.NotReadyThreshold,
		WaitForReady:      st.Buffering.WaitForReady,
		EndWithSource:     st.Buffering.EndWithSource,
		Logger:            logger,
		Metrics:           metrics,
		StallBackoff:      time.Duration(st.Buffering.StallBackoffMs) * time.Millisecond,
	}
}
