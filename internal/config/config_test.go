package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
listen:
  host: 0.0.0.0
  port: 8080

stations:
  - id: talk_radio
    source:
      url: "http://example.com/stream"
      connect_timeout_ms: 5000
      read_timeout_ms: 15000
    buffering:
      buffer_bytes: 262144
      read_threshold: 65536
      read_size: 4096
      ready_threshold: 65536
      not_ready_threshold: 8192
      wait_for_ready: true
      end_with_source: false
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeTemp(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Listen.Host)
	assert.Equal(t, 8080, cfg.Listen.Port)
	require.Len(t, cfg.Stations, 1)

	st := cfg.Stations[0]
	assert.Equal(t, "talk_radio", st.ID)
	assert.Equal(t, "http://example.com/stream", st.Source.URL)
	assert.Equal(t, 262144, st.Buffering.BufferBytes)
}

func TestLoad_RejectsNoStations(t *testing.T) {
	t.Parallel()

	_, err := Load(writeTemp(t, "listen:\n  host: 0.0.0.0\n  port: 8080\n"))
	assert.Error(t, err)
}

func TestLoad_RejectsDuplicateStationIDs(t *testing.T) {
	t.Parallel()

	dup := sampleYAML + `  - id: talk_radio
    source:
      url: "http://example.com/other"
    buffering:
      buffer_bytes: 1024
      read_size: 128
      ready_threshold: 512
      not_ready_threshold: 64
`
	_, err := Load(writeTemp(t, dup))
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoad_RejectsMissingSourceURL(t *testing.T) {
	t.Parallel()

	bad := `
stations:
  - id: broken
    buffering:
      buffer_bytes: 1024
`
	_, err := Load(writeTemp(t, bad))
	assert.ErrorContains(t, err, "source.url")
}

func TestBufferedStreamConfig_MapsFields(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeTemp(t, sampleYAML))
	require.NoError(t, err)

	bsCfg := cfg.Stations[0].BufferedStreamConfig(nil, nil)
	assert.Equal(t, "talk_radio", bsCfg.Name)
	assert.Equal(t, 262144, bsCfg.BufferSize)
	assert.True(t, bsCfg.WaitForReady)
	assert.False(t, bsCfg.EndWithSource)
}
