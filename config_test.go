package piano

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "trail: 750ms\nwaveform: triangle\nroom: 0.2\n"))
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Trail)
	assert.Equal(t, "triangle", cfg.Waveform)
	assert.InDelta(t, 0.2, cfg.Room, 1e-9)
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 10*time.Millisecond, cfg.FadeIn)
	assert.True(t, cfg.Limiter)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "trail: [1, 2\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "waveform: kazoo\n"))
	assert.Error(t, err)
}

func TestValidateNormalises(t *testing.T) {
	cfg := Config{
		SampleRate:   -1,
		Trail:        -time.Second,
		MaxSpeed:     1.5,
		DefaultSpeed: 3,
		Volume:       4,
		Room:         -1,
	}
	require.NoError(t, cfg.Validate())
	def := DefaultConfig()
	assert.Equal(t, def.SampleRate, cfg.SampleRate)
	assert.Zero(t, cfg.Trail)
	assert.Equal(t, 1.0, cfg.DefaultSpeed)
	assert.Equal(t, 1.5, cfg.MaxSpeed)
	assert.Equal(t, 1.0, cfg.Volume)
	assert.Zero(t, cfg.Room)
	assert.Equal(t, def.FadeOut, cfg.FadeOut)
	assert.Equal(t, def.ProgressInterval, cfg.ProgressInterval)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Waveform = "kazoo"
	_, err := New(WithConfig(cfg), WithBackend(nil))
	assert.Error(t, err)
}
