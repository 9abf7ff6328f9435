package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gordonklaus/fm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultValidates(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	a, err := c.BuildAlgorithm()
	require.NoError(t, err)
	assert.Equal(t, fm.Canonical, a)
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fm", "fmsynth.yaml")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), *c)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Config
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, "portaudio", onDisk.Backend)
	assert.Equal(t, fm.Canonical.Name, onDisk.Algorithm)
}

func TestParseOverrides(t *testing.T) {
	c, err := Parse([]byte(`
backend: headless
algorithm: stack
operators:
  - ratio: 2
  - amplitude: 0.5
  - totalLevel: 127
  - totalLevel: 0
scale: 0.25
`))
	require.NoError(t, err)
	assert.Equal(t, "headless", c.Backend)
	assert.EqualValues(t, 48000, c.SampleRate)

	a, err := c.BuildAlgorithm()
	require.NoError(t, err)
	assert.Equal(t, "stack", a.Name)
	assert.Equal(t, [fm.NumOperators]float64{2, 1, 1, 1}, a.Ratios)
	assert.Equal(t, [fm.NumOperators]float64{1, 0.5, 1, 0}, a.Amplitudes)
	assert.Equal(t, 0.25, a.Scale)
}

func TestParseCustomRouting(t *testing.T) {
	c, err := Parse([]byte(`
routing:
  - [0, 0, 0, 0]
  - [0.5, 0, 0, 0]
  - [0, 0.5, 0, 0]
  - [0, 0, 0.5, 0]
mix: [0, 0, 0.5, 0.5]
`))
	require.NoError(t, err)
	a, err := c.BuildAlgorithm()
	require.NoError(t, err)
	assert.Equal(t, "custom", a.Name)
	assert.Equal(t, 0.5, a.Routing[3][2])
	assert.Equal(t, fm.MixVector{0, 0, 0.5, 0.5}, a.Mix)
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"feedback":   "routing: [[0,1,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]",
		"short row":  "routing: [[0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]",
		"backend":    "backend: jack",
		"algorithm":  "algorithm: dx7-32",
		"ratio":      "operators: [{ratio: 0}]",
		"totalLevel": "operators: [{totalLevel: 128}]",
		"channels":   "channels: 0",
		"queue":      "queueSize: 0",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fmsynth.yaml")
	_, err := Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	configs := make(chan *Config)
	errs := make(chan error, 1)
	require.NoError(t, Watch(ctx, path, configs, errs))

	require.NoError(t, os.WriteFile(path, []byte("algorithm: sine\nbackend: headless\n"), 0644))
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-configs:
			// A truncating write can be seen before the new contents land.
			if c.Algorithm == "sine" {
				return
			}
		case err := <-errs:
			t.Fatalf("watch error: %v", err)
		case <-timeout:
			t.Fatal("no reload after write")
		}
	}
}
