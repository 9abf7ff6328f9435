package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// field returns the value of a "name: value" line.
func field(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, name+": "); ok {
			return v
		}
	}
	t.Fatalf("no %q in output:\n%s", name, out)
	return ""
}

func floatField(t *testing.T, out, name string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(field(t, out, name), 64)
	require.NoError(t, err)
	return v
}

func TestAlgorithms(t *testing.T) {
	out, err := run(t, "algorithms")
	require.NoError(t, err)
	assert.Contains(t, out, "two-chain")
	assert.Contains(t, out, "0→1 2→3")
	assert.Contains(t, out, "stack")
}

func TestAnalyzeSine(t *testing.T) {
	out, err := run(t, "analyze", "--algorithm", "sine", "--duration", "0.5")
	require.NoError(t, err)
	assert.Equal(t, "sine", field(t, out, "algorithm"))
	assert.Equal(t, "24000", field(t, out, "frames"))
	assert.Equal(t, "0", field(t, out, "nonfinite"))
	assert.InDelta(t, 440, floatField(t, out, "peak_hz"), 6)
	// A full-scale sine through the 0.125 mixer.
	assert.InDelta(t, 0.125/1.4142, floatField(t, out, "rms"), 0.005)
}

func TestAnalyzeOctave(t *testing.T) {
	out, err := run(t, "analyze", "-a", "sine", "-k", "81", "-d", "0.5")
	require.NoError(t, err)
	assert.InDelta(t, 880, floatField(t, out, "peak_hz"), 6)
}

func TestAnalyzeRelease(t *testing.T) {
	out, err := run(t, "analyze", "-a", "two-chain", "--duration", "0.5", "--release", "0.1")
	require.NoError(t, err)
	held, err := run(t, "analyze", "-a", "two-chain", "--duration", "0.5")
	require.NoError(t, err)
	assert.Less(t, floatField(t, out, "rms"), floatField(t, held, "rms"))
}

func TestAnalyzeWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("algorithm: additive\nbackend: headless\n"), 0644))
	out, err := run(t, "analyze", "--config", path, "-d", "0.25")
	require.NoError(t, err)
	assert.Equal(t, "additive", field(t, out, "algorithm"))
	assert.Equal(t, "[0 1 2 3]", field(t, out, "carriers"))
}

func TestAnalyzeFewFrames(t *testing.T) {
	for _, d := range []string{"0.00003", "0.00005", "0.00007", "0.0001"} {
		out, err := run(t, "analyze", "-a", "sine", "-d", d)
		require.NoError(t, err, d)
		assert.NotEmpty(t, field(t, out, "peak_hz"), d)
	}
}

func TestAnalyzeRejects(t *testing.T) {
	for _, args := range [][]string{
		{"analyze", "--algorithm", "nope"},
		{"analyze", "--key", "500"},
		{"analyze", "--duration", "0"},
		{"analyze", "--sample-rate", "-1"},
	} {
		_, err := run(t, args...)
		assert.Error(t, err, args)
	}
}

func TestSpectrumSize(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 1, 1000: 512, 1024: 1024, 1 << 20: maxSpectrumSize} {
		assert.Equal(t, want, spectrumSize(n), n)
	}
}
