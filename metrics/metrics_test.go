package metrics

import (
	"strings"
	"testing"

	"github.com/gordonklaus/fm"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	stats   fm.Stats
	level   float64
	pending int
}

func (f fakeSource) Stats() fm.Stats { return f.stats }
func (f fakeSource) Level() float64  { return f.level }
func (f fakeSource) Pending() int    { return f.pending }

func TestCollector(t *testing.T) {
	src := fakeSource{
		stats:   fm.Stats{Blocks: 10, Samples: 1280, Commands: 3, Dropped: 1, NotesOn: 2, StaleNoteOffs: 1},
		level:   0.25,
		pending: 2,
	}
	c := NewCollector(src)
	assert.Equal(t, 9, testutil.CollectAndCount(c))

	expected := `
# HELP fm_commands_total Control commands by outcome.
# TYPE fm_commands_total counter
fm_commands_total{outcome="applied"} 3
fm_commands_total{outcome="dropped"} 1
fm_commands_total{outcome="ignored"} 1
# HELP fm_output_level RMS output level over the meter window.
# TYPE fm_output_level gauge
fm_output_level 0.25
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "fm_commands_total", "fm_output_level"))
}

func TestRegistryGathers(t *testing.T) {
	r := NewRegistry(fakeSource{})
	families, err := r.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fm_blocks_rendered_total")
	assert.Contains(t, names, "go_goroutines")
}
