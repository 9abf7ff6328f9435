package fm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmsValidate(t *testing.T) {
	for name, a := range Algorithms {
		assert.NoError(t, a.Validate(), name)
		assert.Equal(t, name, a.Name)
		assert.NotEmpty(t, a.Carriers(), name)
		assert.Greater(t, a.Scale, 0.0, name)
	}
}

func TestRoutingFeedback(t *testing.T) {
	for _, w := range [][2]int{{0, 0}, {1, 1}, {0, 3}, {2, 3}, {1, 2}} {
		var m RoutingMatrix
		m[w[0]][w[1]] = 0.5
		assert.ErrorIs(t, m.Validate(), ErrFeedback, w)

		a := Canonical
		a.Routing = m
		assert.ErrorIs(t, a.Validate(), ErrFeedback, w)
		_, err := NewSynth(Params{SampleRate: 48000}, a)
		assert.ErrorIs(t, err, ErrFeedback, w)
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, []int{3}, Canonical.Carriers())
	assert.Equal(t, 0.125, Canonical.Scale)
	for i := range Canonical.Routing {
		for j := range Canonical.Routing[i] {
			want := 0.0
			if i == 1 && j == 0 || i == 3 && j == 2 {
				want = 1
			}
			assert.Equal(t, want, Canonical.Routing[i][j], "w[%d][%d]", i, j)
		}
	}
}

func TestLookupAlgorithm(t *testing.T) {
	names := AlgorithmNames()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Len(t, names, len(Algorithms))

	a, err := LookupAlgorithm("stack")
	require.NoError(t, err)
	a.Mix[0] = 1
	assert.Zero(t, Algorithms["stack"].Mix[0], "lookup returns a copy")

	_, err = LookupAlgorithm("missing")
	assert.Error(t, err)
}

func TestModulation(t *testing.T) {
	var ops [NumOperators]Operator
	ops[0].output = 0.5
	ops[1].output = -0.25
	m := RoutingMatrix{3: {2, 1, 0, 0}}
	assert.Equal(t, 0.0, m.Modulation(0, &ops))
	assert.Equal(t, 0.75, m.Modulation(3, &ops))
}
