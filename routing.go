package fm

import (
	"errors"
	"fmt"
	"sort"
)

// NumOperators is the size of the operator network.
const NumOperators = 4

// ErrFeedback is returned for a routing matrix that would need operator
// outputs not yet computed in the current sample.
var ErrFeedback = errors.New("routing matrix has feedback")

// RoutingMatrix holds modulation weights: m[i][j] is how much of operator
// j's output goes into operator i's phase.  Operators are evaluated in index
// order, so m[i][j] may only be nonzero for j < i.
type RoutingMatrix [NumOperators][NumOperators]float64

// Validate reports ErrFeedback for any weight on or above the diagonal.
func (m *RoutingMatrix) Validate() error {
	for i := range m {
		for j := i; j < NumOperators; j++ {
			if m[i][j] != 0 {
				return fmt.Errorf("%w: w[%d][%d] = %g", ErrFeedback, i, j, m[i][j])
			}
		}
	}
	return nil
}

// Modulation sums the weighted outputs feeding operator i.
func (m *RoutingMatrix) Modulation(i int, ops *[NumOperators]Operator) float64 {
	x := 0.0
	for j := range ops {
		x += m[i][j] * ops[j].output
	}
	return x
}

// MixVector weights each operator's contribution to the audible output.
type MixVector [NumOperators]float64

// An Algorithm is one entry of the constant table of operator networks.
type Algorithm struct {
	Name       string
	Routing    RoutingMatrix
	Mix        MixVector
	Scale      float64
	Ratios     [NumOperators]float64
	Amplitudes [NumOperators]float64
}

func (a Algorithm) Validate() error {
	if err := a.Routing.Validate(); err != nil {
		return fmt.Errorf("algorithm %q: %w", a.Name, err)
	}
	return nil
}

// Carriers lists the operators that reach the mix.
func (a Algorithm) Carriers() []int {
	var c []int
	for i, w := range a.Mix {
		if w != 0 {
			c = append(c, i)
		}
	}
	return c
}

var unity = [NumOperators]float64{1, 1, 1, 1}

// Canonical is two independent modulator→carrier chains (0→1, 2→3) with
// only operator 3 mixed.
var Canonical = Algorithm{
	Name: "two-chain",
	Routing: RoutingMatrix{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 1, 0},
	},
	Mix:        MixVector{0, 0, 0, 1},
	Scale:      0.125,
	Ratios:     unity,
	Amplitudes: unity,
}

// Algorithms is the table of named operator networks.
var Algorithms = map[string]Algorithm{
	Canonical.Name: Canonical,
	"sine": {
		Name:       "sine",
		Mix:        MixVector{1, 0, 0, 0},
		Scale:      0.125,
		Ratios:     unity,
		Amplitudes: unity,
	},
	"pair": {
		Name: "pair",
		Routing: RoutingMatrix{
			{0, 0, 0, 0},
			{1, 0, 0, 0},
		},
		Mix:        MixVector{0, 1, 0, 0},
		Scale:      0.125,
		Ratios:     unity,
		Amplitudes: unity,
	},
	"stack": {
		Name: "stack",
		Routing: RoutingMatrix{
			{0, 0, 0, 0},
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
		},
		Mix:        MixVector{0, 0, 0, 1},
		Scale:      0.125,
		Ratios:     unity,
		Amplitudes: unity,
	},
	"dual-carrier": {
		Name: "dual-carrier",
		Routing: RoutingMatrix{
			{0, 0, 0, 0},
			{1, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 1, 0},
		},
		Mix:        MixVector{0, 1, 0, 1},
		Scale:      0.125,
		Ratios:     unity,
		Amplitudes: unity,
	},
	"additive": {
		Name:       "additive",
		Mix:        MixVector{1, 1, 1, 1},
		Scale:      0.125,
		Ratios:     [NumOperators]float64{1, 2, 3, 4},
		Amplitudes: [NumOperators]float64{1, 0.5, 0.33, 0.25},
	},
}

// AlgorithmNames returns the table's keys in sorted order.
func AlgorithmNames() []string {
	names := make([]string, 0, len(Algorithms))
	for name := range Algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupAlgorithm returns a copy of the named table entry.
func LookupAlgorithm(name string) (Algorithm, error) {
	a, ok := Algorithms[name]
	if !ok {
		return Algorithm{}, fmt.Errorf("unknown algorithm %q", name)
	}
	return a, nil
}
