package fm

// A Mixer sums operator outputs into the audible signal.  Scale leaves
// headroom so that several carriers at full amplitude do not clip.
type Mixer struct {
	Mix   MixVector
	Scale float64
	diag  diagnostic
}

// Sum returns the mixed sample, or 0 if the mix is not finite.
func (m *Mixer) Sum(ops *[NumOperators]Operator) float64 {
	x := 0.0
	for i := range ops {
		x += m.Mix[i] * ops[i].output
	}
	x *= m.Scale
	if !finite(x) {
		m.diag.trip(NonFiniteReport{Operator: MixerIndex})
		return 0
	}
	return x
}
