package fm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestOperator() (*Operator, *VoiceState) {
	v := newVoiceState(48000)
	o := newOperator(2, &v)
	return &o, &v
}

func TestOperatorPhaseStaysInRange(t *testing.T) {
	o, v := newTestOperator()
	o.Start()
	for _, ratio := range []float64{1, 0.5, 7.25, 1e9, -3, -1e-300} {
		o.FrequencyRatio = ratio
		for i := 0; i < 1000; i++ {
			o.Advance(0)
			if p := o.Phase(); !(p >= 0 && p < 1) {
				t.Fatalf("ratio %g: phase %v after %d samples", ratio, p, i)
			}
		}
	}
	v.setPitch(1e6)
	o.Advance(0)
	assert.True(t, o.Phase() >= 0 && o.Phase() < 1)
}

func TestOperatorOutput(t *testing.T) {
	o, v := newTestOperator()
	o.Amplitude = 0.5

	o.Advance(0.1)
	assert.Zero(t, o.Output(), "gate closed")

	o.Start()
	p := o.Phase()
	o.Advance(0.1)
	assert.InDelta(t, 0.5*math.Sin(2*math.Pi*(p+modulationIndex*0.1)), o.Output(), 1e-12)
	assert.InDelta(t, p+v.PhaseIncrement(), o.Phase(), 1e-12)

	o.Stop()
	o.Advance(0)
	assert.Zero(t, o.Output())
	assert.False(t, o.Sounding())
}

func TestOperatorNonFiniteIsSticky(t *testing.T) {
	o, _ := newTestOperator()
	o.Start()

	o.Advance(math.NaN())
	assert.Zero(t, o.Output())
	o.Advance(math.Inf(1))
	assert.Zero(t, o.Output())
	o.Advance(0.25)
	assert.NotZero(t, o.Output(), "recovers once its input is finite")

	assert.EqualValues(t, 2, o.diag.count)
	r, ok := o.diag.pending()
	assert.True(t, ok)
	assert.Equal(t, 2, r.Operator)
	assert.True(t, math.IsNaN(r.Modulation), "keeps the first report")
	_, ok = o.diag.pending()
	assert.False(t, ok, "reported only once")
}

func TestOperatorRetriggerKeepsPhase(t *testing.T) {
	o, _ := newTestOperator()
	o.Start()
	for i := 0; i < 100; i++ {
		o.Advance(0)
	}
	p := o.Phase()
	o.Start()
	assert.Equal(t, p, o.Phase())
}

func BenchmarkOperator(b *testing.B) {
	o, _ := newTestOperator()
	o.Start()
	for i := 0; i < b.N; i++ {
		o.Advance(0.01)
	}
}
