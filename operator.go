package fm

import "math"

// modulationIndex scales a modulator's output into phase offset, in cycles.
const modulationIndex = 4

// An Operator is one sine oscillator of the voice with its own phase
// accumulator and an on/off envelope gate.
type Operator struct {
	FrequencyRatio float64
	Amplitude      float64

	index    int
	voice    *VoiceState
	phase    float64
	envelope float64
	output   float64
	diag     diagnostic
}

func newOperator(index int, voice *VoiceState) Operator {
	return Operator{
		FrequencyRatio: 1,
		Amplitude:      1,
		index:          index,
		voice:          voice,
	}
}

func (o *Operator) Index() int        { return o.index }
func (o *Operator) Phase() float64    { return o.phase }
func (o *Operator) Envelope() float64 { return o.envelope }
func (o *Operator) Output() float64   { return o.output }
func (o *Operator) Sounding() bool    { return o.envelope != 0 }

// Advance computes this sample's output from the current phase plus the
// modulation input and then steps the phase.
func (o *Operator) Advance(modulation float64) {
	o.output = o.Amplitude * o.envelope * math.Sin(2*math.Pi*(o.phase+modulationIndex*modulation))
	if !finite(o.output) {
		o.diag.trip(NonFiniteReport{
			Operator:       o.index,
			Modulation:     modulation,
			Phase:          o.phase,
			Amplitude:      o.Amplitude,
			Envelope:       o.envelope,
			PhaseIncrement: o.voice.phaseIncrement,
		})
		o.output = 0
	}

	o.phase += o.FrequencyRatio * o.voice.phaseIncrement
	o.phase -= math.Floor(o.phase)
	// x - floor(x) rounds up to 1 for tiny negative x, and is NaN for ±Inf.
	if !(o.phase >= 0 && o.phase < 1) {
		o.phase = 0
	}
}

// Start opens the envelope gate.  The phase is left alone so retriggering is
// phase continuous.
func (o *Operator) Start() { o.envelope = 1 }

// Stop closes the envelope gate.
func (o *Operator) Stop() { o.envelope = 0 }

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
