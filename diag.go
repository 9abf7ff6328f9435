package fm

import "log/slog"

// MixerIndex marks a NonFiniteReport raised after mixing rather than by an
// operator.
const MixerIndex = -1

// A NonFiniteReport captures the state that produced the first NaN or
// infinity seen by an operator (or the mixer).
type NonFiniteReport struct {
	Operator       int
	Modulation     float64
	Phase          float64
	Amplitude      float64
	Envelope       float64
	PhaseIncrement float64
}

func (r NonFiniteReport) LogValue() slog.Value {
	if r.Operator == MixerIndex {
		return slog.GroupValue(slog.String("source", "mixer"))
	}
	return slog.GroupValue(
		slog.Int("operator", r.Operator),
		slog.Float64("modulation", r.Modulation),
		slog.Float64("phase", r.Phase),
		slog.Float64("amplitude", r.Amplitude),
		slog.Float64("envelope", r.Envelope),
		slog.Float64("phaseIncrement", r.PhaseIncrement),
	)
}

// diagnostic is sticky: only the first trip is kept, and it is reported
// once.  It is only cleared by building a new Synth.
type diagnostic struct {
	tripped  bool
	reported bool
	report   NonFiniteReport
	count    uint64
}

func (d *diagnostic) trip(r NonFiniteReport) {
	d.count++
	if !d.tripped {
		d.tripped = true
		d.report = r
	}
}

func (d *diagnostic) pending() (NonFiniteReport, bool) {
	if !d.tripped || d.reported {
		return NonFiniteReport{}, false
	}
	d.reported = true
	return d.report, true
}
