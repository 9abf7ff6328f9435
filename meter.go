package fm

import "math"

// An AmpMeter measures RMS amplitude over a sliding window.
type AmpMeter struct {
	windowSize float64
	buf        []float64
	i          int
	sum        float64
}

func NewAmpMeter(windowSize float64) *AmpMeter {
	return &AmpMeter{windowSize: windowSize}
}

func (a *AmpMeter) InitAudio(p Params) {
	a.buf = make([]float64, max(1, int(p.SampleRate*a.windowSize)))
	a.i = 0
	a.sum = 0
}

func (a *AmpMeter) Add(x float64) {
	a.sum -= a.buf[a.i]
	a.buf[a.i] = x * x
	a.sum += a.buf[a.i]
	a.i = (a.i + 1) % len(a.buf)
}

// Amplitude feeds a block through the meter and returns the level after it.
func (a *AmpMeter) Amplitude(x []float32) float64 {
	for _, x := range x {
		a.Add(float64(x))
	}
	return a.Level()
}

func (a *AmpMeter) Level() float64 {
	return math.Sqrt(math.Max(0, a.sum) / float64(len(a.buf)))
}

// TotalLevelDB maps a 0 to 127 total level control to decibels: 0.75 dB per
// step below 127, and silence at 0.
func TotalLevelDB(level int) float64 {
	if level <= 0 {
		return math.Inf(-1)
	}
	return 0.75 * float64(level-127)
}

// TotalLevelAmplitude is the linear gain of a total level setting.
func TotalLevelAmplitude(level int) float64 {
	return math.Pow(10, TotalLevelDB(level)/20)
}

func AmplitudeDB(a float64) float64 { return 20 * math.Log10(a) }
