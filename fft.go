package fm

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ktye/fft"
)

// A Spectrum analyzes blocks of rendered output with a Hann-windowed FFT.
type Spectrum struct {
	params Params
	fft    fft.FFT
	env    []float64
	buf    []complex128
}

// NewSpectrum makes an analyzer for size samples; size must be a power of
// two.
func NewSpectrum(size int) (*Spectrum, error) {
	f, err := fft.New(size)
	if err != nil {
		return nil, fmt.Errorf("fft size %d: %w", size, err)
	}
	env := make([]float64, size)
	for i := range env {
		env[i] = (1 - math.Cos(2*math.Pi*float64(i)/float64(size))) / 2
	}
	return &Spectrum{fft: f, env: env, buf: make([]complex128, size)}, nil
}

func (s *Spectrum) InitAudio(p Params) { s.params = p }

func (s *Spectrum) Size() int { return len(s.buf) }

// Magnitudes returns the magnitude of each bin up to Nyquist for the first
// Size samples of x (zero padded if x is shorter).
func (s *Spectrum) Magnitudes(x []float32) []float64 {
	for i := range s.buf {
		v := 0.0
		if i < len(x) {
			v = float64(x[i]) * s.env[i]
		}
		s.buf[i] = complex(v, 0)
	}
	s.buf = s.fft.Transform(s.buf)
	mag := make([]float64, len(s.buf)/2)
	for i := range mag {
		mag[i] = cmplx.Abs(s.buf[i])
	}
	return mag
}

// BinFrequency is the center frequency of bin i.
func (s *Spectrum) BinFrequency(i int) float64 {
	return float64(i) * s.params.SampleRate / float64(len(s.buf))
}

// Peak returns the frequency and magnitude of the strongest non-DC bin, or
// zeros if the spectrum has no such bin.
func (s *Spectrum) Peak(x []float32) (freq, mag float64) {
	m := s.Magnitudes(x)
	if len(m) < 2 {
		return 0, 0
	}
	best := 1
	for i := 2; i < len(m); i++ {
		if m[i] > m[best] {
			best = i
		}
	}
	return s.BinFrequency(best), m[best]
}
