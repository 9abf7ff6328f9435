package fm

import "math"

const (
	// DefaultKey is A4, the key a fresh voice is tuned to.
	DefaultKey = 69

	// MinKey and MaxKey bound the keys accepted from the outside world.
	MinKey = 0 - 12
	MaxKey = 128 + 12

	referenceFreq = 440
)

// A Voice renders one mono sample per call.  It is the narrow interface host
// adapters drive.
type Voice interface {
	Sing() float64
}

// KeyFrequency returns the equal-tempered frequency of a (possibly
// fractional) key number, with key 69 at 440 Hz.
func KeyFrequency(key float64) float64 {
	return referenceFreq * math.Pow(2, (key-DefaultKey)/12)
}

// VoiceState is the pitch state shared by every operator of a voice.  The
// VoiceController owns it; operators only read it.
type VoiceState struct {
	key            int
	phaseIncrement float64
	sampleRate     float64
}

func newVoiceState(sampleRate float64) VoiceState {
	v := VoiceState{sampleRate: sampleRate}
	v.setKey(DefaultKey)
	return v
}

// Key is the note number of the most recent NoteOn.
func (v *VoiceState) Key() int { return v.key }

// PhaseIncrement is the fundamental's advance per sample, in cycles.
func (v *VoiceState) PhaseIncrement() float64 { return v.phaseIncrement }

func (v *VoiceState) SampleRate() float64 { return v.sampleRate }

func (v *VoiceState) setKey(key int) {
	v.key = key
	v.setPitch(float64(key))
}

// setPitch retunes without changing the key used to match NoteOffs.
func (v *VoiceState) setPitch(key float64) {
	v.phaseIncrement = KeyFrequency(key) / v.sampleRate
}
