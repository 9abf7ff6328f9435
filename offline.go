package fm

import "fmt"

// DefaultBlockSize is used when Params.BufferSize is unset.  It matches the
// render quantum of common audio hosts.
const DefaultBlockSize = 128

// An Event is a command sent at Time seconds into a score.
type Event struct {
	Time    float64
	Command Command
}

// RenderOffline drives s for frames samples, block by block, as a host would.
// Score events are delivered at the first block boundary at or after their
// time and are counted in Stats.Commands like queued ones.  If keys is
// non-nil it supplies the key parameter for every sample.
func RenderOffline(s *Synth, score []Event, keys *Control, frames int) ([]float32, error) {
	var d EventDelay
	if err := Init(&d, s.Params); err != nil {
		return nil, err
	}
	for _, e := range score {
		if err := d.Delay(e.Time, e.Command); err != nil {
			return nil, fmt.Errorf("scheduling %s: %w", e.Command, err)
		}
	}

	size := s.Params.BufferSize
	if size <= 0 {
		size = DefaultBlockSize
	}
	var keyBuf []float64
	if keys != nil {
		if err := Init(keys, s.Params); err != nil {
			return nil, err
		}
		keyBuf = make([]float64, size)
	}

	out := make([]float32, frames)
	outputs := [][][]float32{{nil}}
	apply := func(c Command) {
		s.ctrl.Apply(c)
		s.stats.commands.Add(1)
	}
	d.Fire(apply)
	for b := 0; b < frames; b += size {
		block := out[b:min(b+size, frames)]
		outputs[0][0] = block
		if keys != nil {
			s.ProcessKeyParam(outputs, keys.Fill(keyBuf[:len(block)]))
		} else {
			s.Process(outputs)
		}
		d.Advance(len(block), apply)
	}
	return out, nil
}
