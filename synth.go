package fm

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
)

// ErrSampleRate is returned for a sample rate that is not a positive number.
var ErrSampleRate = errors.New("invalid sample rate")

const DefaultQueueSize = 64

// A Synth is a single FM voice: four operators wired by a fixed algorithm,
// a mixer, and the controller that applies note commands between blocks.
//
// Process, ProcessBus, ProcessKeyParam and Sing must all be called from one
// goroutine (the host's render context).  Send and Stats may be called from
// any goroutine.
type Synth struct {
	Params Params
	Logger *slog.Logger

	algorithm Algorithm
	ctrl      VoiceController
	ops       [NumOperators]Operator
	routing   RoutingMatrix
	mixer     Mixer
	queue     *CommandQueue
	stats     counters
}

type Option func(*Synth)

func WithLogger(l *slog.Logger) Option { return func(s *Synth) { s.Logger = l } }

// WithQueueSize bounds the number of commands that may be pending between
// two blocks.
func WithQueueSize(n int) Option {
	return func(s *Synth) { s.queue = NewCommandQueue(n) }
}

// NewSynth builds a voice for a stream at p.SampleRate running algorithm a.
func NewSynth(p Params, a Algorithm, opts ...Option) (*Synth, error) {
	if !(p.SampleRate > 0) || math.IsInf(p.SampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrSampleRate, p.SampleRate)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	s := &Synth{
		Params:    p,
		algorithm: a,
		routing:   a.Routing,
		mixer:     Mixer{Mix: a.Mix, Scale: a.Scale},
	}
	for _, o := range opts {
		o(s)
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.queue == nil {
		s.queue = NewCommandQueue(DefaultQueueSize)
	}

	s.ctrl = VoiceController{
		voice: newVoiceState(p.SampleRate),
		ops:   &s.ops,
		queue: s.queue,
		stats: &s.stats,
	}
	for i := range s.ops {
		s.ops[i] = newOperator(i, &s.ctrl.voice)
		s.ops[i].FrequencyRatio = a.Ratios[i]
		s.ops[i].Amplitude = a.Amplitudes[i]
	}
	return s, nil
}

func (s *Synth) Algorithm() Algorithm         { return s.algorithm }
func (s *Synth) Controller() *VoiceController { return &s.ctrl }
func (s *Synth) Voice() *VoiceState           { return &s.ctrl.voice }
func (s *Synth) State() NoteState             { return s.ctrl.State() }

// Operator returns operator i.  Like the render methods, it is only safe to
// use from the render goroutine.
func (s *Synth) Operator(i int) *Operator { return &s.ops[i] }

// Send queues a command for the next block boundary.  It reports false if
// the queue was full and the command was dropped.
func (s *Synth) Send(c Command) bool {
	if !s.queue.Send(c) {
		s.stats.dropped.Add(1)
		return false
	}
	return true
}

// Pending is the number of commands waiting for the next block.
func (s *Synth) Pending() int { return s.queue.Len() }

// Sing advances every operator by one sample, modulators before the
// carriers they feed, and returns the mixed output.
func (s *Synth) Sing() float64 {
	for i := range s.ops {
		s.ops[i].Advance(s.routing.Modulation(i, &s.ops))
	}
	return s.mixer.Sum(&s.ops)
}

// Process renders one block into every channel of every bus.  All channels
// are the length of outputs[0][0].  It never allocates or blocks and always
// returns true: the voice lives until the host stops calling it.
func (s *Synth) Process(outputs [][][]float32) bool {
	s.ctrl.Drain()
	n := blockLen(outputs)
	for k := 0; k < n; k++ {
		writeSample(outputs, k, float32(s.Sing()))
	}
	s.endBlock(n)
	return true
}

// ProcessBus is Process for a host with a single output bus.
func (s *Synth) ProcessBus(out [][]float32) bool {
	s.ctrl.Drain()
	n := 0
	if len(out) > 0 {
		n = len(out[0])
	}
	for k := 0; k < n; k++ {
		x := float32(s.Sing())
		for _, ch := range out {
			if k < len(ch) {
				ch[k] = x
			}
		}
	}
	s.endBlock(n)
	return true
}

// ProcessKeyParam is Process for hosts that drive pitch with a per-sample
// key parameter instead of NoteOn.  keys[k] sets the pitch of sample k and
// the frequency is recomputed whenever it changes.  A buffer shorter than
// the block holds its last value, so a one-element buffer is a constant
// k-rate key.  The envelope gate is still controlled by commands.
func (s *Synth) ProcessKeyParam(outputs [][][]float32, keys []float64) bool {
	s.ctrl.Drain()
	n := blockLen(outputs)
	last := math.NaN()
	for k := 0; k < n; k++ {
		if len(keys) > 0 {
			key := keys[len(keys)-1]
			if k < len(keys) {
				key = keys[k]
			}
			if key != last {
				last = key
				s.ctrl.voice.setPitch(key)
			}
		}
		writeSample(outputs, k, float32(s.Sing()))
	}
	s.endBlock(n)
	return true
}

func blockLen(outputs [][][]float32) int {
	if len(outputs) == 0 || len(outputs[0]) == 0 {
		return 0
	}
	return len(outputs[0][0])
}

func writeSample(outputs [][][]float32, k int, x float32) {
	for _, bus := range outputs {
		for _, ch := range bus {
			if k < len(ch) {
				ch[k] = x
			}
		}
	}
}

func (s *Synth) endBlock(n int) {
	s.stats.blocks.Add(1)
	s.stats.samples.Add(uint64(n))

	var nonFinite uint64
	for i := range s.ops {
		nonFinite += s.ops[i].diag.count
		s.logDiagnostic(&s.ops[i].diag)
	}
	nonFinite += s.mixer.diag.count
	s.logDiagnostic(&s.mixer.diag)
	s.stats.nonFinite.Store(nonFinite)
}

func (s *Synth) logDiagnostic(d *diagnostic) {
	if r, ok := d.pending(); ok {
		s.Logger.Warn("non-finite sample replaced with silence", "report", r)
	}
}

// Stats is a snapshot of a Synth's counters.
type Stats struct {
	Blocks        uint64
	Samples       uint64
	Commands      uint64
	Dropped       uint64
	NotesOn       uint64
	StaleNoteOffs uint64
	NonFinite     uint64
}

type counters struct {
	blocks        atomic.Uint64
	samples       atomic.Uint64
	commands      atomic.Uint64
	dropped       atomic.Uint64
	notesOn       atomic.Uint64
	staleNoteOffs atomic.Uint64
	nonFinite     atomic.Uint64
}

func (s *Synth) Stats() Stats {
	return Stats{
		Blocks:        s.stats.blocks.Load(),
		Samples:       s.stats.samples.Load(),
		Commands:      s.stats.commands.Load(),
		Dropped:       s.stats.dropped.Load(),
		NotesOn:       s.stats.notesOn.Load(),
		StaleNoteOffs: s.stats.staleNoteOffs.Load(),
		NonFinite:     s.stats.nonFinite.Load(),
	}
}
