package host

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/fm"
)

// levelWindow is the RMS window of the output meter, in seconds.
const levelWindow = 0.3

// A Stream is what a backend's render callback drives.  It forwards each
// block to the current Synth, which may be replaced between blocks by Swap.
type Stream struct {
	synth atomic.Pointer[fm.Synth]
	meter *fm.AmpMeter
	level atomic.Uint64

	mu      sync.Mutex
	retired []*fm.Synth
}

func NewStream(s *fm.Synth) (*Stream, error) {
	st := &Stream{meter: fm.NewAmpMeter(levelWindow)}
	if err := fm.Init(st.meter, s.Params); err != nil {
		return nil, err
	}
	st.synth.Store(s)
	return st, nil
}

func (st *Stream) Synth() *fm.Synth { return st.synth.Load() }

func (st *Stream) Params() fm.Params { return st.Synth().Params }

// Swap installs s as the voice rendered from the next block on and returns
// the old one.  The render goroutine may still be finishing a block on the
// old Synth, so its counters are read each time Stats is called rather than
// copied here.
func (st *Stream) Swap(s *fm.Synth) *fm.Synth {
	st.mu.Lock()
	defer st.mu.Unlock()
	old := st.synth.Swap(s)
	st.retired = append(st.retired, old)
	return old
}

// Send queues a command on the current Synth.
func (st *Stream) Send(c fm.Command) bool { return st.Synth().Send(c) }

// Process renders one block of non-interleaved channels.
func (st *Stream) Process(out [][]float32) {
	st.Synth().ProcessBus(out)
	if len(out) > 0 {
		st.level.Store(math.Float64bits(st.meter.Amplitude(out[0])))
	}
}

// Level is the RMS output level over the last few hundred milliseconds.
func (st *Stream) Level() float64 { return math.Float64frombits(st.level.Load()) }

// Pending is the number of commands waiting for the next block.
func (st *Stream) Pending() int { return st.Synth().Pending() }

// Stats are the counters of every Synth this stream has rendered.
func (st *Stream) Stats() fm.Stats {
	st.mu.Lock()
	defer st.mu.Unlock()
	total := st.Synth().Stats()
	for _, s := range st.retired {
		total = addStats(total, s.Stats())
	}
	return total
}

func addStats(a, b fm.Stats) fm.Stats {
	return fm.Stats{
		Blocks:        a.Blocks + b.Blocks,
		Samples:       a.Samples + b.Samples,
		Commands:      a.Commands + b.Commands,
		Dropped:       a.Dropped + b.Dropped,
		NotesOn:       a.NotesOn + b.NotesOn,
		StaleNoteOffs: a.StaleNoteOffs + b.StaleNoteOffs,
		NonFinite:     a.NonFinite + b.NonFinite,
	}
}
