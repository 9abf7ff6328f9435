package host

import (
	"sync"
	"time"

	"github.com/gordonklaus/fm"
)

// Headless renders in real time and discards the output.  It stands in for an
// audio device on machines without one.
type Headless struct {
	sampleRate float64
	frames     int
	channels   int

	stop chan struct{}
	done sync.WaitGroup
}

func NewHeadless(sampleRate float64, frames, channels int) *Headless {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	if frames <= 0 {
		frames = fm.DefaultBlockSize
	}
	return &Headless{sampleRate: sampleRate, frames: frames, channels: channels}
}

func (h *Headless) SampleRate() float64 { return h.sampleRate }

func (h *Headless) Start(st *Stream) error {
	out := make([][]float32, h.channels)
	for i := range out {
		out[i] = make([]float32, h.frames)
	}
	period := time.Duration(float64(h.frames) / h.sampleRate * float64(time.Second))
	stop := make(chan struct{})
	h.stop = stop
	h.done.Add(1)
	go func() {
		defer h.done.Done()
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				st.Process(out)
			case <-stop:
				return
			}
		}
	}()
	return nil
}

func (h *Headless) Close() error {
	if h.stop != nil {
		close(h.stop)
		h.done.Wait()
		h.stop = nil
	}
	return nil
}
