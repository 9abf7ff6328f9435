package host

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gordonklaus/fm"
)

const bytesPerSample = 4

// Oto renders through an oto player, which pulls interleaved float32 samples
// from a reader.
type Oto struct {
	sampleRate int
	frames     int
	channels   int
	ctx        *oto.Context
	player     *oto.Player
}

func OpenOto(sampleRate float64, frames, channels int) (*Oto, error) {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	if frames <= 0 {
		frames = fm.DefaultBlockSize
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(float64(4*frames) / sampleRate * float64(time.Second)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	<-ready
	return &Oto{sampleRate: int(sampleRate), frames: frames, channels: channels, ctx: ctx}, nil
}

func (o *Oto) SampleRate() float64 { return float64(o.sampleRate) }

func (o *Oto) Start(st *Stream) error {
	o.player = o.ctx.NewPlayer(newInterleaver(st, o.frames, o.channels))
	o.player.Play()
	return nil
}

func (o *Oto) Close() error {
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// interleaver adapts a Stream's block callback to an io.Reader of
// little-endian float32 frames.
type interleaver struct {
	stream *Stream
	block  [][]float32
	pos    int
}

func newInterleaver(st *Stream, frames, channels int) *interleaver {
	block := make([][]float32, channels)
	for i := range block {
		block[i] = make([]float32, frames)
	}
	return &interleaver{stream: st, block: block, pos: frames}
}

func (r *interleaver) Read(p []byte) (int, error) {
	frameSize := bytesPerSample * len(r.block)
	n := 0
	for ; n+frameSize <= len(p); n += frameSize {
		if r.pos == len(r.block[0]) {
			r.stream.Process(r.block)
			r.pos = 0
		}
		for c, ch := range r.block {
			binary.LittleEndian.PutUint32(p[n+c*bytesPerSample:], math.Float32bits(ch[r.pos]))
		}
		r.pos++
	}
	return n, nil
}
