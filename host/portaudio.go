package host

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudio renders through the default output device's callback.
type PortAudio struct {
	sampleRate float64
	frames     int
	channels   int
	stream     *portaudio.Stream
}

func OpenPortAudio(sampleRate float64, frames, channels int) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: no default output device: %v", ErrUnsupported, err)
	}
	if sampleRate == 0 {
		sampleRate = dev.DefaultSampleRate
	}
	if frames <= 0 {
		frames = portaudio.FramesPerBufferUnspecified
	}
	return &PortAudio{sampleRate: sampleRate, frames: frames, channels: channels}, nil
}

func (p *PortAudio) SampleRate() float64 { return p.sampleRate }

func (p *PortAudio) Start(st *Stream) error {
	var err error
	p.stream, err = portaudio.OpenDefaultStream(0, p.channels, p.sampleRate, p.frames, func(in, out [][]float32) {
		st.Process(out)
	})
	if err != nil {
		return fmt.Errorf("%w: opening stream: %v", ErrUnsupported, err)
	}
	return p.stream.Start()
}

func (p *PortAudio) Close() error {
	defer portaudio.Terminate()
	if p.stream == nil {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		p.stream.Close()
		return err
	}
	return p.stream.Close()
}
