package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnsupported means the host cannot provide real-time audio output.  It
// is fatal: the voice never starts.
var ErrUnsupported = errors.New("real-time audio output unsupported")

// A Backend is a host audio output.  Start registers the stream's render
// callback; Close stops calling it and releases the device.
type Backend interface {
	SampleRate() float64
	Start(*Stream) error
	Close() error
}

// Options select and size a backend.  A zero SampleRate asks for the
// device's default.
type Options struct {
	Backend         string
	SampleRate      float64
	FramesPerBuffer int
	Channels        int
}

const DefaultSampleRate = 48000

func Open(o Options) (Backend, error) {
	if o.Channels < 1 {
		o.Channels = 1
	}
	switch o.Backend {
	case "", "portaudio":
		return OpenPortAudio(o.SampleRate, o.FramesPerBuffer, o.Channels)
	case "oto":
		return OpenOto(o.SampleRate, o.FramesPerBuffer, o.Channels)
	case "headless":
		return NewHeadless(o.SampleRate, o.FramesPerBuffer, o.Channels), nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrUnsupported, o.Backend)
}

// Play starts st on b and keeps it running until ctx is done.
func Play(ctx context.Context, b Backend, st *Stream, logger *slog.Logger) error {
	if err := b.Start(st); err != nil {
		return err
	}
	logger.Info("stream started", "sampleRate", b.SampleRate())
	<-ctx.Done()
	if err := b.Close(); err != nil {
		logger.Warn("closing audio backend", "error", err)
		return err
	}
	logger.Info("stream stopped")
	return nil
}
