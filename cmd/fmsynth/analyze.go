package main

import (
	"fmt"
	"math/bits"

	"github.com/gordonklaus/fm"
	"github.com/gordonklaus/fm/config"
	"github.com/spf13/cobra"
)

const (
	minSpectrumSize = 4
	maxSpectrumSize = 1 << 16
)

type analyzeOptions struct {
	algorithm  string
	key        int
	duration   float64
	release    float64
	sampleRate float64
	glide      float64
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	o := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Render a note offline and report its level and spectral peak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var a fm.Algorithm
			var err error
			if cmd.Flags().Changed("config") {
				var cfg *config.Config
				if cfg, err = config.Load(root.configPath); err != nil {
					return err
				}
				a, err = cfg.BuildAlgorithm()
			} else {
				a, err = fm.LookupAlgorithm(o.algorithm)
			}
			if err != nil {
				return err
			}
			r, err := analyze(a, o, root)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "algorithm: %s\n", a.Name)
			fmt.Fprintf(w, "carriers: %v\n", a.Carriers())
			fmt.Fprintf(w, "frames: %d\n", r.frames)
			fmt.Fprintf(w, "rms: %.6f\n", r.rms)
			fmt.Fprintf(w, "rms_db: %.2f\n", fm.AmplitudeDB(r.rms))
			fmt.Fprintf(w, "peak_hz: %.2f\n", r.peakFreq)
			fmt.Fprintf(w, "expected_hz: %.2f\n", fm.KeyFrequency(float64(o.key)))
			fmt.Fprintf(w, "nonfinite: %d\n", r.nonFinite)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.algorithm, "algorithm", "a", fm.Canonical.Name, "built-in algorithm to render (ignored with --config)")
	f.IntVarP(&o.key, "key", "k", fm.DefaultKey, "key to play")
	f.Float64VarP(&o.duration, "duration", "d", 1, "seconds to render")
	f.Float64Var(&o.release, "release", 0, "seconds until NoteOff (0 holds the note)")
	f.Float64Var(&o.sampleRate, "sample-rate", 48000, "sample rate in Hz")
	f.Float64Var(&o.glide, "glide", 0, "key to glide to over the duration (0 disables)")
	return cmd
}

type analysis struct {
	frames    int
	rms       float64
	peakFreq  float64
	nonFinite uint64
}

func analyze(a fm.Algorithm, o analyzeOptions, root *rootOptions) (analysis, error) {
	if o.key < fm.MinKey || o.key > fm.MaxKey {
		return analysis{}, fmt.Errorf("%w: %d", fm.ErrKeyRange, o.key)
	}
	if !(o.duration > 0) {
		return analysis{}, fmt.Errorf("duration must be positive, got %g", o.duration)
	}
	p := fm.Params{SampleRate: o.sampleRate, BufferSize: fm.DefaultBlockSize}
	s, err := fm.NewSynth(p, a, fm.WithLogger(root.logger))
	if err != nil {
		return analysis{}, err
	}

	score := []fm.Event{{Time: 0, Command: fm.NoteOnCommand(o.key)}}
	if o.release > 0 {
		score = append(score, fm.Event{Time: o.release, Command: fm.NoteOffCommand(o.key)})
	}
	var keys *fm.Control
	if o.glide != 0 {
		keys, err = fm.NewControl(
			fm.ControlPoint{Time: 0, Value: float64(o.key)},
			fm.ControlPoint{Time: o.duration, Value: o.glide},
		)
		if err != nil {
			return analysis{}, err
		}
	}

	frames := int(o.duration * o.sampleRate)
	out, err := fm.RenderOffline(s, score, keys, frames)
	if err != nil {
		return analysis{}, err
	}

	r := analysis{frames: frames, nonFinite: s.Stats().NonFinite}
	meter := fm.NewAmpMeter(o.duration)
	if err := fm.Init(meter, p); err != nil {
		return r, err
	}
	r.rms = meter.Amplitude(out)

	if size := spectrumSize(len(out)); size >= minSpectrumSize {
		spec, err := fm.NewSpectrum(size)
		if err != nil {
			return r, err
		}
		if err := fm.Init(spec, p); err != nil {
			return r, err
		}
		r.peakFreq, _ = spec.Peak(out[len(out)-size:])
	}
	return r, nil
}

// spectrumSize is the largest power of two no greater than n, capped.
func spectrumSize(n int) int {
	if n < 1 {
		return 0
	}
	return min(1<<(bits.Len(uint(n))-1), maxSpectrumSize)
}
