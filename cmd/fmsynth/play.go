package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/fm"
	"github.com/gordonklaus/fm/config"
	"github.com/gordonklaus/fm/control"
	"github.com/gordonklaus/fm/host"
	"github.com/gordonklaus/fm/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newPlayCmd(o *rootOptions) *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Open the audio output and play notes as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.configPath)
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Backend = backend
			}
			return play(cmd.Context(), o, cfg)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "override the configured backend (portaudio, oto, headless)")
	return cmd
}

func play(ctx context.Context, o *rootOptions, cfg *config.Config) error {
	logger := o.logger
	b, err := host.Open(host.Options{
		Backend:         cfg.Backend,
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
		Channels:        cfg.Channels,
	})
	if err != nil {
		if errors.Is(err, host.ErrUnsupported) {
			logger.Error("no audio output", "backend", cfg.Backend, "error", err)
		}
		return err
	}

	s, err := newSynth(cfg, b.SampleRate(), logger)
	if err != nil {
		b.Close()
		return err
	}
	st, err := host.NewStream(s)
	if err != nil {
		b.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return host.Play(ctx, b, st, logger) })

	metricsHandler := promhttp.HandlerFor(metrics.NewRegistry(st), promhttp.HandlerOpts{})
	if cfg.ControlAddr != "" {
		srv := control.NewServer(st, logger, metricsHandler)
		g.Go(func() error { return srv.ListenAndServe(ctx, cfg.ControlAddr) })
	}
	if cfg.MetricsAddr != "" && cfg.MetricsAddr != cfg.ControlAddr {
		g.Go(func() error { return serveMetrics(ctx, cfg.MetricsAddr, metricsHandler, logger) })
	}

	if interactive(os.Stdin) {
		fmt.Fprintln(os.Stderr, "enter notes as 'on 60', 'off 60' or JSON; 'quit' to stop")
	}
	g.Go(func() error { return control.ScanLines(ctx, os.Stdin, st, logger) })

	if cfg.Watch {
		g.Go(func() error { return watch(ctx, o.configPath, cfg, b.SampleRate(), st, logger) })
	}

	err = g.Wait()
	if errors.Is(err, control.ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newSynth(cfg *config.Config, sampleRate float64, logger *slog.Logger) (*fm.Synth, error) {
	a, err := cfg.BuildAlgorithm()
	if err != nil {
		return nil, err
	}
	return fm.NewSynth(cfg.Params(sampleRate), a, fm.WithLogger(logger), fm.WithQueueSize(cfg.QueueSize))
}

// watch rebuilds the voice whenever the config file changes.  Settings that
// belong to the audio device only take effect on restart.
func watch(ctx context.Context, path string, current *config.Config, sampleRate float64, st *host.Stream, logger *slog.Logger) error {
	configs := make(chan *config.Config)
	errs := make(chan error)
	if err := config.Watch(ctx, path, configs, errs); err != nil {
		logger.Warn("config changes will be ignored", "error", err)
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			logger.Warn("ignoring config change", "error", err)
		case cfg := <-configs:
			if cfg.Backend != current.Backend || cfg.SampleRate != current.SampleRate ||
				cfg.FramesPerBuffer != current.FramesPerBuffer || cfg.Channels != current.Channels {
				logger.Warn("audio device settings change on restart")
			}
			s, err := newSynth(cfg, sampleRate, logger)
			if err != nil {
				logger.Warn("ignoring config change", "error", err)
				continue
			}
			st.Swap(s)
			logger.Info("voice reloaded", "algorithm", s.Algorithm().Name)
		}
	}
}

func serveMetrics(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving metrics", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
