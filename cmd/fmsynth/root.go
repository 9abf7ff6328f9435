package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "fmsynth",
		Short:         "A monophonic four-operator FM synthesizer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			o.logger = newLogger(cmd.ErrOrStderr(), o.debug)
		},
	}
	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", defaultConfigPath(), "path to the YAML config (created with defaults if missing)")
	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "log every queued command")

	cmd.AddCommand(newPlayCmd(o), newAnalyzeCmd(o), newAlgorithmsCmd())
	return cmd
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fmsynth.yaml"
	}
	return filepath.Join(dir, "fmsynth", "config.yaml")
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
