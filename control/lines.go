package control

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gordonklaus/fm"
)

// ErrQuit is returned by ScanLines when the input asks to stop.
var ErrQuit = errors.New("quit")

// A Sink accepts commands for the voice.  host.Stream and fm.Synth are
// sinks.
type Sink interface {
	Send(fm.Command) bool
}

// ParseLine understands "on 60", "off 60", a bare key (note on), and JSON
// control records.
func ParseLine(line string) ([]fm.Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if strings.HasPrefix(line, "{") {
		return fm.ParseMessage([]byte(line))
	}

	fields := strings.Fields(line)
	kind := fm.NoteOn
	switch strings.ToLower(fields[0]) {
	case "on":
		fields = fields[1:]
	case "off":
		kind = fm.NoteOff
		fields = fields[1:]
	case "q", "quit", "exit":
		return nil, ErrQuit
	}
	if len(fields) != 1 {
		return nil, fmt.Errorf("want [on|off] KEY, got %q", line)
	}
	key, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("bad key %q: %w", fields[0], err)
	}
	if key < fm.MinKey || key > fm.MaxKey {
		return nil, fmt.Errorf("%w: %d", fm.ErrKeyRange, key)
	}
	return []fm.Command{{Kind: kind, Key: key}}, nil
}

// ScanLines reads commands from r, one per line, until EOF, a quit line, or
// ctx is done.  Lines that do not parse are logged and skipped.
func ScanLines(ctx context.Context, r io.Reader, sink Sink, logger *slog.Logger) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		s := bufio.NewScanner(r)
		for s.Scan() {
			select {
			case lines <- bytes.Clone(s.Bytes()):
			case <-ctx.Done():
				return
			}
		}
		scanErr <- s.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			return err
		case line := <-lines:
			cmds, err := ParseLine(string(line))
			if errors.Is(err, ErrQuit) {
				return err
			}
			if err != nil {
				logger.Info("ignoring input line", "line", string(line), "error", err)
				continue
			}
			send(sink, cmds, logger)
		}
	}
}

func send(sink Sink, cmds []fm.Command, logger *slog.Logger) int {
	n := 0
	for _, c := range cmds {
		if !sink.Send(c) {
			logger.Warn("command queue full, dropping command", "command", c)
			continue
		}
		logger.Debug("queued command", "command", c)
		n++
	}
	return n
}
