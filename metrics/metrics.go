// Package metrics exports a running voice's counters to Prometheus.
package metrics

import (
	"github.com/gordonklaus/fm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// A Source is read on every scrape.  host.Stream implements it.
type Source interface {
	Stats() fm.Stats
	Level() float64
	Pending() int
}

var (
	blocksDesc = prometheus.NewDesc("fm_blocks_rendered_total",
		"Audio blocks rendered.", nil, nil)
	samplesDesc = prometheus.NewDesc("fm_samples_rendered_total",
		"Samples rendered.", nil, nil)
	commandsDesc = prometheus.NewDesc("fm_commands_total",
		"Control commands by outcome.", []string{"outcome"}, nil)
	notesDesc = prometheus.NewDesc("fm_notes_on_total",
		"NoteOn commands applied.", nil, nil)
	nonFiniteDesc = prometheus.NewDesc("fm_nonfinite_samples_total",
		"Non-finite samples replaced with silence.", nil, nil)
	levelDesc = prometheus.NewDesc("fm_output_level",
		"RMS output level over the meter window.", nil, nil)
	pendingDesc = prometheus.NewDesc("fm_commands_pending",
		"Commands waiting for the next block.", nil, nil)
)

// Collector reads a Source at scrape time, so nothing is recorded on the
// render path.
type Collector struct {
	src Source
}

func NewCollector(src Source) *Collector { return &Collector{src: src} }

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{blocksDesc, samplesDesc, commandsDesc, notesDesc, nonFiniteDesc, levelDesc, pendingDesc} {
		ch <- d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(blocksDesc, s.Blocks)
	counter(samplesDesc, s.Samples)
	counter(commandsDesc, s.Commands, "applied")
	counter(commandsDesc, s.Dropped, "dropped")
	counter(commandsDesc, s.StaleNoteOffs, "ignored")
	counter(notesDesc, s.NotesOn)
	counter(nonFiniteDesc, s.NonFinite)
	ch <- prometheus.MustNewConstMetric(levelDesc, prometheus.GaugeValue, c.src.Level())
	ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(c.src.Pending()))
}

// NewRegistry returns a registry holding a Collector for src plus the Go
// runtime collectors.
func NewRegistry(src Source) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(NewCollector(src))
	r.MustRegister(collectors.NewGoCollector())
	return r
}
