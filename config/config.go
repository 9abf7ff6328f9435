// Package config loads the synthesizer's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/gordonklaus/fm"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	SampleRate      float64 `yaml:"sampleRate" validate:"gte=0,lte=384000"`
	FramesPerBuffer int     `yaml:"framesPerBuffer" validate:"gte=0,lte=8192"`
	Channels        int     `yaml:"channels" validate:"gte=1,lte=8"`
	Backend         string  `yaml:"backend" validate:"oneof=portaudio oto headless"`
	QueueSize       int     `yaml:"queueSize" validate:"gte=1,lte=4096"`

	Algorithm string           `yaml:"algorithm" validate:"required"`
	Operators []OperatorConfig `yaml:"operators,omitempty" validate:"max=4,dive"`
	Routing   [][]float64      `yaml:"routing,omitempty" validate:"omitempty,len=4,dive,len=4"`
	Mix       []float64        `yaml:"mix,omitempty" validate:"omitempty,len=4"`
	Scale     *float64         `yaml:"scale,omitempty" validate:"omitempty,gt=0"`

	ControlAddr string `yaml:"controlAddr,omitempty" validate:"omitempty,hostname_port"`
	MetricsAddr string `yaml:"metricsAddr,omitempty" validate:"omitempty,hostname_port"`
	Watch       bool   `yaml:"watch"`
}

// OperatorConfig overrides one operator of the chosen algorithm.  Amplitude
// and TotalLevel are alternatives; TotalLevel wins if both are set.
type OperatorConfig struct {
	Ratio      *float64 `yaml:"ratio,omitempty" validate:"omitempty,gt=0"`
	Amplitude  *float64 `yaml:"amplitude,omitempty" validate:"omitempty,gte=0"`
	TotalLevel *int     `yaml:"totalLevel,omitempty" validate:"omitempty,gte=0,lte=127"`
}

func Default() Config {
	return Config{
		SampleRate:      48000,
		FramesPerBuffer: 256,
		Channels:        2,
		Backend:         "portaudio",
		QueueSize:       fm.DefaultQueueSize,
		Algorithm:       fm.Canonical.Name,
		ControlAddr:     "localhost:8080",
		MetricsAddr:     "localhost:9090",
		Watch:           true,
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.BuildAlgorithm(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// BuildAlgorithm looks up the named algorithm and applies the overrides.
func (c *Config) BuildAlgorithm() (fm.Algorithm, error) {
	a, err := fm.LookupAlgorithm(c.Algorithm)
	if err != nil {
		return a, err
	}
	for i, o := range c.Operators {
		if o.Ratio != nil {
			a.Ratios[i] = *o.Ratio
		}
		if o.Amplitude != nil {
			a.Amplitudes[i] = *o.Amplitude
		}
		if o.TotalLevel != nil {
			a.Amplitudes[i] = fm.TotalLevelAmplitude(*o.TotalLevel)
		}
	}
	if c.Routing != nil {
		a.Name = "custom"
		for i, row := range c.Routing {
			copy(a.Routing[i][:], row)
		}
	}
	if c.Mix != nil {
		copy(a.Mix[:], c.Mix)
	}
	if c.Scale != nil {
		a.Scale = *c.Scale
	}
	return a, a.Validate()
}

// Params is the stream description for a backend running at sampleRate.
func (c *Config) Params(sampleRate float64) fm.Params {
	return fm.Params{SampleRate: sampleRate, BufferSize: c.FramesPerBuffer}
}

// Load reads the config at path, writing the defaults there first if the
// file does not exist.  Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("can't write default config: %w", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
