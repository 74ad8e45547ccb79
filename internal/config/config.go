// SPDX-License-Identifier: EPL-2.0

// Package config holds the serinfer command's settings. Values come from
// Default, then an optional YAML file, then command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level. Unknown values are info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Format selects how a prediction is printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func (f Format) IsValid() bool {
	return f == FormatText || f == FormatJSON || f == FormatYAML
}

// ValidBackends lists the classifier backends the command knows.
var ValidBackends = []string{"onnxrt", "gorgonnx", "tfserving"}

// ValidResamplers lists the sample rate converters.
var ValidResamplers = []string{"soxr", "cubic"}

// Config is the command configuration file.
type Config struct {
	LogLevel LogLevel     `yaml:"log_level"`
	Model    ModelConfig  `yaml:"model"`
	Audio    AudioConfig  `yaml:"audio"`
	Output   OutputConfig `yaml:"output"`
}

type ModelConfig struct {
	Backend string `yaml:"backend"`

	// Path is the model artifact for local backends.
	Path string `yaml:"path"`

	// Metadata is the companion YAML file. Empty means Path with its
	// extension replaced by .yaml.
	Metadata string `yaml:"metadata"`

	// ORTLibrary is the onnxruntime shared library (onnxrt only).
	ORTLibrary string `yaml:"ort_library"`

	// Endpoint, Name and Timeout address a TensorFlow Serving instance.
	Endpoint string        `yaml:"endpoint"`
	Name     string        `yaml:"name"`
	Timeout  time.Duration `yaml:"timeout"`
}

type AudioConfig struct {
	Resampler  string `yaml:"resampler"`
	BufferSize int    `yaml:"buffer_size"`
}

type OutputConfig struct {
	Format Format `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel: LogWarn,
		Model: ModelConfig{
			Backend: "onnxrt",
			Path:    "models/ser_model.onnx",
			Name:    "ser_model",
			Timeout: 30 * time.Second,
		},
		Audio: AudioConfig{
			Resampler:  "soxr",
			BufferSize: 4096,
		},
		Output: OutputConfig{Format: FormatText},
	}
}

// Load reads the YAML configuration file at path and returns a validated
// Config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over Default and validates the
// result. Unknown keys are an error; an empty document yields Default.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	switch cfg.Model.Backend {
	case "onnxrt", "gorgonnx":
		if cfg.Model.Path == "" {
			errs = append(errs, fmt.Errorf("model.path is required for the %s backend", cfg.Model.Backend))
		}
	case "tfserving":
		if cfg.Model.Endpoint == "" {
			errs = append(errs, errors.New("model.endpoint is required for the tfserving backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("model.backend %q is invalid; valid values: %v", cfg.Model.Backend, ValidBackends))
	}
	if cfg.Model.Timeout < 0 {
		errs = append(errs, fmt.Errorf("model.timeout %v must not be negative", cfg.Model.Timeout))
	}

	if !slices.Contains(ValidResamplers, cfg.Audio.Resampler) {
		errs = append(errs, fmt.Errorf("audio.resampler %q is invalid; valid values: %v", cfg.Audio.Resampler, ValidResamplers))
	}
	if cfg.Audio.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("audio.buffer_size %d must not be negative", cfg.Audio.BufferSize))
	}

	if !cfg.Output.Format.IsValid() {
		errs = append(errs, fmt.Errorf("output.format %q is invalid; valid values: text, json, yaml", cfg.Output.Format))
	}

	return errors.Join(errs...)
}
