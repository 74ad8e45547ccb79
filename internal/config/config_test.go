// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	if err := Validate(Default()); err != nil {
		t.Fatalf("Validate(Default()) = %v", err)
	}
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	const doc = `
log_level: debug
model:
  backend: tfserving
  endpoint: http://localhost:8501
  timeout: 5s
audio:
  resampler: cubic
output:
  format: json
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.LogLevel != LogDebug {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Model.Backend != "tfserving" || cfg.Model.Endpoint != "http://localhost:8501" {
		t.Errorf("Model = %+v", cfg.Model)
	}
	if cfg.Model.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Model.Timeout)
	}
	if cfg.Audio.Resampler != "cubic" || cfg.Audio.BufferSize != 4096 {
		t.Errorf("Audio = %+v", cfg.Audio)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("Format = %q", cfg.Output.Format)
	}
	// Untouched defaults survive.
	if cfg.Model.Path != "models/ser_model.onnx" || cfg.Model.Name != "ser_model" {
		t.Errorf("defaults lost: %+v", cfg.Model)
	}
}

func TestLoadFromReader_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("empty document = %+v, want defaults", cfg)
	}
}

func TestLoadFromReader_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantMsg []string
	}{
		{"unknown key", "modle:\n  path: x\n", []string{"modle"}},
		{"bad log level", "log_level: loud\n", []string{"log_level"}},
		{"bad backend", "model:\n  backend: tflite\n", []string{"model.backend"}},
		{"local without path", "model:\n  backend: gorgonnx\n  path: \"\"\n", []string{"model.path"}},
		{"remote without endpoint", "model:\n  backend: tfserving\n", []string{"model.endpoint"}},
		{"negative timeout", "model:\n  timeout: -1s\n", []string{"model.timeout"}},
		{"bad resampler", "audio:\n  resampler: linear\n", []string{"audio.resampler"}},
		{"negative buffer", "audio:\n  buffer_size: -1\n", []string{"audio.buffer_size"}},
		{"bad format", "output:\n  format: xml\n", []string{"output.format"}},
		{
			"several at once",
			"log_level: loud\noutput:\n  format: xml\n",
			[]string{"log_level", "output.format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFromReader(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("LoadFromReader() error = nil")
			}
			for _, msg := range tt.wantMsg {
				if !strings.Contains(err.Error(), msg) {
					t.Errorf("error %q does not mention %q", err, msg)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "serinfer.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Format != FormatYAML {
		t.Errorf("Format = %q", cfg.Output.Format)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
}

func TestLogLevel_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   LogLevel
		want slog.Level
	}{
		{LogDebug, slog.LevelDebug},
		{LogInfo, slog.LevelInfo},
		{LogWarn, slog.LevelWarn},
		{LogError, slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := tt.in.Level(); got != tt.want {
			t.Errorf("%q.Level() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
