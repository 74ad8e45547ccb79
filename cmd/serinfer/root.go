// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/ik5/serinfer"
	"github.com/ik5/serinfer/audio"
	"github.com/ik5/serinfer/internal/config"
	"github.com/ik5/serinfer/model"
	"github.com/spf13/cobra"
)

type flags struct {
	configPath string
	verbose    bool

	logLevel   string
	backend    string
	modelPath  string
	metadata   string
	ortLib     string
	endpoint   string
	modelName  string
	timeout    time.Duration
	resampler  string
	bufferSize int
	format     string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "serinfer <audio_file>",
		Short: "Predict speaker emotion and gender from an audio file",
		Long: `serinfer runs a pretrained speech emotion recognition model on one
audio file (WAV, AIFF, MP3 or Ogg Vorbis) and prints the predicted emotion
and gender.

Settings are read from the optional --config YAML file; flags override it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
				return nil
			}

			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level()}))
			slog.SetDefault(logger)

			return predict(cmd, cfg, args[0], logger)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML config file")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log diagnostics (same as --log-level debug)")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fl.StringVarP(&f.backend, "backend", "b", "", "classifier backend: onnxrt, gorgonnx, tfserving")
	fl.StringVarP(&f.modelPath, "model", "m", "", "model artifact (default models/ser_model.onnx)")
	fl.StringVar(&f.metadata, "metadata", "", "model metadata YAML (default: model path with .yaml)")
	fl.StringVar(&f.ortLib, "ort-lib", "", "onnxruntime shared library")
	fl.StringVar(&f.endpoint, "endpoint", "", "TensorFlow Serving base URL")
	fl.StringVar(&f.modelName, "model-name", "", "TensorFlow Serving model name")
	fl.DurationVar(&f.timeout, "timeout", 0, "TensorFlow Serving request timeout")
	fl.StringVar(&f.resampler, "resampler", "", "sample rate converter: soxr, cubic")
	fl.IntVar(&f.bufferSize, "buffer-size", 0, "decode buffer in samples")
	fl.StringVarP(&f.format, "format", "f", "", "output format: text, json, yaml")

	return cmd
}

// resolve layers the config file and explicitly set flags over the
// defaults.
func (f *flags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	set := cmd.Flags().Changed
	if set("log-level") {
		cfg.LogLevel = config.LogLevel(f.logLevel)
	}
	if f.verbose {
		cfg.LogLevel = config.LogDebug
	}
	if set("backend") {
		cfg.Model.Backend = f.backend
	}
	if set("model") {
		cfg.Model.Path = f.modelPath
	}
	if set("metadata") {
		cfg.Model.Metadata = f.metadata
	}
	if set("ort-lib") {
		cfg.Model.ORTLibrary = f.ortLib
	}
	if set("endpoint") {
		cfg.Model.Endpoint = f.endpoint
	}
	if set("model-name") {
		cfg.Model.Name = f.modelName
	}
	if set("timeout") {
		cfg.Model.Timeout = f.timeout
	}
	if set("resampler") {
		cfg.Audio.Resampler = f.resampler
	}
	if set("buffer-size") {
		cfg.Audio.BufferSize = f.bufferSize
	}
	if set("format") {
		cfg.Output.Format = config.Format(f.format)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadMetadata reads the model's companion file. An explicitly named file
// must exist; the implicit one falls back to the defaults.
func loadMetadata(cfg *config.Config, logger *slog.Logger) (model.Metadata, error) {
	path := cfg.Model.Metadata
	explicit := path != ""
	if !explicit {
		path = model.MetadataPath(cfg.Model.Path)
	}

	md, err := model.LoadMetadata(path)
	switch {
	case err == nil:
		logger.Debug("model metadata loaded", "path", path)
		return md, nil
	case !explicit && errors.Is(err, fs.ErrNotExist):
		logger.Warn("model metadata not found, using built-in defaults", "path", path)
		return model.DefaultMetadata(), nil
	default:
		return model.Metadata{}, err
	}
}

func predict(cmd *cobra.Command, cfg *config.Config, path string, logger *slog.Logger) error {
	md, err := loadMetadata(cfg, logger)
	if err != nil {
		return err
	}

	c, err := serinfer.DefaultBackends().Open(cfg.Model.Backend, model.OpenConfig{
		Path:          cfg.Model.Path,
		Metadata:      md,
		SharedLibrary: cfg.Model.ORTLibrary,
		Endpoint:      cfg.Model.Endpoint,
		Name:          cfg.Model.Name,
		Timeout:       cfg.Model.Timeout,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	p, err := serinfer.New(c,
		serinfer.WithMetadata(md),
		serinfer.WithResampler(audio.ResampleMethod(cfg.Audio.Resampler)),
		serinfer.WithBufferSize(cfg.Audio.BufferSize),
		serinfer.WithLogger(logger),
	)
	if err != nil {
		c.Close()
		return err
	}
	defer p.Close()

	res, err := p.Predict(cmd.Context(), path)
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), cfg.Output.Format, path, res)
}
