// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ik5/serinfer/audio"
	"github.com/ik5/serinfer/feature"
	"github.com/ik5/serinfer/formats/aiff"
	"github.com/ik5/serinfer/formats/mp3"
	"github.com/ik5/serinfer/formats/vorbis"
	"github.com/ik5/serinfer/formats/wav"
)

const defaultBufSize = 4096

// DefaultRegistry returns a registry with every bundled decoder and the
// usual file extensions as aliases.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, "wave")
	reg.Register("aiff", aiff.Decoder{}, "aif", "aifc")
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{}, "oga", "vorbis")
	return reg
}

// Loader decodes files to mono waveforms at one sample rate.
type Loader struct {
	rate     int
	registry *audio.Registry
	method   audio.ResampleMethod
	bufSize  int
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry replaces the decoders the loader can use.
func WithRegistry(reg *audio.Registry) Option {
	return func(l *Loader) { l.registry = reg }
}

// WithResampler selects the sample rate converter. The default is
// audio.ResampleSoxr.
func WithResampler(m audio.ResampleMethod) Option {
	return func(l *Loader) { l.method = m }
}

// WithBufferSize sets the read chunk in samples.
func WithBufferSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.bufSize = n
		}
	}
}

// WithLogger sets the logger for decode diagnostics. nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns a loader producing audio at rate Hz.
func New(rate int, opts ...Option) *Loader {
	l := &Loader{
		rate:     rate,
		registry: DefaultRegistry(),
		method:   audio.ResampleSoxr,
		bufSize:  defaultBufSize,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Loader) SampleRate() int { return l.rate }

// Load reads path fully and returns it as mono audio at the loader's rate.
// Every failure is a *DecodeError.
func (l *Loader) Load(path string) (feature.Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return feature.Waveform{}, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	format, dec, err := l.detect(f, path)
	if err != nil {
		return feature.Waveform{}, &DecodeError{Path: path, Err: err}
	}

	src, err := dec.Decode(f)
	if err != nil {
		return feature.Waveform{}, &DecodeError{Path: path, Err: err}
	}
	defer src.Close()

	l.logger.Debug("decoding audio",
		"path", path,
		"format", format,
		"sample_rate", src.SampleRate(),
		"channels", src.Channels(),
	)

	samples, err := l.toMono(src)
	if err != nil {
		return feature.Waveform{}, &DecodeError{Path: path, Err: err}
	}

	w := feature.Waveform{Samples: samples, Rate: l.rate}
	l.logger.Debug("audio loaded", "path", path, "samples", len(samples), "duration", w.Duration())

	return w, nil
}

// detect picks a decoder by magic bytes, then by extension, and rewinds f.
func (l *Loader) detect(f io.ReadSeeker, path string) (string, audio.Decoder, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", nil, fmt.Errorf("rewind: %w", err)
	}

	if name := Sniff(header[:n]); name != "" {
		if format, dec, ok := l.registry.Lookup(name); ok {
			return format, dec, nil
		}
	}

	ext := filepath.Ext(path)
	if ext != "" {
		if format, dec, ok := l.registry.Lookup(ext); ok {
			return format, dec, nil
		}
	}

	return "", nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedFormat, ext, l.registry.Formats())
}

// toMono mixes down before resampling so only one channel is converted.
func (l *Loader) toMono(src audio.Source) ([]float32, error) {
	var s audio.Source = src
	if src.Channels() != 1 {
		s = audio.NewMonoMixer(src)
	}

	s, err := audio.NewResamplerFor(s, l.rate, l.method)
	if err != nil {
		return nil, err
	}

	return audio.ReadAll(s, l.bufSize)
}
