// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"errors"
	"fmt"
	"math"
)

// Params are the preprocessing constants shared with training.
type Params struct {
	SampleRate int     `yaml:"sample_rate" json:"sample_rate"`
	NFFT       int     `yaml:"n_fft" json:"n_fft"`
	HopLength  int     `yaml:"hop_length" json:"hop_length"`
	NMels      int     `yaml:"n_mels" json:"n_mels"`
	Duration   float64 `yaml:"duration" json:"duration"` // seconds

	Epsilon float64 `yaml:"epsilon" json:"epsilon"`
	TopDB   float64 `yaml:"top_db" json:"top_db"`
	Amin    float64 `yaml:"amin" json:"amin"`

	TrimTopDB       float64 `yaml:"trim_top_db" json:"trim_top_db"`
	TrimFrameLength int     `yaml:"trim_frame_length" json:"trim_frame_length"`
	TrimHopLength   int     `yaml:"trim_hop_length" json:"trim_hop_length"`
	TrimAmin        float64 `yaml:"trim_amin" json:"trim_amin"` // RMS floor, independent of Amin
}

// DefaultParams returns the values the bundled emotion model was trained
// with.
func DefaultParams() Params {
	return Params{
		SampleRate: 22050,
		NFFT:       2048,
		HopLength:  512,
		NMels:      128,
		Duration:   3,

		Epsilon: 1e-6,
		TopDB:   80,
		Amin:    1e-10,

		TrimTopDB:       60,
		TrimFrameLength: 2048,
		TrimHopLength:   512,
		TrimAmin:        1e-5,
	}
}

// MaxSamples is the fitted waveform length, Duration * SampleRate.
func (p Params) MaxSamples() int {
	return int(math.Round(p.Duration * float64(p.SampleRate)))
}

// MaxFrames is the fixed spectrogram width, ceil(MaxSamples / HopLength).
func (p Params) MaxFrames() int {
	if p.HopLength <= 0 {
		return 0
	}
	return (p.MaxSamples() + p.HopLength - 1) / p.HopLength
}

// Shape is the model input shape (1, NMels, MaxFrames, 1).
func (p Params) Shape() []int {
	return []int{1, p.NMels, p.MaxFrames(), 1}
}

// Validate reports every out-of-range field, joined, wrapped in
// ErrInvalidParams.
func (p Params) Validate() error {
	var errs []error

	if p.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive, got %d", p.SampleRate))
	}
	if p.NFFT <= 0 || p.NFFT%2 != 0 {
		errs = append(errs, fmt.Errorf("n_fft must be a positive even number, got %d", p.NFFT))
	}
	if p.HopLength <= 0 {
		errs = append(errs, fmt.Errorf("hop_length must be positive, got %d", p.HopLength))
	}
	if p.NMels <= 0 {
		errs = append(errs, fmt.Errorf("n_mels must be positive, got %d", p.NMels))
	}
	if p.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %g", p.Duration))
	}
	if p.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("epsilon must be positive, got %g", p.Epsilon))
	}
	if p.TopDB < 0 {
		errs = append(errs, fmt.Errorf("top_db must not be negative, got %g", p.TopDB))
	}
	if p.Amin <= 0 {
		errs = append(errs, fmt.Errorf("amin must be positive, got %g", p.Amin))
	}
	if p.TrimTopDB <= 0 {
		errs = append(errs, fmt.Errorf("trim_top_db must be positive, got %g", p.TrimTopDB))
	}
	if p.TrimFrameLength <= 0 {
		errs = append(errs, fmt.Errorf("trim_frame_length must be positive, got %d", p.TrimFrameLength))
	}
	if p.TrimHopLength <= 0 {
		errs = append(errs, fmt.Errorf("trim_hop_length must be positive, got %d", p.TrimHopLength))
	}
	if p.TrimAmin <= 0 {
		errs = append(errs, fmt.Errorf("trim_amin must be positive, got %g", p.TrimAmin))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
	}
	return nil
}
