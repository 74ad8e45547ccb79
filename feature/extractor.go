// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"fmt"

	"github.com/ik5/serinfer/dsp"
	"gonum.org/v1/gonum/mat"
)

// Extractor computes model input tensors for one set of Params. It caches
// the window, FFT plan and mel filterbank and is not safe for concurrent
// use.
type Extractor struct {
	params     Params
	stft       *dsp.STFT
	filterbank *mat.Dense

	last Stats
}

// NewExtractor validates p and precomputes the STFT and mel filterbank.
func NewExtractor(p Params) (*Extractor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	stft, err := dsp.NewSTFT(p.NFFT, p.HopLength)
	if err != nil {
		return nil, err
	}

	fb, err := dsp.MelFilterbank(p.SampleRate, p.NFFT, p.NMels, 0, float64(p.SampleRate)/2)
	if err != nil {
		return nil, err
	}

	return &Extractor{params: p, stft: stft, filterbank: fb}, nil
}

func (e *Extractor) Params() Params { return e.params }

// LastStats describes the dB grid of the most recent Extract call, before
// standardization.
func (e *Extractor) LastStats() Stats { return e.last }

// MelSpectrogram returns the power mel spectrogram of y as an
// NMels x (1 + len(y)/HopLength) matrix.
func (e *Extractor) MelSpectrogram(y []float32) *mat.Dense {
	power := e.stft.Power(y)

	var mel mat.Dense
	mel.Mul(e.filterbank, power)
	return &mel
}

// FixFrames returns m with exactly frames columns: trailing columns are
// dropped, or zero columns appended. Frames are never center-cropped.
func FixFrames(m *mat.Dense, frames int) *mat.Dense {
	rows, cols := m.Dims()
	if cols == frames {
		return m
	}

	out := mat.NewDense(rows, frames, nil)
	keep := min(cols, frames)
	out.Slice(0, rows, 0, keep).(*mat.Dense).Copy(m.Slice(0, rows, 0, keep))
	return out
}

// LogMel runs the spectral half of the chain on an already fitted signal:
// mel spectrogram, frame fix-up, then dB relative to the grid maximum.
// The returned slice is row-major NMels x MaxFrames.
func (e *Extractor) LogMel(y []float32) []float64 {
	mel := FixFrames(e.MelSpectrogram(y), e.params.MaxFrames())

	rows, cols := mel.Dims()
	grid := make([]float64, rows*cols)
	for r := range rows {
		mat.Row(grid[r*cols:(r+1)*cols], r, mel)
	}

	dsp.PowerToDB(grid, e.params.Amin, e.params.TopDB)
	return grid
}

// Extract runs the whole chain on w and returns a tensor of shape
// Params.Shape(). w must already be at Params.SampleRate.
func (e *Extractor) Extract(w Waveform) (*Tensor, error) {
	if w.Rate != e.params.SampleRate {
		return nil, fmt.Errorf("%w: got %d Hz, want %d Hz", ErrSampleRateMismatch, w.Rate, e.params.SampleRate)
	}

	y, err := Trim(w.Samples, e.params.TrimTopDB, e.params.TrimAmin, e.params.TrimFrameLength, e.params.TrimHopLength)
	if err != nil {
		return nil, fmt.Errorf("feature: trim: %w", err)
	}
	y = PeakNormalize(y)
	y = FitDuration(y, e.params.MaxSamples())

	grid := e.LogMel(y)
	e.last = statsOf(grid)
	Standardize(grid, e.params.Epsilon)

	data := make([]float32, len(grid))
	for i, v := range grid {
		data[i] = float32(v)
	}

	return NewTensor(e.params.Shape(), data)
}
