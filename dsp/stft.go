// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// STFT computes centered short-time power spectra. The signal is padded with
// NFFT/2 zeros on both sides, so frame t is centered on sample t*hop and a
// signal of n samples yields 1 + n/hop frames.
//
// An STFT reuses internal buffers and must not be used concurrently.
type STFT struct {
	nfft   int
	hop    int
	window []float64
	fft    *fourier.FFT

	frame  []float64
	coeffs []complex128
}

// NewSTFT builds an STFT with a periodic Hann window of nfft samples.
func NewSTFT(nfft, hop int) (*STFT, error) {
	if nfft <= 0 || nfft%2 != 0 {
		return nil, ErrInvalidFFTSize
	}
	if hop <= 0 {
		return nil, ErrInvalidHop
	}

	return &STFT{
		nfft:   nfft,
		hop:    hop,
		window: PeriodicHann(nfft),
		fft:    fourier.NewFFT(nfft),
		frame:  make([]float64, nfft),
		coeffs: make([]complex128, nfft/2+1),
	}, nil
}

// Bins is the number of frequency rows, NFFT/2 + 1.
func (s *STFT) Bins() int { return s.nfft/2 + 1 }

// Frames is the number of columns produced for n samples.
func (s *STFT) Frames(n int) int { return 1 + n/s.hop }

// Power returns |X|^2 as a Bins x Frames(len(y)) matrix.
func (s *STFT) Power(y []float32) *mat.Dense {
	frames := s.Frames(len(y))
	bins := s.Bins()
	out := mat.NewDense(bins, frames, nil)

	pad := s.nfft / 2
	for t := range frames {
		start := t*s.hop - pad
		for k := range s.frame {
			i := start + k
			if i < 0 || i >= len(y) {
				s.frame[k] = 0
				continue
			}
			s.frame[k] = float64(y[i]) * s.window[k]
		}

		s.coeffs = s.fft.Coefficients(s.coeffs, s.frame)
		for b, c := range s.coeffs {
			out.Set(b, t, real(c)*real(c)+imag(c)*imag(c))
		}
	}

	return out
}
