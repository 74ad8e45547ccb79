// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melFSp      = 200.0 / 3
	melMinLogHz = 1000.0
	melMinLog   = melMinLogHz / melFSp
)

var melLogStep = math.Log(6.4) / 27

// HzToMel converts a frequency to the Slaney mel scale.
func HzToMel(hz float64) float64 {
	if hz >= melMinLogHz {
		return melMinLog + math.Log(hz/melMinLogHz)/melLogStep
	}
	return hz / melFSp
}

// MelToHz is the inverse of HzToMel.
func MelToHz(mel float64) float64 {
	if mel >= melMinLog {
		return melMinLogHz * math.Exp(melLogStep*(mel-melMinLog))
	}
	return melFSp * mel
}

// MelFrequencies returns n frequencies evenly spaced on the mel scale
// between fmin and fmax inclusive.
func MelFrequencies(n int, fmin, fmax float64) []float64 {
	lo, hi := HzToMel(fmin), HzToMel(fmax)
	out := make([]float64, n)
	for i := range out {
		m := lo
		if n > 1 {
			m = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		out[i] = MelToHz(m)
	}
	return out
}

// MelFilterbank builds an nMels x (nfft/2+1) matrix of triangular filters
// with Slaney area normalization, so each filter has roughly constant energy
// per Hz.
func MelFilterbank(sampleRate, nfft, nMels int, fmin, fmax float64) (*mat.Dense, error) {
	if nfft <= 0 || nfft%2 != 0 {
		return nil, ErrInvalidFFTSize
	}
	if nMels <= 0 || sampleRate <= 0 || fmin < 0 || fmax <= fmin {
		return nil, fmt.Errorf("%w: %d mels over [%g, %g] Hz at %d Hz",
			ErrInvalidMelBand, nMels, fmin, fmax, sampleRate)
	}

	bins := nfft/2 + 1
	fftFreqs := make([]float64, bins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(nfft)
	}

	edges := MelFrequencies(nMels+2, fmin, fmax)
	fb := mat.NewDense(nMels, bins, nil)

	for m := range nMels {
		lower, center, upper := edges[m], edges[m+1], edges[m+2]
		enorm := 2 / (upper - lower)

		for k, f := range fftFreqs {
			rising := (f - lower) / (center - lower)
			falling := (upper - f) / (upper - center)
			if w := min(rising, falling); w > 0 {
				fb.Set(m, k, w*enorm)
			}
		}
	}

	return fb, nil
}
