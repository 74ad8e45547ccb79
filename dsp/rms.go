// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

// FrameRMS returns the root mean square of centered frames of y. Frames are
// frameLength long, hop apart, and the signal is zero padded by
// frameLength/2 on both sides, giving 1 + len(y)/hop frames.
func FrameRMS(y []float32, frameLength, hop int) ([]float64, error) {
	if frameLength <= 0 {
		return nil, ErrInvalidFFTSize
	}
	if hop <= 0 {
		return nil, ErrInvalidHop
	}

	pad := frameLength / 2
	frames := 1 + len(y)/hop
	out := make([]float64, frames)

	for t := range out {
		start := t*hop - pad
		lo := max(start, 0)
		hi := min(start+frameLength, len(y))

		var sum float64
		for _, v := range y[lo:max(lo, hi)] {
			sum += float64(v) * float64(v)
		}
		out[t] = math.Sqrt(sum / float64(frameLength))
	}

	return out, nil
}
