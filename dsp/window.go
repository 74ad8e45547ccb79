// SPDX-License-Identifier: EPL-2.0

package dsp

import "gonum.org/v1/gonum/dsp/window"

// PeriodicHann returns the n-point periodic Hann window,
// w[k] = 0.5 - 0.5*cos(2*pi*k/n). It is the symmetric window of length n+1
// with its last point dropped.
func PeriodicHann(n int) []float64 {
	if n <= 0 {
		return nil
	}

	w := make([]float64, n+1)
	for i := range w {
		w[i] = 1
	}
	return window.Hann(w)[:n]
}
