// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PowerToDB converts power values to decibels in place, relative to their
// own maximum: 10*log10(max(amin, s)) - 10*log10(max(amin, max)). When
// topDB > 0 the result is clamped below at (peak - topDB). The loudest
// value maps to 0 dB.
func PowerToDB(s []float64, amin, topDB float64) {
	if len(s) == 0 {
		return
	}

	ref := 10 * math.Log10(max(amin, floats.Max(s)))
	for i, v := range s {
		s[i] = 10*math.Log10(max(amin, v)) - ref
	}

	if topDB > 0 {
		floor := floats.Max(s) - topDB
		for i, v := range s {
			s[i] = max(v, floor)
		}
	}
}

// AmplitudeToDB returns 20*log10(max(amin, a)) relative to the largest
// amplitude, without clamping.
func AmplitudeToDB(a []float64, amin float64) []float64 {
	out := make([]float64, len(a))
	if len(a) == 0 {
		return out
	}

	ref := 20 * math.Log10(max(amin, floats.Max(a)))
	for i, v := range a {
		out[i] = 20*math.Log10(max(amin, v)) - ref
	}
	return out
}
