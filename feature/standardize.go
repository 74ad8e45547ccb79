// SPDX-License-Identifier: EPL-2.0

package feature

import "gonum.org/v1/gonum/stat"

func popMeanStd(x []float64) (mean, std float64) {
	return stat.PopMeanStdDev(x, nil)
}

// Standardize rescales x in place to (x - mean) / (std + eps), using the
// population mean and standard deviation of x itself. A constant grid
// becomes all zeros.
//
// The statistics are per input, not stored training statistics. The model
// only works if it was trained on features standardized exactly this way,
// with the same eps; nothing here can detect a mismatch.
func Standardize(x []float64, eps float64) {
	if len(x) == 0 {
		return
	}

	mean, std := popMeanStd(x)
	scale := std + eps
	for i, v := range x {
		x[i] = (v - mean) / scale
	}
}
