// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"math"
	"time"

	"github.com/ik5/serinfer/dsp"
	"gonum.org/v1/gonum/floats"
)

// Waveform is mono audio at a known sample rate. Samples are nominally in
// [-1, 1].
type Waveform struct {
	Samples []float32
	Rate    int
}

func (w Waveform) Duration() time.Duration {
	if w.Rate <= 0 {
		return 0
	}
	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.Rate)
}

// Trim drops leading and trailing audio whose framed RMS is more than topDB
// below the loudest frame. RMS values are floored at amin before the dB
// conversion. Frames are centered, frameLength long and hop apart; the kept
// span is [first*hop, min(len, (last+1)*hop)). A silent signal has no
// quieter frame and is returned whole.
//
// The result shares memory with y.
func Trim(y []float32, topDB, amin float64, frameLength, hop int) ([]float32, error) {
	rms, err := dsp.FrameRMS(y, frameLength, hop)
	if err != nil {
		return nil, err
	}

	db := dsp.AmplitudeToDB(rms, amin)

	first, last := -1, -1
	for i, v := range db {
		if v > -topDB {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return y[:0], nil
	}

	start := min(first*hop, len(y))
	end := min((last+1)*hop, len(y))
	return y[start:end], nil
}

// smallestNormal is the smallest normal float32.
const smallestNormal = 0x1p-126

// PeakNormalize returns y scaled so its largest magnitude is exactly 1.
// Signals whose peak is zero (or too small to divide by) are copied
// unchanged.
func PeakNormalize(y []float32) []float32 {
	out := make([]float32, len(y))
	copy(out, y)

	var peak float32
	for _, v := range y {
		peak = max(peak, float32(math.Abs(float64(v))))
	}
	if peak < smallestNormal {
		return out
	}

	for i := range out {
		out[i] /= peak
	}
	return out
}

// FitDuration returns exactly n samples: y right-padded with zeros when
// short, or the centered window starting at (len(y)-n)/2 when long.
func FitDuration(y []float32, n int) []float32 {
	out := make([]float32, n)
	if len(y) <= n {
		copy(out, y)
		return out
	}

	start := (len(y) - n) / 2
	copy(out, y[start:start+n])
	return out
}

// Stats summarizes a grid, for logging.
type Stats struct {
	Mean, Std, Min, Max float64
}

func statsOf(x []float64) Stats {
	if len(x) == 0 {
		return Stats{}
	}
	mean, std := popMeanStd(x)
	return Stats{Mean: mean, Std: std, Min: floats.Min(x), Max: floats.Max(x)}
}
