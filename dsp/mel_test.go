// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestHzToMel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hz, mel float64
	}{
		{0, 0},
		{200.0 / 3, 1},
		{500, 7.5},
		{1000, 15},
		{6400, 42},
	}

	for _, tt := range tests {
		if got := HzToMel(tt.hz); math.Abs(got-tt.mel) > 1e-9 {
			t.Errorf("HzToMel(%v) = %v, want %v", tt.hz, got, tt.mel)
		}
		if got := MelToHz(tt.mel); math.Abs(got-tt.hz) > 1e-6 {
			t.Errorf("MelToHz(%v) = %v, want %v", tt.mel, got, tt.hz)
		}
	}
}

func TestMelFrequencies(t *testing.T) {
	t.Parallel()

	f := MelFrequencies(130, 0, 11025)
	if len(f) != 130 {
		t.Fatalf("len = %d, want 130", len(f))
	}
	if f[0] != 0 || math.Abs(f[129]-11025) > 1e-6 {
		t.Errorf("edges = %v..%v, want 0..11025", f[0], f[129])
	}
	for i := 1; i < len(f); i++ {
		if f[i] <= f[i-1] {
			t.Fatalf("not increasing at %d: %v <= %v", i, f[i], f[i-1])
		}
	}
}

func TestMelFilterbank(t *testing.T) {
	t.Parallel()

	fb, err := MelFilterbank(22050, 2048, 128, 0, 11025)
	if err != nil {
		t.Fatal(err)
	}

	rows, cols := fb.Dims()
	if rows != 128 || cols != 1025 {
		t.Fatalf("dims = %dx%d, want 128x1025", rows, cols)
	}

	edges := MelFrequencies(130, 0, 11025)
	binHz := 22050.0 / 2048

	for m := range rows {
		row := mat.Row(nil, m, fb)
		if floats.Min(row) < 0 {
			t.Fatalf("filter %d has negative weights", m)
		}
		if floats.Max(row) <= 0 {
			t.Fatalf("filter %d is empty", m)
		}

		// Weights live strictly inside the filter's edges.
		for k, w := range row {
			f := float64(k) * binHz
			if w > 0 && (f <= edges[m] || f >= edges[m+2]) {
				t.Fatalf("filter %d has weight at %v Hz outside (%v, %v)", m, f, edges[m], edges[m+2])
			}
		}

		// Slaney normalization: peak height is 2/(upper-lower) at most.
		if peak := floats.Max(row); peak > 2/(edges[m+2]-edges[m])+1e-12 {
			t.Errorf("filter %d peak %v exceeds area norm", m, peak)
		}
	}
}

func TestMelFilterbank_Errors(t *testing.T) {
	t.Parallel()

	if _, err := MelFilterbank(22050, 2047, 128, 0, 11025); !errors.Is(err, ErrInvalidFFTSize) {
		t.Errorf("odd nfft error = %v, want ErrInvalidFFTSize", err)
	}
	if _, err := MelFilterbank(22050, 2048, 0, 0, 11025); !errors.Is(err, ErrInvalidMelBand) {
		t.Errorf("zero mels error = %v, want ErrInvalidMelBand", err)
	}
	if _, err := MelFilterbank(22050, 2048, 128, 5000, 100); !errors.Is(err, ErrInvalidMelBand) {
		t.Errorf("inverted band error = %v, want ErrInvalidMelBand", err)
	}
}
