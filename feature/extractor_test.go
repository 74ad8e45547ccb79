// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/ik5/serinfer/internal/audiotest"
	"gonum.org/v1/gonum/mat"
)

func newExtractor(t testing.TB) *Extractor {
	t.Helper()

	e, err := NewExtractor(DefaultParams())
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	return e
}

func TestNewExtractor_InvalidParams(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.NMels = 0
	if _, err := NewExtractor(p); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("NewExtractor() error = %v, want ErrInvalidParams", err)
	}
}

func TestExtractor_MelSpectrogramShape(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)

	mel := e.MelSpectrogram(audiotest.Sine(66150, 22050, 440, 0.5))
	rows, cols := mel.Dims()
	if rows != 128 || cols != 130 {
		t.Errorf("dims = %dx%d, want 128x130", rows, cols)
	}
}

func TestFixFrames(t *testing.T) {
	t.Parallel()

	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	tests := []struct {
		frames int
		want   []float64
	}{
		{3, []float64{1, 2, 3, 4, 5, 6}},
		{5, []float64{1, 2, 3, 0, 0, 4, 5, 6, 0, 0}},
		{2, []float64{1, 2, 4, 5}},
	}

	for _, tt := range tests {
		got := FixFrames(m, tt.frames)
		r, c := got.Dims()
		if r != 2 || c != tt.frames {
			t.Fatalf("FixFrames(%d) dims = %dx%d", tt.frames, r, c)
		}
		flat := make([]float64, 0, r*c)
		for i := range r {
			flat = append(flat, mat.Row(nil, i, got)...)
		}
		if !slices.Equal(flat, tt.want) {
			t.Errorf("FixFrames(%d) = %v, want %v", tt.frames, flat, tt.want)
		}
	}
}

func TestExtractor_LogMelRange(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	grid := e.LogMel(audiotest.Sine(66150, 22050, 440, 0.5))

	if len(grid) != 128*130 {
		t.Fatalf("len = %d, want %d", len(grid), 128*130)
	}

	peak, floor := math.Inf(-1), math.Inf(1)
	for _, v := range grid {
		peak = max(peak, v)
		floor = min(floor, v)
	}
	if peak != 0 {
		t.Errorf("max dB = %v, want 0", peak)
	}
	if floor < -80 {
		t.Errorf("min dB = %v, want >= -80", floor)
	}
}

func checkTensor(t *testing.T, tensor *Tensor) {
	t.Helper()

	if !slices.Equal(tensor.Shape, []int{1, 128, 130, 1}) {
		t.Fatalf("shape = %v, want [1 128 130 1]", tensor.Shape)
	}
	if tensor.Len() != 128*130 {
		t.Fatalf("len = %d", tensor.Len())
	}

	var sum, sq float64
	for i, v := range tensor.Data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("value %d is not finite: %v", i, v)
		}
		sum += float64(v)
	}
	mean := sum / float64(tensor.Len())
	for _, v := range tensor.Data {
		sq += (float64(v) - mean) * (float64(v) - mean)
	}
	std := math.Sqrt(sq / float64(tensor.Len()))

	if math.Abs(mean) > 1e-4 {
		t.Errorf("mean = %v, want ~0", mean)
	}
	if math.Abs(std-1) > 1e-3 {
		t.Errorf("std = %v, want ~1", std)
	}
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seconds float64
	}{
		{"shorter than three seconds", 1.2},
		{"exactly three seconds", 3},
		{"longer than three seconds", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := int(tt.seconds * 22050)
			w := Waveform{Samples: audiotest.Sine(n, 22050, 330, 0.4), Rate: 22050}

			tensor, err := newExtractor(t).Extract(w)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			checkTensor(t, tensor)
		})
	}
}

func TestExtractor_Deterministic(t *testing.T) {
	t.Parallel()

	w := Waveform{Samples: audiotest.Sine(40000, 22050, 523.25, 0.7), Rate: 22050}
	e := newExtractor(t)

	a, err := e.Extract(w)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newExtractor(t).Extract(w)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(a.Data, b.Data) {
		t.Error("Extract() is not deterministic")
	}
}

func TestExtractor_SilenceIsZero(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	tensor, err := e.Extract(Waveform{Samples: make([]float32, 22050), Rate: 22050})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for i, v := range tensor.Data {
		if v != 0 {
			t.Fatalf("value %d = %v, want 0", i, v)
		}
	}
	if s := e.LastStats(); s.Std != 0 || s.Max != 0 {
		t.Errorf("LastStats() = %+v, want flat grid", s)
	}
}

func TestExtractor_SampleRateMismatch(t *testing.T) {
	t.Parallel()

	_, err := newExtractor(t).Extract(Waveform{Samples: make([]float32, 100), Rate: 16000})
	if !errors.Is(err, ErrSampleRateMismatch) {
		t.Errorf("Extract() error = %v, want ErrSampleRateMismatch", err)
	}
}

func BenchmarkExtractor_Extract(b *testing.B) {
	e := newExtractor(b)
	w := Waveform{Samples: audiotest.Sine(66150, 22050, 440, 0.5), Rate: 22050}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := e.Extract(w); err != nil {
			b.Fatal(err)
		}
	}
}
