// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"testing"
)

func TestPowerToDB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    []float64
		topDB float64
		want  []float64
	}{
		{"relative to max", []float64{1, 0.1, 0.01}, 80, []float64{0, -10, -20}},
		{"scaled reference", []float64{100, 10}, 80, []float64{0, -10}},
		{"clamped", []float64{1, 1e-12, 0}, 80, []float64{0, -80, -80}},
		{"unclamped", []float64{1, 1e-12}, 0, []float64{0, -100}},
		{"all zero", []float64{0, 0, 0}, 80, []float64{0, 0, 0}},
		{"empty", nil, 80, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := append([]float64(nil), tt.in...)
			PowerToDB(got, 1e-10, tt.topDB)

			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("PowerToDB()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAmplitudeToDB(t *testing.T) {
	t.Parallel()

	got := AmplitudeToDB([]float64{0.5, 0.05, 0}, 1e-5)
	want := []float64{0, -20, 20*math.Log10(1e-5) - 20*math.Log10(0.5)}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("AmplitudeToDB()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if len(AmplitudeToDB(nil, 1e-5)) != 0 {
		t.Error("AmplitudeToDB(nil) should be empty")
	}
}
