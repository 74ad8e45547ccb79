// SPDX-License-Identifier: EPL-2.0

package utils

// FullScale returns the divisor that maps signed integer PCM of the given
// bit depth into [-1, 1). Unknown depths fall back to 16-bit.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// IntsToFloat32 converts integer PCM into dst using the full scale of
// bitDepth. It converts min(len(dst), len(src)) values and returns the count.
func IntsToFloat32(dst []float32, src []int, bitDepth int) int {
	n := min(len(dst), len(src))
	inv := 1 / FullScale(bitDepth)
	for i := range n {
		dst[i] = float32(src[i]) * inv
	}

	return n
}
