// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
// Full scale maps to 32767 so positive peaks never wrap around.
func Float32ToInt16(x float32) int16 {
	switch {
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	}

	return int16(x * 32767.0)
}

// Int16ToFloat32 is the decoding counterpart used by the PCM readers.
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}
