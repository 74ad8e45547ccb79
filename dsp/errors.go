// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var (
	ErrInvalidFFTSize = errors.New("dsp: FFT size must be a positive even number")
	ErrInvalidHop     = errors.New("dsp: hop length must be positive")
	ErrInvalidMelBand = errors.New("dsp: invalid mel band")
)
