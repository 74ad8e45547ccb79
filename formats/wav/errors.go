// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedEncoding = errors.New("only PCM and IEEE float WAV are supported")
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
)
