// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ReadAll drains src and returns every sample it produced, interleaved.
// bufSize is the read chunk in samples; it is rounded down to whole frames.
// Reaching io.EOF is not an error.
func ReadAll(src Source, bufSize int) ([]float32, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, ErrInvalidChannels
	}

	bufSize -= bufSize % channels
	if bufSize <= 0 {
		bufSize = 4096 * channels
	}

	buf := make([]float32, bufSize)
	out := make([]float32, 0, src.SampleRate()*channels)

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}
	}
}
