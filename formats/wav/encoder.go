// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/serinfer/utils"
)

// WriteWAV16 writes interleaved samples as a 16-bit PCM WAV. Samples
// outside [-1, 1] are clamped.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []float32) error {
	if channels < 1 || len(samples)%channels != 0 {
		return fmt.Errorf("wav: %d samples do not fill %d channels", len(samples), channels)
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(utils.Float32ToInt16(s))
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, formatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: finalize header: %w", err)
	}

	return nil
}

// WriteFile creates path and writes samples into it with WriteWAV16.
func WriteFile(path string, sampleRate, channels int, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	if err := WriteWAV16(f, sampleRate, channels, samples); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
