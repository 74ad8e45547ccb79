// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives the loader is built from.
//
//   - Source: pull-based interleaved float32 PCM in [-1, 1]
//   - Decoder and Registry: format decoders keyed by name and extension
//   - MonoMixer: averages channels down to mono
//   - Resampler (cubic) and SoxrResampler (band-limited) for rate conversion
//   - ReadAll: drains a Source into memory
//
// A typical chain downmixes first and converts the rate second, so the
// resampler only has one channel to work on:
//
//	mono := audio.NewMonoMixer(src)
//	res, err := audio.NewResamplerFor(mono, 22050, audio.ResampleSoxr)
//	if err != nil {
//	    return err
//	}
//	samples, err := audio.ReadAll(res, 4096)
//
// Sources signal the end of the stream with io.EOF, possibly together with
// the final samples. Any other error is a decode or read failure.
package audio
