// SPDX-License-Identifier: EPL-2.0

// Package wav decodes PCM and IEEE float WAV files into audio.Source streams
// and writes 16-bit WAV files.
//
// Decoding is built on github.com/go-audio/wav, so files with LIST/fact
// chunks or a WAVE_FORMAT_EXTENSIBLE header decode the same as the canonical
// 44-byte layout. 8, 16, 24 and 32 bit integer samples are scaled to
// [-1, 1); 32 and 64 bit float samples are passed through.
//
//	f, _ := os.Open("speech.wav")
//	defer f.Close()
//	src, err := wav.Decoder{}.Decode(f)
//
// Writing is used for fixtures and by the fitwav example:
//
//	err := wav.WriteFile("out.wav", 22050, 1, samples)
package wav
