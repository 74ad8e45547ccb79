// SPDX-License-Identifier: EPL-2.0

// Package loader reads an audio file of any supported container into a mono
// feature.Waveform at a fixed sample rate.
//
// The container is chosen from the file's magic bytes, falling back to its
// extension. Decoded audio is downmixed by averaging channels, then
// resampled (band-limited soxr by default), then read fully:
//
//	l := loader.New(22050)
//	w, err := l.Load("clip.mp3")
//	var de *loader.DecodeError
//	if errors.As(err, &de) {
//		// missing, unreadable, unsupported or corrupt input
//	}
package loader
