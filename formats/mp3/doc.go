// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always emits interleaved 16-bit stereo, so every source reports two
// channels regardless of the file's channel mode. Samples are scaled to
// [-1, 1).
//
//	f, _ := os.Open("speech.mp3")
//	defer f.Close()
//	src, err := mp3.Decoder{}.Decode(f)
package mp3
