// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// The decoder already produces interleaved float32 samples, so the source
// hands out the library's output unchanged.
//
//	f, _ := os.Open("speech.ogg")
//	defer f.Close()
//	src, err := vorbis.Decoder{}.Decode(f)
package vorbis
