// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// PCM at 8, 16, 24 and 32 bits is supported, mono or multi-channel, at any
// sample rate. Samples are scaled by the full-scale value of the file's bit
// depth, so the output lies in [-1, 1).
//
//	f, _ := os.Open("speech.aiff")
//	defer f.Close()
//	src, err := aiff.Decoder{}.Decode(f)
//
// The go-audio decoder needs to seek. Readers that cannot seek are read
// into memory first.
package aiff
