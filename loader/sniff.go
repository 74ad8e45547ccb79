// SPDX-License-Identifier: EPL-2.0

package loader

import "bytes"

// sniffLen is the number of leading bytes Sniff looks at.
const sniffLen = 12

// Sniff names the container of a file from its first bytes, or returns ""
// when the bytes match nothing known. Names match DefaultRegistry keys.
func Sniff(header []byte) string {
	switch {
	case len(header) >= 12 && bytes.HasPrefix(header, []byte("RIFF")) && string(header[8:12]) == "WAVE":
		return "wav"
	case len(header) >= 12 && bytes.HasPrefix(header, []byte("FORM")) &&
		(string(header[8:12]) == "AIFF" || string(header[8:12]) == "AIFC"):
		return "aiff"
	case bytes.HasPrefix(header, []byte("OggS")):
		return "ogg"
	case bytes.HasPrefix(header, []byte("ID3")):
		return "mp3"
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG audio frame sync.
		return "mp3"
	}
	return ""
}
