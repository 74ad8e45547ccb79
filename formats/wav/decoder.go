// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/serinfer/audio"
	"github.com/ik5/serinfer/utils"
)

const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// pcmReader is the part of gowav.Decoder the source uses, for testing.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	format     *goaudio.Format
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format,
			SourceBitDepth: s.bitDepth,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("wav: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	// 8-bit WAV is unsigned with silence at 128.
	if s.bitDepth == 8 {
		for i := range n {
			s.intBuf.Data[i] -= 128
		}
	}
	utils.IntsToFloat32(dst, s.intBuf.Data[:n], s.bitDepth)

	// A short read means the data chunk is exhausted.
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

// floatSource reads IEEE float samples straight from the data chunk;
// go-audio only decodes integer PCM.
type floatSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	width      int // bytes per sample
	raw        []byte
	done       bool
}

func (s *floatSource) SampleRate() int { return s.sampleRate }
func (s *floatSource) Channels() int   { return s.channels }
func (s *floatSource) BufSize() int    { return 4096 }
func (s *floatSource) Close() error    { return nil }

func (s *floatSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	size := len(dst) * s.width
	if cap(s.raw) < size {
		s.raw = make([]byte, size)
	}

	m, err := io.ReadFull(s.r, s.raw[:size])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("wav: %w", err)
	}

	n := m / s.width
	for i := range n {
		b := s.raw[i*s.width:]
		if s.width == 8 {
			dst[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		} else {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b))
		}
	}

	if err != nil {
		s.done = true
		if n == 0 {
			return 0, io.EOF
		}
		return n, io.EOF
	}
	return n, nil
}

// Decoder decodes integer PCM WAV (8, 16, 24 or 32 bit) and IEEE float WAV
// (32 or 64 bit), including WAVE_FORMAT_EXTENSIBLE integer files and files
// with extra chunks before the data.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek between chunks.
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	bitDepth := int(dec.BitDepth)

	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
		switch bitDepth {
		case 8, 16, 24, 32:
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
		}

		return &source{
			dec:        dec,
			format:     dec.Format(),
			sampleRate: int(dec.SampleRate),
			channels:   int(dec.NumChans),
			bitDepth:   bitDepth,
		}, nil

	case formatFloat:
		if bitDepth != 32 && bitDepth != 64 {
			return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedBitDepth, bitDepth)
		}
		if err := dec.FwdToPCM(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}

		return &floatSource{
			r:          io.LimitReader(dec.PCMChunk.R, int64(dec.PCMChunk.Size)),
			sampleRate: int(dec.SampleRate),
			channels:   int(dec.NumChans),
			width:      bitDepth / 8,
		}, nil

	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}
}
