// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
	"gonum.org/v1/gonum/floats"
)

const soxrChunk = 4096

// SoxrResampler converts the sample rate of src with a band-limited,
// soxr-style polyphase filter (pure Go, no cgo). It is the loader's default
// converter.
//
// Output is aligned with the input: the filter delay is removed, the tail
// is flushed at end of stream, and n input frames yield exactly
// ceil(n*dstRate/srcRate) output frames.
type SoxrResampler struct {
	src      Source
	srcRate  int
	dstRate  int
	channels int

	// one mono converter per channel; the library only flushes channel 0
	rs []resampling.Resampler

	in   []float32
	conv [][]float64

	pending []float32 // aligned interleaved output
	skip    int       // leading output frames still to drop
	read    int       // input frames consumed
	emitted int       // output frames returned
	eof     bool
}

// NewSoxrResampler wraps src so it produces dstRate audio. It measures the
// converter delay once up front.
func NewSoxrResampler(src Source, dstRate int) (*SoxrResampler, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, ErrInvalidChannels
	}
	if dstRate <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidSampleRate
	}

	s := &SoxrResampler{
		src:      src,
		srcRate:  src.SampleRate(),
		dstRate:  dstRate,
		channels: channels,
		rs:       make([]resampling.Resampler, channels),
		in:       make([]float32, soxrChunk*channels),
		conv:     make([][]float64, channels),
	}

	for c := range channels {
		rs, err := newSoxr(s.srcRate, dstRate)
		if err != nil {
			return nil, err
		}
		s.rs[c] = rs
		s.conv[c] = make([]float64, soxrChunk)
	}

	delay, err := soxrDelay(s.srcRate, dstRate)
	if err != nil {
		return nil, err
	}
	if delay > 0 {
		s.skip = delay
	} else {
		s.pending = make([]float32, -delay*channels)
	}

	return s, nil
}

func newSoxr(srcRate, dstRate int) (resampling.Resampler, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("soxr resampler: %w", err)
	}
	return rs, nil
}

// soxrDelay measures how many output frames late (positive) or early
// (negative) the converter places its input. An impulse is fed at an input
// frame that maps onto a whole output frame and the peak is located.
func soxrDelay(srcRate, dstRate int) (int, error) {
	g := gcd(srcRate, dstRate)
	step := srcRate / g
	k := max(1, (soxrChunk+step-1)/step)
	at := step * k
	want := dstRate / g * k

	rs, err := newSoxr(srcRate, dstRate)
	if err != nil {
		return 0, err
	}

	signal := make([]float64, 2*at+soxrChunk)
	signal[at] = 1

	var out []float64
	for off := 0; off < len(signal); off += soxrChunk {
		chunk, err := rs.Process(signal[off:min(off+soxrChunk, len(signal))])
		if err != nil {
			return 0, fmt.Errorf("soxr resampler: %w", err)
		}
		out = append(out, chunk...)
	}
	tail, err := rs.Flush()
	if err != nil {
		return 0, fmt.Errorf("soxr resampler: %w", err)
	}
	out = append(out, tail...)

	if len(out) == 0 {
		return 0, nil
	}
	for i, v := range out {
		out[i] = math.Abs(v)
	}
	return floats.MaxIdx(out) - want, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func (s *SoxrResampler) SampleRate() int { return s.dstRate }
func (s *SoxrResampler) Channels() int   { return s.channels }
func (s *SoxrResampler) BufSize() int    { return s.src.BufSize() }

func (s *SoxrResampler) Close() error {
	if err := s.src.Close(); err != nil {
		return fmt.Errorf("soxr resampler: %w", err)
	}
	return nil
}

// limit is the number of output frames owed for the input read so far.
func (s *SoxrResampler) limit() int {
	return (s.read*s.dstRate + s.srcRate - 1) / s.srcRate
}

// ready is how many pending frames may be returned now.
func (s *SoxrResampler) ready() int {
	return min(len(s.pending)/s.channels, s.limit()-s.emitted)
}

// push interleaves converted channels into pending, dropping the filter
// delay at the start of the stream.
func (s *SoxrResampler) push(out [][]float64) {
	frames := len(out[0])
	for _, ch := range out[1:] {
		frames = min(frames, len(ch))
	}

	drop := min(s.skip, frames)
	s.skip -= drop

	for f := drop; f < frames; f++ {
		for c := range s.channels {
			s.pending = append(s.pending, float32(out[c][f]))
		}
	}
}

func (s *SoxrResampler) pull() error {
	n, err := s.src.ReadSamples(s.in)
	n -= n % s.channels

	if n > 0 {
		frames := n / s.channels
		s.read += frames

		out := make([][]float64, s.channels)
		for c := range s.channels {
			conv := s.conv[c][:frames]
			for f := range conv {
				conv[f] = float64(s.in[f*s.channels+c])
			}

			res, perr := s.rs[c].Process(conv)
			if perr != nil {
				return fmt.Errorf("soxr resampler: %w", perr)
			}
			out[c] = res
		}
		s.push(out)
	}

	if err == io.EOF {
		return s.finish()
	}
	if err != nil {
		return fmt.Errorf("soxr resampler: %w", err)
	}
	return nil
}

// finish flushes the filter tails and zero pads up to the exact length.
func (s *SoxrResampler) finish() error {
	s.eof = true

	out := make([][]float64, s.channels)
	for c, rs := range s.rs {
		tail, err := rs.Flush()
		if err != nil {
			return fmt.Errorf("soxr resampler: %w", err)
		}
		out[c] = tail
	}
	s.push(out)

	if missing := s.limit() - s.emitted - len(s.pending)/s.channels; missing > 0 {
		s.pending = append(s.pending, make([]float32, missing*s.channels)...)
	}
	return nil
}

// ReadSamples drains converted samples into dst. dst length should be a
// multiple of the channel count.
func (s *SoxrResampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	want := len(dst) / s.channels
	for s.ready() < want && !s.eof {
		if err := s.pull(); err != nil {
			return 0, err
		}
	}

	frames := min(want, s.ready())
	n := copy(dst, s.pending[:frames*s.channels])
	s.pending = s.pending[n:]
	s.emitted += frames

	if frames == 0 && s.eof {
		return 0, io.EOF
	}
	return n, nil
}
