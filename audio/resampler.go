// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/serinfer/utils"
)

// ResampleMethod selects the sample rate converter used by NewResamplerFor.
type ResampleMethod string

const (
	// ResampleSoxr is the band-limited high quality converter.
	ResampleSoxr ResampleMethod = "soxr"
	// ResampleCubic is the Catmull-Rom interpolator with a one-pole
	// low-pass when downsampling.
	ResampleCubic ResampleMethod = "cubic"
)

// NewResamplerFor wraps src so it produces dstRate audio with the given
// method. A source already at dstRate is returned as is.
func NewResamplerFor(src Source, dstRate int, method ResampleMethod) (Source, error) {
	if dstRate <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if src.Channels() < 1 {
		return nil, ErrInvalidChannels
	}
	if src.SampleRate() == dstRate {
		return src, nil
	}

	switch method {
	case ResampleSoxr, "":
		return NewSoxrResampler(src, dstRate)
	case ResampleCubic:
		return NewResampler(src, dstRate), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResampler, method)
	}
}

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples; preserves channel count.
//
// Output frame j sits at source position j*srcRate/dstRate, computed in
// integers so a stream of n input frames yields exactly
// ceil(n*dstRate/srcRate) output frames. Neighbours past either end of the
// stream are clamped to the edge frame.
type Resampler struct {
	src      Source
	srcRate  int
	dstRate  int
	channels int

	// frames read so far; frame k of the stream lives at buf[(k-base)*channels]
	buf  []float32
	base int
	eof  bool
	next int // next output frame

	readBuf []float32

	// one-pole low-pass applied to the input when downsampling
	useFilter   bool
	filterAlpha float32
	filterState []float32
	primed      bool
}

// NewResampler wraps src with the cubic converter.
func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	useFilter := src.SampleRate() > dstRate

	return &Resampler{
		src:         src,
		srcRate:     src.SampleRate(),
		dstRate:     dstRate,
		channels:    channels,
		readBuf:     make([]float32, 1024*channels),
		useFilter:   useFilter,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// loaded is the absolute count of frames buffered so far.
func (r *Resampler) loaded() int {
	return r.base + len(r.buf)/r.channels
}

// fill pulls one chunk from the source into buf.
func (r *Resampler) fill() error {
	n, err := r.src.ReadSamples(r.readBuf)
	n -= n % r.channels

	if n > 0 {
		chunk := r.readBuf[:n]
		if r.useFilter {
			r.lowPass(chunk)
		}
		r.buf = append(r.buf, chunk...)
	}

	if err == io.EOF {
		r.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

func (r *Resampler) lowPass(chunk []float32) {
	if !r.primed {
		// Seed with the first frame to avoid a warm-up transient.
		copy(r.filterState, chunk[:r.channels])
		r.primed = true
	}

	a := r.filterAlpha
	for i := range chunk {
		c := i % r.channels
		y := a*chunk[i] + (1-a)*r.filterState[c]
		r.filterState[c] = y
		chunk[i] = y
	}
}

func (r *Resampler) frame(k, c int) float32 {
	k = max(k, r.base)
	k = min(k, r.loaded()-1)
	return r.buf[(k-r.base)*r.channels+c]
}

// compact drops frames that can no longer be referenced.
func (r *Resampler) compact(keepFrom int) {
	drop := keepFrom - r.base
	if drop < 4096 {
		return
	}
	r.buf = append(r.buf[:0], r.buf[drop*r.channels:]...)
	r.base = keepFrom
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	framesNeeded := len(dst) / r.channels
	written := 0

	for written < framesNeeded {
		pos := r.next * r.srcRate
		i := pos / r.dstRate
		x := float32(pos%r.dstRate) / float32(r.dstRate)

		for !r.eof && r.loaded() <= i+2 {
			if err := r.fill(); err != nil {
				return written * r.channels, err
			}
		}

		if i >= r.loaded() {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(
				r.frame(i-1, c), r.frame(i, c), r.frame(i+1, c), r.frame(i+2, c), x)
		}

		written++
		r.next++
		r.compact(i - 1)
	}

	return written * r.channels, nil
}
