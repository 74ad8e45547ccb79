// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic audio sources and sample generators
// for tests. Sources satisfy audio.Source structurally; the package does not
// import audio so that package's own tests can use it.
package audiotest

import (
	"io"
	"math"
)

// MockSource generates interleaved samples from a waveform function.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // frames to generate
	generated    int // frames generated so far
	waveform     func(sample int, channel int) float32

	err    error // returned instead of io.EOF when set
	closed bool
}

// NewMockSource creates a source of totalSamples frames whose values come
// from waveform(frameIndex, channel).
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a source that generates silence.
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

// NewSineSource creates a full-scale sine wave on every channel.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a source with a constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// NewSliceSource plays back interleaved samples.
func NewSliceSource(sampleRate, channels int, samples []float32) *MockSource {
	return NewMockSource(sampleRate, channels, len(samples)/channels, func(sample int, channel int) float32 {
		return samples[sample*channels+channel]
	})
}

// FailWith makes the source return err once its samples are exhausted.
func (m *MockSource) FailWith(err error) *MockSource {
	m.err = err
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds the source so it can be read again.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) end() error {
	if m.err != nil {
		return m.err
	}
	return io.EOF
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, m.end()
	}

	frames := min(len(dst)/m.channels, m.totalSamples-m.generated)
	for f := range frames {
		idx := m.generated + f
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(idx, ch)
		}
	}
	m.generated += frames

	if m.generated >= m.totalSamples {
		return frames * m.channels, m.end()
	}
	return frames * m.channels, nil
}

// Sine returns n samples of a sine wave at freq Hz with the given amplitude.
func Sine(n, sampleRate int, freq, amplitude float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}
