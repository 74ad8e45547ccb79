// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// buildWAV assembles a canonical RIFF/WAVE file. data holds the raw
// little-endian sample bytes.
func buildWAV(formatTag uint16, sampleRate, channels, bitsPerSample int, data []byte, extra ...[]byte) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := uint32(sampleRate) * uint32(blockAlign)

	var extraSize int
	for _, e := range extra {
		extraSize += len(e)
	}

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+extraSize+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, formatTag)
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	for _, e := range extra {
		buf.Write(e)
	}

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}

func pcm16(samples ...int16) []byte {
	buf := new(bytes.Buffer)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func pcm24(samples ...int32) []byte {
	out := make([]byte, 0, len(samples)*3)
	for _, s := range samples {
		out = append(out, byte(s), byte(s>>8), byte(s>>16))
	}
	return out
}

func float32LE(samples ...float32) []byte {
	out := make([]byte, 0, len(samples)*4)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(s))
	}
	return out
}

func float64LE(samples ...float64) []byte {
	out := make([]byte, 0, len(samples)*8)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint64(out, math.Float64bits(s))
	}
	return out
}

func readAll(t *testing.T, r io.Reader) (int, int, []float32) {
	t.Helper()

	src, err := Decoder{}.Decode(r)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	var out []float32
	buf := make([]float32, 3)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	return src.SampleRate(), src.Channels(), out
}

func TestDecoder_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		rate     int
		channels int
		want     []float32
	}{
		{
			name:     "mono 16-bit",
			data:     buildWAV(formatPCM, 8000, 1, 16, pcm16(0, 16384, -16384, -32768)),
			rate:     8000,
			channels: 1,
			want:     []float32{0, 0.5, -0.5, -1},
		},
		{
			name:     "stereo 16-bit",
			data:     buildWAV(formatPCM, 44100, 2, 16, pcm16(8192, -8192, 16384, 0)),
			rate:     44100,
			channels: 2,
			want:     []float32{0.25, -0.25, 0.5, 0},
		},
		{
			name:     "mono 24-bit",
			data:     buildWAV(formatPCM, 22050, 1, 24, pcm24(4194304, -4194304, 0)),
			rate:     22050,
			channels: 1,
			want:     []float32{0.5, -0.5, 0},
		},
		{
			name:     "mono 8-bit unsigned",
			data:     buildWAV(formatPCM, 8000, 1, 8, []byte{128, 192, 64, 0}),
			rate:     8000,
			channels: 1,
			want:     []float32{0, 0.5, -0.5, -1},
		},
		{
			name:     "mono 32-bit float",
			data:     buildWAV(formatFloat, 48000, 1, 32, float32LE(0, 0.25, -0.75, 1)),
			rate:     48000,
			channels: 1,
			want:     []float32{0, 0.25, -0.75, 1},
		},
		{
			name:     "stereo 64-bit float",
			data:     buildWAV(formatFloat, 44100, 2, 64, float64LE(0.5, -0.5, 0.125, 0)),
			rate:     44100,
			channels: 2,
			want:     []float32{0.5, -0.5, 0.125, 0},
		},
		{
			name: "float with trailing chunk",
			data: append(buildWAV(formatFloat, 16000, 1, 32, float32LE(0.5, -0.5)),
				[]byte("LIST\x04\x00\x00\x00abcd")...),
			rate:     16000,
			channels: 1,
			want:     []float32{0.5, -0.5},
		},
		{
			name: "junk chunk before data",
			data: buildWAV(formatPCM, 16000, 1, 16, pcm16(16384, 16384),
				[]byte("JUNK\x04\x00\x00\x00\x00\x00\x00\x00")),
			rate:     16000,
			channels: 1,
			want:     []float32{0.5, 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rate, channels, got := readAll(t, bytes.NewReader(tt.data))
			if rate != tt.rate {
				t.Errorf("SampleRate() = %d, want %d", rate, tt.rate)
			}
			if channels != tt.channels {
				t.Errorf("Channels() = %d, want %d", channels, tt.channels)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d samples, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("sample %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// onlyReader hides Seek so Decode has to buffer.
type onlyReader struct{ r io.Reader }

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := buildWAV(formatPCM, 8000, 1, 16, pcm16(100, 200, 300))
	_, _, got := readAll(t, onlyReader{bytes.NewReader(data)})

	if len(got) != 3 {
		t.Fatalf("got %d samples, want 3", len(got))
	}
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"garbage", []byte("NOT A WAV FILE DATA"), ErrNotWavFile},
		{"truncated", []byte("RIFF\x00"), ErrNotWavFile},
		{"no samples", buildWAV(formatPCM, 8000, 1, 16, nil), ErrNotWavFile},
		{"adpcm", buildWAV(2, 8000, 1, 16, make([]byte, 16)), ErrUnsupportedEncoding},
		{"16-bit float", buildWAV(formatFloat, 8000, 1, 16, make([]byte, 16)), ErrUnsupportedBitDepth},
		{"12-bit", buildWAV(formatPCM, 8000, 1, 12, make([]byte, 16)), ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_ShortReadReturnsEOF(t *testing.T) {
	t.Parallel()

	data := buildWAV(formatPCM, 8000, 1, 16, pcm16(1, 2, 3, 4, 5))
	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf := make([]float32, 8)
	n, err := src.ReadSamples(buf)
	if n != 5 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (5, EOF)", n, err)
	}

	n, err = src.ReadSamples(buf)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, EOF)", n, err)
	}

	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

type failingPCM struct{ err error }

func (f failingPCM) PCMBuffer(*goaudio.IntBuffer) (int, error) { return 0, f.err }

func TestFloatSource_ShortReadReturnsEOF(t *testing.T) {
	t.Parallel()

	data := buildWAV(formatFloat, 8000, 1, 32, float32LE(0.1, 0.2, 0.3))
	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf := make([]float32, 8)
	if n, err := src.ReadSamples(buf); n != 3 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (3, EOF)", n, err)
	}
	if n, err := src.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_PropagatesReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	src := &source{dec: failingPCM{boom}, sampleRate: 8000, channels: 1, bitDepth: 16}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
	if src.BufSize() != 4 {
		t.Errorf("BufSize() = %d, want 4", src.BufSize())
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tone.wav")
	in := []float32{0, 0.25, -0.25, 0.5, -0.5, 1, -1, 2}

	if err := WriteFile(path, 22050, 1, in); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rate, channels, got := readAll(t, f)
	if rate != 22050 || channels != 1 {
		t.Errorf("format = %d Hz x %d, want 22050 Hz x 1", rate, channels)
	}
	if len(got) != len(in) {
		t.Fatalf("got %d samples, want %d", len(got), len(in))
	}

	for i := range in {
		want := max(-1, min(1, in[i]))
		if math.Abs(float64(got[i]-want)) > 1.0/16384 {
			t.Errorf("sample %d = %v, want ~%v", i, got[i], want)
		}
	}
}

func TestWriteFile_BadPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "out.wav")
	if err := WriteFile(path, 8000, 1, []float32{0}); err == nil {
		t.Error("WriteFile() error = nil, want error for missing directory")
	}
}

func TestWriteWAV16_ChannelMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "odd.wav")
	if err := WriteFile(path, 8000, 2, []float32{0, 0, 0}); err == nil {
		t.Error("WriteFile() with 3 samples on 2 channels error = nil")
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 22050)
	for i := range samples {
		samples[i] = int16(i % 2000)
	}
	data := buildWAV(formatPCM, 22050, 1, 16, pcm16(samples...))
	buf := make([]float32, 4096)

	b.ReportAllocs()
	for b.Loop() {
		src, err := Decoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
