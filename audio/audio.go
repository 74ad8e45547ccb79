// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"slices"
	"strings"
	"sync"
)

// Source is a pull-based stream of interleaved float32 PCM.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps format keys (e.g., "wav", "mp3", "ogg") and file extension
// aliases to decoders. It is safe for concurrent use.
type Registry struct {
	codecs  map[string]Decoder
	aliases map[string]string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs:  make(map[string]Decoder),
		aliases: make(map[string]string),
		mtx:     &sync.Mutex{},
	}
}

// Register binds format to d. Extra names (usually file extensions such as
// "wave" or "aif") resolve to the same format in Lookup.
func (r *Registry) Register(format string, d Decoder, aliases ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	format = normalizeKey(format)
	r.codecs[format] = d
	for _, a := range aliases {
		r.aliases[normalizeKey(a)] = format
	}
}

// Get returns the decoder registered under the exact format key.
func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Lookup resolves a format key, alias or file extension (".WAV" works too)
// to its canonical format and decoder.
func (r *Registry) Lookup(name string) (string, Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	key := normalizeKey(name)
	if target, ok := r.aliases[key]; ok {
		key = target
	}

	d, ok := r.codecs[key]
	if !ok {
		return "", nil, false
	}
	return key, d, true
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	slices.Sort(out)

	return out
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "."))
}
