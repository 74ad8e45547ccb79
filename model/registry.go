// SPDX-License-Identifier: EPL-2.0

package model

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

var ErrUnknownBackend = errors.New("model: unknown backend")

// OpenConfig carries everything a backend may need. Backends ignore the
// fields they have no use for.
type OpenConfig struct {
	// Path of the model artifact (onnxrt, gorgonnx).
	Path     string
	Metadata Metadata

	// SharedLibrary is the onnxruntime library to load; empty uses the
	// platform default.
	SharedLibrary string

	// Endpoint, Name and Timeout address a remote model server (tfserving).
	Endpoint string
	Name     string
	Timeout  time.Duration

	Logger *slog.Logger
}

// LoggerOrDefault returns c.Logger, or slog.Default when unset.
func (c OpenConfig) LoggerOrDefault() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Opener constructs a Classifier for one backend.
type Opener func(cfg OpenConfig) (Classifier, error)

// Registry maps backend names to openers. It is safe for concurrent use.
type Registry struct {
	openers map[string]Opener
	mtx     *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		openers: make(map[string]Opener),
		mtx:     &sync.Mutex{},
	}
}

// Register adds or replaces the opener for name.
func (r *Registry) Register(name string, o Opener) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.openers[name] = o
}

// Open builds the named backend and wraps it with Checked against
// cfg.Metadata.
func (r *Registry) Open(name string, cfg OpenConfig) (Classifier, error) {
	r.mtx.Lock()
	o, ok := r.openers[name]
	r.mtx.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, r.Backends())
	}

	c, err := o(cfg)
	if err != nil {
		return nil, fmt.Errorf("model: open %s backend: %w", name, err)
	}

	cfg.LoggerOrDefault().Debug("model opened", "backend", name, "path", cfg.Path, "endpoint", cfg.Endpoint)
	return Checked(c, cfg.Metadata), nil
}

// Backends lists registered names in sorted order.
func (r *Registry) Backends() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.openers))
	for k := range r.openers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
