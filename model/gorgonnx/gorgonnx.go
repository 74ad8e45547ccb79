// SPDX-License-Identifier: EPL-2.0

// Package gorgonnx runs the classifier in pure Go with onnx-go's Gorgonia
// backend. It needs no shared library but supports fewer operators than
// ONNX Runtime.
package gorgonnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ik5/serinfer/feature"
	"github.com/ik5/serinfer/model"
	"github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"gorgonia.org/tensor"
)

// Name is the backend's registry key.
const Name = "gorgonnx"

var ErrOutputCount = errors.New("gorgonnx: model must have two outputs")

// graph is the part of *onnx.Model used here.
type graph interface {
	SetInput(index int, t tensor.Tensor) error
	GetOutputTensors() ([]tensor.Tensor, error)
}

// runner executes the backend graph.
type runner interface {
	Run() error
}

// Classifier holds a decoded ONNX graph. Outputs are taken by position:
// the first is the emotion head and the second the gender head.
type Classifier struct {
	mtx    *sync.Mutex
	graph  graph
	runner runner
}

// Open reads and decodes cfg.Path.
func Open(cfg model.OpenConfig) (*Classifier, error) {
	raw, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("gorgonnx: model: %w", err)
	}

	backend := gorgonnx.NewGraph()
	m := onnx.NewModel(backend)
	if err := unmarshal(m, raw); err != nil {
		return nil, fmt.Errorf("gorgonnx: decode %s: %w", cfg.Path, err)
	}

	cfg.LoggerOrDefault().Debug("onnx graph decoded", "path", cfg.Path, "bytes", len(raw))
	return newClassifier(m, backend), nil
}

// Opener adapts Open to model.Opener.
func Opener(cfg model.OpenConfig) (model.Classifier, error) {
	return Open(cfg)
}

func newClassifier(g graph, r runner) *Classifier {
	return &Classifier{mtx: &sync.Mutex{}, graph: g, runner: r}
}

// unmarshal turns decoder panics on malformed protobuf into errors.
func unmarshal(m *onnx.Model, raw []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return m.UnmarshalBinary(raw)
}

// Predict runs the graph. Calls are serialized.
func (c *Classifier) Predict(ctx context.Context, in *feature.Tensor) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	// Gorgonia may hold on to the backing slice, so it gets its own copy.
	t := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(in.Shape...),
		tensor.WithBacking(append([]float32(nil), in.Data...)),
	)

	if err := c.graph.SetInput(0, t); err != nil {
		return model.Prediction{}, fmt.Errorf("gorgonnx: set input: %w", err)
	}
	if err := c.run(); err != nil {
		return model.Prediction{}, err
	}

	outs, err := c.graph.GetOutputTensors()
	if err != nil {
		return model.Prediction{}, fmt.Errorf("gorgonnx: outputs: %w", err)
	}
	if len(outs) != 2 {
		return model.Prediction{}, fmt.Errorf("%w: got %d", ErrOutputCount, len(outs))
	}

	emotion, err := float32s(outs[0])
	if err != nil {
		return model.Prediction{}, fmt.Errorf("gorgonnx: emotion output: %w", err)
	}
	gender, err := float32s(outs[1])
	if err != nil {
		return model.Prediction{}, fmt.Errorf("gorgonnx: gender output: %w", err)
	}

	return model.Prediction{Emotion: emotion, Gender: gender}, nil
}

func (c *Classifier) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gorgonnx: run: %v", r)
		}
	}()

	if err := c.runner.Run(); err != nil {
		return fmt.Errorf("gorgonnx: run: %w", err)
	}
	return nil
}

// Close is a no-op; the graph is garbage collected.
func (c *Classifier) Close() error { return nil }

// float32s copies the values out of a dense output tensor.
func float32s(t tensor.Tensor) ([]float32, error) {
	d, ok := t.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("unexpected tensor type %T", t)
	}

	switch v := d.Data().(type) {
	case []float32:
		return append([]float32(nil), v...), nil
	case float32:
		return []float32{v}, nil
	case []float64:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected element type %T", v)
	}
}
