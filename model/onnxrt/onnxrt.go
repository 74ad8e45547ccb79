// SPDX-License-Identifier: EPL-2.0

// Package onnxrt runs the classifier with the ONNX Runtime shared library
// through github.com/yalue/onnxruntime_go.
//
// The session is created once with preallocated input and output tensors;
// Predict copies features in, runs the graph and copies both heads out.
package onnxrt

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ik5/serinfer/feature"
	"github.com/ik5/serinfer/model"
	ort "github.com/yalue/onnxruntime_go"
)

// Name is the backend's registry key.
const Name = "onnxrt"

// Classifier is a loaded ONNX Runtime session.
type Classifier struct {
	mtx *sync.Mutex

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	emotion *ort.Tensor[float32]
	gender  *ort.Tensor[float32]

	// ownsEnv is set when Open initialized the runtime environment.
	ownsEnv bool
}

// Open loads cfg.Path into a new session. The input tensor takes the
// concrete shape derived from cfg.Metadata.Features.
func Open(cfg model.OpenConfig) (*Classifier, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("onnxrt: model: %w", err)
	}

	c := &Classifier{mtx: &sync.Mutex{}}

	if !ort.IsInitialized() {
		if cfg.SharedLibrary != "" {
			ort.SetSharedLibraryPath(cfg.SharedLibrary)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("onnxrt: initialize environment: %w", err)
		}
		c.ownsEnv = true
	}

	if err := c.load(cfg); err != nil {
		c.Close()
		return nil, err
	}

	cfg.LoggerOrDefault().Debug("onnxruntime session ready",
		"path", cfg.Path, "input", cfg.Metadata.Input.Name,
		"outputs", []string{cfg.Metadata.Outputs.Emotion, cfg.Metadata.Outputs.Gender})
	return c, nil
}

// Opener adapts Open to model.Opener.
func Opener(cfg model.OpenConfig) (model.Classifier, error) {
	return Open(cfg)
}

func (c *Classifier) load(cfg model.OpenConfig) error {
	md := cfg.Metadata
	var err error

	shape := md.Features.Shape()
	c.input, err = ort.NewEmptyTensor[float32](ort.NewShape(toInt64(shape)...))
	if err != nil {
		return fmt.Errorf("onnxrt: input tensor: %w", err)
	}

	emotionShape, genderShape := md.OutputShapes()
	c.emotion, err = ort.NewEmptyTensor[float32](ort.NewShape(toInt64(emotionShape)...))
	if err != nil {
		return fmt.Errorf("onnxrt: %s tensor: %w", md.Outputs.Emotion, err)
	}
	c.gender, err = ort.NewEmptyTensor[float32](ort.NewShape(toInt64(genderShape)...))
	if err != nil {
		return fmt.Errorf("onnxrt: %s tensor: %w", md.Outputs.Gender, err)
	}

	c.session, err = ort.NewAdvancedSession(
		cfg.Path,
		[]string{md.Input.Name},
		[]string{md.Outputs.Emotion, md.Outputs.Gender},
		[]ort.Value{c.input},
		[]ort.Value{c.emotion, c.gender},
		nil,
	)
	if err != nil {
		return fmt.Errorf("onnxrt: create session: %w", err)
	}
	return nil
}

// Predict runs one inference. Calls are serialized since the session's
// tensors are shared.
func (c *Classifier) Predict(ctx context.Context, in *feature.Tensor) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.session == nil {
		return model.Prediction{}, fmt.Errorf("onnxrt: session closed")
	}

	dst := c.input.GetData()
	if len(dst) != in.Len() {
		return model.Prediction{}, &feature.ShapeMismatchError{
			Name: "input",
			Want: toInt(c.input.GetShape()),
			Got:  in.Shape,
		}
	}
	copy(dst, in.Data)

	if err := c.session.Run(); err != nil {
		return model.Prediction{}, fmt.Errorf("onnxrt: run: %w", err)
	}

	return model.Prediction{
		Emotion: append([]float32(nil), c.emotion.GetData()...),
		Gender:  append([]float32(nil), c.gender.GetData()...),
	}, nil
}

// Close releases the session, its tensors and, when Open created it, the
// runtime environment.
func (c *Classifier) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if c.session != nil {
		keep(c.session.Destroy())
		c.session = nil
	}
	for _, t := range []*ort.Tensor[float32]{c.input, c.emotion, c.gender} {
		if t != nil {
			keep(t.Destroy())
		}
	}
	c.input, c.emotion, c.gender = nil, nil, nil

	if c.ownsEnv {
		keep(ort.DestroyEnvironment())
		c.ownsEnv = false
	}

	if first != nil {
		return fmt.Errorf("onnxrt: close: %w", first)
	}
	return nil
}

func toInt64(s []int) []int64 {
	out := make([]int64, len(s))
	for i, d := range s {
		out[i] = int64(d)
	}
	return out
}

func toInt(s ort.Shape) []int {
	out := make([]int, len(s))
	for i, d := range s {
		out[i] = int(d)
	}
	return out
}
