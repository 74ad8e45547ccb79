// SPDX-License-Identifier: EPL-2.0

package model

import (
	"context"

	"github.com/ik5/serinfer/feature"
)

// Prediction holds one probability vector per classification head.
type Prediction struct {
	Emotion []float32
	Gender  []float32
}

// Classifier runs a trained model on one feature tensor.
type Classifier interface {
	Predict(ctx context.Context, in *feature.Tensor) (Prediction, error)
	Close() error
}

// ClassifierFunc adapts a function to Classifier. Close is a no-op.
type ClassifierFunc func(ctx context.Context, in *feature.Tensor) (Prediction, error)

func (f ClassifierFunc) Predict(ctx context.Context, in *feature.Tensor) (Prediction, error) {
	return f(ctx, in)
}

func (ClassifierFunc) Close() error { return nil }

// Checked wraps c so the input tensor and both output vectors are checked
// against md. Mismatches are *feature.ShapeMismatchError and are never
// coerced.
func Checked(c Classifier, md Metadata) Classifier {
	return &checked{Classifier: c, md: md}
}

type checked struct {
	Classifier
	md Metadata
}

func (c *checked) Predict(ctx context.Context, in *feature.Tensor) (Prediction, error) {
	if err := in.Check(c.md.Input.Name, c.md.Input.Shape); err != nil {
		return Prediction{}, err
	}

	p, err := c.Classifier.Predict(ctx, in)
	if err != nil {
		return Prediction{}, err
	}

	if err := c.md.CheckPrediction(p); err != nil {
		return Prediction{}, err
	}
	return p, nil
}
