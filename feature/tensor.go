// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"fmt"
	"slices"
)

// Tensor is a dense row-major float32 tensor.
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor wraps data with shape. The product of shape must equal
// len(data).
func NewTensor(shape []int, data []float32) (*Tensor, error) {
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("feature: invalid tensor dimension %d in %v", d, shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("feature: shape %v needs %d values, got %d", shape, n, len(data))
	}
	return &Tensor{Shape: slices.Clone(shape), Data: data}, nil
}

// Len is the number of elements.
func (t *Tensor) Len() int { return len(t.Data) }

// Shape64 returns the shape as int64, as most inference runtimes want it.
func (t *Tensor) Shape64() []int64 {
	out := make([]int64, len(t.Shape))
	for i, d := range t.Shape {
		out[i] = int64(d)
	}
	return out
}

// Check returns a *ShapeMismatchError if the tensor's shape differs from
// want.
func (t *Tensor) Check(name string, want []int) error {
	return CheckShape(name, want, t.Shape)
}
