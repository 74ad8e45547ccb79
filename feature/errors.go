// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrSampleRateMismatch = errors.New("feature: waveform sample rate does not match params")
	ErrInvalidParams      = errors.New("feature: invalid params")
)

// ShapeMismatchError reports a tensor whose shape differs from the one a
// model declares. Shapes are never coerced.
type ShapeMismatchError struct {
	Name string // tensor or output name
	Want []int
	Got  []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("feature: shape mismatch for %q: want %v, got %v", e.Name, e.Want, e.Got)
}

// CheckShape returns a *ShapeMismatchError when got differs from want.
// A negative entry in want matches any size.
func CheckShape(name string, want, got []int) error {
	ok := len(want) == len(got)
	for i := 0; ok && i < len(want); i++ {
		ok = want[i] < 0 || want[i] == got[i]
	}
	if ok {
		return nil
	}
	return &ShapeMismatchError{Name: name, Want: slices.Clone(want), Got: slices.Clone(got)}
}
