// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"errors"
	"fmt"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DecodeError is returned for any input that cannot be turned into a
// waveform: a missing or unreadable file, an unknown container, or corrupt
// data. Err holds the cause.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode audio %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
