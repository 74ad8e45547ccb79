// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ik5/serinfer/formats/aiff"
)

// Example_errorHandling shows the sentinel returned for non-AIFF input.
func Example_errorHandling() {
	_, err := aiff.Decoder{}.Decode(strings.NewReader("RIFF....WAVE"))
	fmt.Println(errors.Is(err, aiff.ErrNotAiffFile))
	// Output: true
}
