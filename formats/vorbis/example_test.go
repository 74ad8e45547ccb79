// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"fmt"
	"strings"

	"github.com/ik5/serinfer/formats/vorbis"
)

// Example_errorHandling shows that data without an Ogg page is rejected.
func Example_errorHandling() {
	_, err := vorbis.Decoder{}.Decode(strings.NewReader("RIFF"))
	fmt.Println(err != nil)
	// Output: true
}
