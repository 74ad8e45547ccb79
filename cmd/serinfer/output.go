// SPDX-License-Identifier: EPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ik5/serinfer/internal/config"
	"github.com/ik5/serinfer/labels"
	"gopkg.in/yaml.v3"
)

type report struct {
	File    string        `json:"file" yaml:"file"`
	Emotion labels.Choice `json:"emotion" yaml:"emotion"`
	Gender  labels.Choice `json:"gender" yaml:"gender"`
}

func writeResult(w io.Writer, format config.Format, path string, res labels.Result) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report{File: path, Emotion: res.Emotion, Gender: res.Gender})
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report{File: path, Emotion: res.Emotion, Gender: res.Gender}); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintf(w, "Emotion: %s\nGender: %s\n", res.Emotion.Label, res.Gender.Label)
		return err
	}
}
