// SPDX-License-Identifier: EPL-2.0

package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/serinfer/feature"
	"github.com/ik5/serinfer/labels"
	"gopkg.in/yaml.v3"
)

var ErrInvalidMetadata = errors.New("model: invalid metadata")

// Metadata describes a model artifact's interface.
type Metadata struct {
	Input    Input          `yaml:"input"`
	Outputs  Outputs        `yaml:"outputs"`
	Features feature.Params `yaml:"features"`
	Labels   Labels         `yaml:"labels"`
}

// Input names the single input tensor. A -1 dimension accepts any size.
type Input struct {
	Name  string `yaml:"name"`
	Shape []int  `yaml:"shape"`
}

// Outputs names the two output tensors.
type Outputs struct {
	Emotion string `yaml:"emotion"`
	Gender  string `yaml:"gender"`
}

// Labels lists class names in output index order.
type Labels struct {
	Emotion []string `yaml:"emotion"`
	Gender  []string `yaml:"gender"`
}

// DefaultMetadata describes the bundled emotion model.
func DefaultMetadata() Metadata {
	p := feature.DefaultParams()
	return Metadata{
		Input:    Input{Name: "input", Shape: p.Shape()},
		Outputs:  Outputs{Emotion: "emotion_output", Gender: "gender_output"},
		Features: p,
		Labels: Labels{
			Emotion: labels.Emotions.Labels(),
			Gender:  labels.Genders.Labels(),
		},
	}
}

// MetadataPath is the companion file of a model artifact: the same path
// with its extension replaced by ".yaml".
func MetadataPath(modelPath string) string {
	return strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".yaml"
}

// LoadMetadata reads and validates a metadata file. Fields the file leaves
// out keep their DefaultMetadata values.
func LoadMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("model: open metadata: %w", err)
	}
	defer f.Close()

	md, err := LoadMetadataFromReader(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("model: metadata %s: %w", path, err)
	}
	return md, nil
}

// LoadMetadataFromReader decodes metadata YAML from r on top of
// DefaultMetadata and validates it. Unknown keys are rejected.
func LoadMetadataFromReader(r io.Reader) (Metadata, error) {
	md := DefaultMetadata()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&md); err != nil && !errors.Is(err, io.EOF) {
		return Metadata{}, fmt.Errorf("decode: %w", err)
	}

	if err := md.Validate(); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

// Validate checks internal consistency. A declared input shape that
// disagrees with the feature params is reported as a
// *feature.ShapeMismatchError inside the joined error.
func (m Metadata) Validate() error {
	var errs []error

	if err := m.Features.Validate(); err != nil {
		errs = append(errs, err)
	} else if err := feature.CheckShape(m.Input.Name, m.Input.Shape, m.Features.Shape()); err != nil {
		errs = append(errs, err)
	}

	if m.Input.Name == "" {
		errs = append(errs, errors.New("input.name is required"))
	}
	if m.Outputs.Emotion == "" || m.Outputs.Gender == "" {
		errs = append(errs, errors.New("outputs.emotion and outputs.gender are required"))
	} else if m.Outputs.Emotion == m.Outputs.Gender {
		errs = append(errs, fmt.Errorf("outputs.emotion and outputs.gender are both %q", m.Outputs.Emotion))
	}
	if len(m.Labels.Emotion) == 0 {
		errs = append(errs, errors.New("labels.emotion is empty"))
	}
	if len(m.Labels.Gender) == 0 {
		errs = append(errs, errors.New("labels.gender is empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, errors.Join(errs...))
	}
	return nil
}

// LabelMaps builds the emotion and gender maps.
func (m Metadata) LabelMaps() (emotions, genders labels.Map, err error) {
	if emotions, err = labels.New("emotion", m.Labels.Emotion...); err != nil {
		return labels.Map{}, labels.Map{}, err
	}
	if genders, err = labels.New("gender", m.Labels.Gender...); err != nil {
		return labels.Map{}, labels.Map{}, err
	}
	return emotions, genders, nil
}

// OutputShapes are the (1, classes) shapes of the emotion and gender heads.
func (m Metadata) OutputShapes() (emotion, gender []int) {
	return []int{1, len(m.Labels.Emotion)}, []int{1, len(m.Labels.Gender)}
}

// CheckPrediction verifies both vectors have one score per label.
func (m Metadata) CheckPrediction(p Prediction) error {
	wantE, wantG := m.OutputShapes()
	if err := feature.CheckShape(m.Outputs.Emotion, wantE, []int{1, len(p.Emotion)}); err != nil {
		return err
	}
	return feature.CheckShape(m.Outputs.Gender, wantG, []int{1, len(p.Gender)})
}
