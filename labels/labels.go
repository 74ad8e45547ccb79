// SPDX-License-Identifier: EPL-2.0

// Package labels maps classifier output indices to human-readable class
// names.
package labels

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyMap = errors.New("labels: map has no classes")
	ErrNaNScore = errors.New("labels: score is NaN")
)

// IndexMappingError reports a class index with no label. Index is -1 when
// the distribution itself was empty.
type IndexMappingError struct {
	Map   string
	Index int
	Size  int
}

func (e *IndexMappingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("labels: empty %s distribution", e.Map)
	}
	return fmt.Sprintf("labels: %s index %d outside [0, %d)", e.Map, e.Index, e.Size)
}

// Map is an immutable index -> name table.
type Map struct {
	name   string
	labels []string
}

// New builds a map called name (used in errors) over labels, in index order.
func New(name string, labels ...string) (Map, error) {
	if len(labels) == 0 {
		return Map{}, fmt.Errorf("%w: %s", ErrEmptyMap, name)
	}
	return Map{name: name, labels: slices.Clone(labels)}, nil
}

func mustNew(name string, labels ...string) Map {
	m, err := New(name, labels...)
	if err != nil {
		panic(err)
	}
	return m
}

// Emotions is the eight-class emotion taxonomy of the bundled model.
var Emotions = mustNew("emotion",
	"Neutral", "Calm", "Happy", "Sad", "Angry", "Fearful", "Disgust", "Surprised")

// Genders is the two-class gender taxonomy of the bundled model.
var Genders = mustNew("gender", "Male", "Female")

func (m Map) Name() string { return m.name }
func (m Map) Len() int     { return len(m.labels) }

// Labels returns a copy of the names in index order.
func (m Map) Labels() []string { return slices.Clone(m.labels) }

// Label returns the name of class i.
func (m Map) Label(i int) (string, error) {
	if i < 0 || i >= len(m.labels) {
		return "", &IndexMappingError{Map: m.name, Index: i, Size: len(m.labels)}
	}
	return m.labels[i], nil
}

// ArgMax returns the index of the largest score. Ties go to the lowest
// index. A NaN anywhere wins, so the first NaN's index is returned. An empty
// slice returns -1.
func ArgMax(scores []float32) int {
	if len(scores) == 0 {
		return -1
	}

	if i := slices.IndexFunc(scores, func(v float32) bool { return math.IsNaN(float64(v)) }); i >= 0 {
		return i
	}

	s := make([]float64, len(scores))
	for i, v := range scores {
		s[i] = float64(v)
	}
	return floats.MaxIdx(s)
}

// Choice is the winning class of one distribution.
type Choice struct {
	Label string  `json:"label" yaml:"label"`
	Index int     `json:"index" yaml:"index"`
	Score float32 `json:"score" yaml:"score"`
}

// Pick resolves the arg-max of scores through m. A NaN score fails with
// ErrNaNScore.
func (m Map) Pick(scores []float32) (Choice, error) {
	i := ArgMax(scores)
	if i < 0 {
		return Choice{}, &IndexMappingError{Map: m.name, Index: -1, Size: len(m.labels)}
	}
	if math.IsNaN(float64(scores[i])) {
		return Choice{}, fmt.Errorf("%w: %s index %d", ErrNaNScore, m.name, i)
	}

	label, err := m.Label(i)
	if err != nil {
		return Choice{}, err
	}
	return Choice{Label: label, Index: i, Score: scores[i]}, nil
}

// Result is a resolved prediction.
type Result struct {
	Emotion Choice `json:"emotion" yaml:"emotion"`
	Gender  Choice `json:"gender" yaml:"gender"`
}

// Resolve picks the emotion and gender labels for one prediction.
func Resolve(emotion, gender []float32, emotions, genders Map) (Result, error) {
	e, err := emotions.Pick(emotion)
	if err != nil {
		return Result{}, err
	}
	g, err := genders.Pick(gender)
	if err != nil {
		return Result{}, err
	}
	return Result{Emotion: e, Gender: g}, nil
}
