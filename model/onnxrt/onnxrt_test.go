// SPDX-License-Identifier: EPL-2.0

package onnxrt

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/serinfer/feature"
	"github.com/ik5/serinfer/model"
)

func TestOpen_MissingModel(t *testing.T) {
	t.Parallel()

	_, err := Open(model.OpenConfig{
		Path:     filepath.Join(t.TempDir(), "ser_model.onnx"),
		Metadata: model.DefaultMetadata(),
	})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open() error = %v, want fs.ErrNotExist", err)
	}
}

func TestToInt64(t *testing.T) {
	t.Parallel()

	got := toInt64([]int{1, 128, 130, 1})
	want := []int64{1, 128, 130, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("toInt64() = %v, want %v", got, want)
		}
	}
}

// TestClassifier_RealModel needs the onnxruntime shared library and an
// exported model: set SERINFER_ONNX_MODEL (and optionally
// SERINFER_ORT_LIB) to run it.
func TestClassifier_RealModel(t *testing.T) {
	path := os.Getenv("SERINFER_ONNX_MODEL")
	if path == "" {
		t.Skip("SERINFER_ONNX_MODEL not set")
	}

	md := model.DefaultMetadata()
	if loaded, err := model.LoadMetadata(model.MetadataPath(path)); err == nil {
		md = loaded
	}

	c, err := Open(model.OpenConfig{
		Path:          path,
		Metadata:      md,
		SharedLibrary: os.Getenv("SERINFER_ORT_LIB"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	shape := md.Features.Shape()
	in, err := feature.NewTensor(shape, make([]float32, 1*shape[1]*shape[2]*shape[3]))
	if err != nil {
		t.Fatal(err)
	}

	p, err := model.Checked(c, md).Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(p.Emotion) != len(md.Labels.Emotion) || len(p.Gender) != len(md.Labels.Gender) {
		t.Errorf("Predict() = %+v", p)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := c.Predict(context.Background(), in); err == nil {
		t.Error("Predict() after Close error = nil")
	}
}
