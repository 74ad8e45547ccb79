// SPDX-License-Identifier: EPL-2.0

package serinfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ik5/serinfer/audio"
	"github.com/ik5/serinfer/feature"
	"github.com/ik5/serinfer/labels"
	"github.com/ik5/serinfer/loader"
	"github.com/ik5/serinfer/model"
	"github.com/ik5/serinfer/model/gorgonnx"
	"github.com/ik5/serinfer/model/onnxrt"
	"github.com/ik5/serinfer/model/tfserving"
)

// DefaultBackends returns a registry with every bundled classifier
// backend.
func DefaultBackends() *model.Registry {
	reg := model.NewRegistry()
	reg.Register(onnxrt.Name, onnxrt.Opener)
	reg.Register(gorgonnx.Name, gorgonnx.Opener)
	reg.Register(tfserving.Name, tfserving.Opener)
	return reg
}

// Pipeline turns audio files into labelled predictions. It is not safe for
// concurrent use.
type Pipeline struct {
	loader     *loader.Loader
	extractor  *feature.Extractor
	classifier model.Classifier

	emotions labels.Map
	genders  labels.Map

	logger *slog.Logger
}

type options struct {
	metadata model.Metadata
	method   audio.ResampleMethod
	bufSize  int
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*options)

// WithMetadata sets the feature params, tensor names and labels. The
// default is model.DefaultMetadata.
func WithMetadata(md model.Metadata) Option {
	return func(o *options) { o.metadata = md }
}

// WithResampler selects the loader's sample rate converter.
func WithResampler(m audio.ResampleMethod) Option {
	return func(o *options) { o.method = m }
}

// WithBufferSize sets the loader's read chunk in samples.
func WithBufferSize(n int) Option {
	return func(o *options) { o.bufSize = n }
}

// WithLogger sets the logger for the pipeline and its loader. nil is
// ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New builds a pipeline around c. The pipeline owns c and closes it in
// Close.
func New(c model.Classifier, opts ...Option) (*Pipeline, error) {
	o := options{
		metadata: model.DefaultMetadata(),
		method:   audio.ResampleSoxr,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	md := o.metadata
	if err := md.Validate(); err != nil {
		return nil, err
	}

	ext, err := feature.NewExtractor(md.Features)
	if err != nil {
		return nil, err
	}

	emotions, genders, err := md.LabelMaps()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		loader: loader.New(md.Features.SampleRate,
			loader.WithResampler(o.method),
			loader.WithBufferSize(o.bufSize),
			loader.WithLogger(o.logger),
		),
		extractor:  ext,
		classifier: model.Checked(c, md),
		emotions:   emotions,
		genders:    genders,
		logger:     o.logger,
	}, nil
}

// Features loads path and returns the model input tensor.
func (p *Pipeline) Features(path string) (*feature.Tensor, error) {
	w, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}

	t, err := p.extractor.Extract(w)
	if err != nil {
		return nil, fmt.Errorf("features for %s: %w", path, err)
	}

	st := p.extractor.LastStats()
	p.logger.Debug("features extracted",
		"path", path,
		"shape", t.Shape,
		"db_mean", st.Mean,
		"db_std", st.Std,
		"db_min", st.Min,
		"db_max", st.Max,
	)
	return t, nil
}

// Predict runs the whole chain on path.
func (p *Pipeline) Predict(ctx context.Context, path string) (labels.Result, error) {
	t, err := p.Features(path)
	if err != nil {
		return labels.Result{}, err
	}

	start := time.Now()
	pred, err := p.classifier.Predict(ctx, t)
	if err != nil {
		return labels.Result{}, fmt.Errorf("classify %s: %w", path, err)
	}
	p.logger.Debug("classifier finished", "path", path, "elapsed", time.Since(start))

	return labels.Resolve(pred.Emotion, pred.Gender, p.emotions, p.genders)
}

// Close releases the classifier.
func (p *Pipeline) Close() error {
	return p.classifier.Close()
}
