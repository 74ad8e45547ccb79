// SPDX-License-Identifier: EPL-2.0

// Package tfserving sends features to a TensorFlow Serving REST endpoint
// (POST /v1/models/{name}:predict) and reads both output heads by name.
package tfserving

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ik5/serinfer/feature"
	"github.com/ik5/serinfer/model"
)

// Name is the backend's registry key.
const Name = "tfserving"

const (
	DefaultModelName = "ser_model"
	DefaultTimeout   = 30 * time.Second
	signature        = "serving_default"
)

var (
	ErrNoEndpoint  = errors.New("tfserving: endpoint is required")
	ErrMissingHead = errors.New("tfserving: output missing from response")
)

// Client is a Classifier backed by a model server.
type Client struct {
	c       *http.Client
	url     string
	emotion string
	gender  string
}

// Open builds a client for cfg.Endpoint. cfg.Name defaults to
// DefaultModelName and cfg.Timeout to DefaultTimeout.
func Open(cfg model.OpenConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("tfserving: endpoint: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = DefaultModelName
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		c:       &http.Client{Timeout: timeout},
		url:     strings.TrimRight(cfg.Endpoint, "/") + "/v1/models/" + url.PathEscape(name) + ":predict",
		emotion: cfg.Metadata.Outputs.Emotion,
		gender:  cfg.Metadata.Outputs.Gender,
	}

	cfg.LoggerOrDefault().Debug("tfserving client ready", "url", c.url, "timeout", timeout)
	return c, nil
}

// Opener adapts Open to model.Opener.
func Opener(cfg model.OpenConfig) (model.Classifier, error) {
	return Open(cfg)
}

type predictReq struct {
	SignatureName string `json:"signature_name"`
	Instances     []any  `json:"instances"`
}

// predictResp covers both the row ("predictions") and columnar ("outputs")
// response formats.
type predictResp struct {
	Predictions []map[string]json.RawMessage `json:"predictions"`
	Outputs     map[string]json.RawMessage   `json:"outputs"`
	Error       string                       `json:"error"`
}

// Predict posts one instance to the REST predict endpoint.
func (c *Client) Predict(ctx context.Context, in *feature.Tensor) (model.Prediction, error) {
	b, err := json.Marshal(predictReq{SignatureName: signature, Instances: instances(in)})
	if err != nil {
		return model.Prediction{}, fmt.Errorf("tfserving encode: %w", err)
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return model.Prediction{}, err
	}
	r.Header.Set("Content-Type", "application/json")

	resp, err := c.c.Do(r)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("tfserving predict: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.Prediction{}, fmt.Errorf("tfserving predict %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out predictResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.Prediction{}, fmt.Errorf("tfserving predict decode: %w", err)
	}
	if out.Error != "" {
		return model.Prediction{}, fmt.Errorf("tfserving predict: %s", out.Error)
	}

	return c.heads(out)
}

func (c *Client) heads(out predictResp) (model.Prediction, error) {
	var (
		emotion, gender []float32
		err             error
	)

	switch {
	case len(out.Predictions) > 0:
		row := out.Predictions[0]
		if emotion, err = head(row, c.emotion); err != nil {
			return model.Prediction{}, err
		}
		if gender, err = head(row, c.gender); err != nil {
			return model.Prediction{}, err
		}
	case len(out.Outputs) > 0:
		if emotion, err = columnHead(out.Outputs, c.emotion); err != nil {
			return model.Prediction{}, err
		}
		if gender, err = columnHead(out.Outputs, c.gender); err != nil {
			return model.Prediction{}, err
		}
	default:
		return model.Prediction{}, fmt.Errorf("%w: empty response", ErrMissingHead)
	}

	return model.Prediction{Emotion: emotion, Gender: gender}, nil
}

func head(row map[string]json.RawMessage, name string) ([]float32, error) {
	raw, ok := row[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingHead, name)
	}

	var v []float32
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("tfserving %s: %w", name, err)
	}
	return v, nil
}

// columnHead reads a batch-major [[...]] output and keeps the first row.
func columnHead(cols map[string]json.RawMessage, name string) ([]float32, error) {
	raw, ok := cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingHead, name)
	}

	var v [][]float32
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("tfserving %s: %w", name, err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: %q has no rows", ErrMissingHead, name)
	}
	return v[0], nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.c.CloseIdleConnections()
	return nil
}

// instances splits the batch dimension off t and nests each element to
// match its remaining shape.
func instances(t *feature.Tensor) []any {
	if len(t.Shape) == 0 {
		return nil
	}

	batch := t.Shape[0]
	inner := t.Shape[1:]
	size := len(t.Data) / max(batch, 1)

	out := make([]any, batch)
	for i := range batch {
		out[i] = nest(t.Data[i*size:(i+1)*size], inner)
	}
	return out
}

func nest(data []float32, shape []int) any {
	if len(shape) == 0 {
		return data[0]
	}
	if len(shape) == 1 {
		return data[:shape[0]]
	}

	step := len(data) / shape[0]
	out := make([]any, shape[0])
	for i := range out {
		out[i] = nest(data[i*step:(i+1)*step], shape[1:])
	}
	return out
}
