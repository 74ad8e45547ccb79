// SPDX-License-Identifier: EPL-2.0

// Package model defines the classifier boundary and the metadata that ties a
// model artifact to the features it expects.
//
// A Classifier takes the (1, NMels, MaxFrames, 1) feature tensor and returns
// two probability vectors, emotion and gender. Serving technology is a
// backend detail: the subpackages onnxrt, gorgonnx and tfserving each
// provide an Opener, and ClassifierFunc adapts an in-process function.
//
// Every artifact has a YAML companion, by default next to it with the
// extension replaced:
//
//	models/ser_model.onnx
//	models/ser_model.yaml
//
// It records the input tensor name and shape, the output names, the feature
// Params used in training and the label lists, so configuration drift is
// caught when the model is opened rather than producing silent garbage.
package model
