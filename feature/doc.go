// SPDX-License-Identifier: EPL-2.0

// Package feature turns a mono waveform into the standardized log-mel
// tensor the emotion model consumes.
//
// The chain is fixed and every step is exported so it can be tested alone:
//
//	Trim -> PeakNormalize -> FitDuration -> MelSpectrogram -> FixFrames
//	     -> power to dB -> Standardize -> Tensor (1, NMels, MaxFrames, 1)
//
// All constants live in Params. They are a contract with the trained model:
// changing any of them without retraining produces tensors the model was
// never shown. Ship them next to the model (see package model) rather than
// editing DefaultParams.
package feature
