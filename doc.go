// SPDX-License-Identifier: EPL-2.0

// Package serinfer predicts the speaker's emotion and gender from a single
// audio file with a pretrained classifier.
//
// A Pipeline chains the stages a prediction goes through:
//
//  1. loader: decode WAV, AIFF, MP3 or Ogg Vorbis, mix to mono and
//     resample to the model's rate
//  2. feature: trim silence, peak normalize, fit to a fixed duration
//  3. feature: log-power mel spectrogram with a fixed frame count,
//     standardized to zero mean and unit variance
//  4. model: run the classifier's two heads
//  5. labels: arg-max each head and map it to a class name
//
// # Quick Start
//
//	c, err := serinfer.DefaultBackends().Open("onnxrt", model.OpenConfig{
//		Path:     "models/ser_model.onnx",
//		Metadata: model.DefaultMetadata(),
//	})
//	if err != nil {
//		return err
//	}
//
//	p, err := serinfer.New(c)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	res, err := p.Predict(ctx, "speech.wav")
//	fmt.Println(res.Emotion.Label, res.Gender.Label)
//
// # Feature Contract
//
// The classifier was trained on features produced with one exact set of
// constants (sample rate, FFT size, hop, mel bands, duration, dB range).
// Those live in feature.Params and are carried next to the model in a
// model.Metadata YAML file, so an artifact trained with different values
// fails with a *feature.ShapeMismatchError instead of silently predicting
// garbage.
//
// # Errors
//
// Failures are fatal for the run and typed:
//   - *loader.DecodeError: the file is missing, unreadable or not audio
//   - *feature.ShapeMismatchError: tensor or output shape disagrees with
//     the metadata
//   - *labels.IndexMappingError: a head produced no usable index
//   - labels.ErrNaNScore: a head produced a NaN score
//
// Silent input is not an error; it produces an all-zero tensor.
package serinfer
