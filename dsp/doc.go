// SPDX-License-Identifier: EPL-2.0

// Package dsp holds the spectral building blocks used for feature
// extraction: a periodic Hann window, a centered short-time power
// spectrum, Slaney-style mel filterbanks, decibel conversion and framed RMS.
//
// Frames are centered with zero padding and the mel scale is Slaney's
// (linear below 1 kHz, logarithmic above, area-normalized triangles), the
// conventions most speech models are trained with. FFTs come from gonum's
// dsp/fourier and the filterbank product from gonum's mat.
//
// Matrices are frequency-major: row r is a frequency or mel bin, column t a
// frame.
package dsp
