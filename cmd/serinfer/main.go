// SPDX-License-Identifier: EPL-2.0

// Command serinfer predicts the emotion and gender of the speaker in one
// audio file.
//
// Usage:
//
//	serinfer [flags] <audio_file>
//
// The model defaults to models/ser_model.onnx run with ONNX Runtime. Its
// companion models/ser_model.yaml, when present, supplies the feature
// constants and label names the model was trained with.
//
// Output:
//
//	Emotion: Happy
//	Gender: Female
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "serinfer: %v\n", err)
		return 1
	}
	return 0
}
