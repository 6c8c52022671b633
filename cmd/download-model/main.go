// Standalone tool that converts the st-codesearch-distilroberta-base model
// to ONNX format for hugot embedding.
//
// The conversion script is embedded in the binary so this command works
// when installed via `go install`.
//
// Requires uv (https://docs.astral.sh/uv/) and Python >=3.10.
//
// Usage: download-model <dest>
package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

//go:embed convert-model.py
var script []byte

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: download-model <dest>")
		os.Exit(1)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(dest string) error {
	if modelPresent(dest) {
		fmt.Printf("Model already present at %s\n", dest)
		return nil
	}

	scriptPath, cleanup, err := writeScript()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Converting model to %s...\n", dest)
	if err := convertWithRetry(scriptPath, dest); err != nil {
		return fmt.Errorf("convert model: %w", err)
	}

	fmt.Printf("Model ready at %s\n", dest)
	return nil
}

func modelPresent(dest string) bool {
	for _, name := range []string{
		filepath.Join(dest, "tokenizer.json"),
		filepath.Join(dest, "onnx", "model.onnx"),
	} {
		if _, err := os.Stat(name); err != nil {
			return false
		}
	}
	return true
}

// writeScript materialises the embedded conversion script into a temp file
// and returns its path plus a cleanup func.
func writeScript() (string, func(), error) {
	tmp, err := os.CreateTemp("", "convert-model-*.py")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(script); err != nil {
		_ = os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
}

// convertWithRetry runs the conversion, retrying transient failures
// (usually model download hiccups) with exponential backoff.
func convertWithRetry(scriptPath, dest string) error {
	var err error
	delay := 2 * time.Second

	for attempt := range 4 {
		if attempt > 0 {
			fmt.Fprintf(os.Stderr, "retry in %s: %v\n", delay, err)
			time.Sleep(delay)
			delay *= 2
		}

		cmd := exec.Command("uv", "run", scriptPath, dest)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err = cmd.Run(); err == nil {
			return nil
		}
	}
	return err
}
