// Package ocr extracts text from uploaded images and slide decks. OCR
// has no error path: absence of extractable text is a valid result, so
// adapters return an empty string rather than failing.
package ocr

import (
	"bytes"
	"context"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"whispr/internal/util"
)

type Engine interface {
	// Text returns the text found in the image, empty when none.
	Text(ctx context.Context, image []byte) string
}

// TesseractEngine shells out to the tesseract binary. Failures are
// logged and swallowed per the no-error contract.
type TesseractEngine struct {
	binary string
}

func NewTesseractEngine(binary string) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	return &TesseractEngine{binary: binary}
}

func (t *TesseractEngine) Text(ctx context.Context, image []byte) string {
	if len(image) == 0 {
		return ""
	}
	dir, err := os.MkdirTemp("", "whispr-ocr-*")
	if err != nil {
		log.Printf("ocr: temp dir: %v", err)
		return ""
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "input")
	if err := os.WriteFile(path, image, 0o600); err != nil {
		log.Printf("ocr: write image: %v", err)
		return ""
	}

	cmd := exec.CommandContext(ctx, t.binary, path, "stdout", "-l", "eng")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		log.Printf("ocr: %s failed: %v (%s)", t.binary, err, strings.TrimSpace(stderr.String()))
		return ""
	}
	return util.SanitizeText(stdout.String())
}

// NullEngine returns no text for every image; used when no OCR binary
// is configured and in tests.
type NullEngine struct{}

func (NullEngine) Text(ctx context.Context, image []byte) string {
	_ = ctx
	_ = image
	return ""
}
