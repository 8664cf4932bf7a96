// Package vision produces one ImageRecord per uploaded image by
// combining OCR text with a language-model classification call. A bad
// image never aborts the run: any failure degrades to a record that
// keeps the OCR text and carries category "unknown" at confidence 0.
package vision

import (
	"context"
	"fmt"
	"log"
	"strings"

	"whispr/internal/extract"
	"whispr/internal/models"
	"whispr/internal/ocr"
	"whispr/internal/providers"
)

type Analyzer struct {
	completer providers.Completer
	engine    ocr.Engine
	maxTokens int
}

func New(completer providers.Completer, engine ocr.Engine, maxTokens int) *Analyzer {
	if engine == nil {
		engine = ocr.NullEngine{}
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Analyzer{completer: completer, engine: engine, maxTokens: maxTokens}
}

type analysisWire struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Category    string   `json:"category"`
	Confidence  float64  `json:"confidence"`
	IsSlide     bool     `json:"is_slide"`
	IsDiagram   bool     `json:"is_diagram"`
	IsPhoto     bool     `json:"is_photo"`
}

// Analyze runs OCR and the classification call for one image. Empty OCR
// output is a valid result, not an error.
func (a *Analyzer) Analyze(ctx context.Context, sourceID, filename string, image []byte, talkContext string) models.ImageRecord {
	ocrText := a.engine.Text(ctx, image)

	system, prompt := buildAnalysisPrompt(ocrText, talkContext)
	resp, _, err := a.completer.Complete(ctx, providers.CompletionRequest{
		Operation:   "vision_analysis",
		System:      system,
		Prompt:      prompt,
		MaxTokens:   a.maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		log.Printf("vision: analysis call failed for %s: %v", sourceID, err)
		return models.DegradedImageRecord(sourceID, filename, ocrText)
	}

	var wire analysisWire
	if res := extract.Into(resp.Text, &wire); !res.OK() {
		log.Printf("vision: extraction failed for %s: %s (%s)", sourceID, res.Outcome, res.Detail)
		return models.DegradedImageRecord(sourceID, filename, ocrText)
	}

	keywords := wire.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return models.ImageRecord{
		SourceID:    sourceID,
		Filename:    filename,
		OCRText:     ocrText,
		Description: strings.TrimSpace(wire.Description),
		Keywords:    keywords,
		Category:    normalizeCategory(wire),
		Confidence:  clamp01(wire.Confidence),
	}
}

func buildAnalysisPrompt(ocrText, talkContext string) (string, string) {
	system := "You are an image analysis assistant. Based on the OCR text extracted from an image, " +
		"provide a structured analysis. Determine whether this is a slide, diagram, photo or screenshot, " +
		"and extract key information. Respond with JSON only."
	var b strings.Builder
	if talkContext != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", talkContext)
	}
	b.WriteString("OCR Text:\n")
	if strings.TrimSpace(ocrText) == "" {
		b.WriteString("(No text detected)")
	} else {
		b.WriteString(truncateRunes(ocrText, 3000))
	}
	b.WriteString("\n\nRespond with JSON:\n")
	b.WriteString(`{"description": "one paragraph describing the image content", "keywords": ["keyword1", "keyword2"], "category": "slide|diagram|photo|screenshot", "confidence": 0.0}`)
	return system, b.String()
}

func normalizeCategory(w analysisWire) string {
	switch strings.ToLower(strings.TrimSpace(w.Category)) {
	case "slide", "diagram", "photo", "screenshot":
		return strings.ToLower(strings.TrimSpace(w.Category))
	}
	// Older prompt variants answered with boolean flags instead.
	switch {
	case w.IsSlide:
		return "slide"
	case w.IsDiagram:
		return "diagram"
	case w.IsPhoto:
		return "photo"
	}
	return models.CategoryUnknown
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
