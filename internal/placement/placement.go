// Package placement assigns each analyzed image to the most relevant
// document section, or marks it unplaced. Relevance combines lexical
// overlap with a language-model adjudication call; false placement is
// worse than no placement, so low-confidence candidates stay unplaced.
package placement

import (
	"context"
	"fmt"
	"log"
	"strings"

	"whispr/internal/extract"
	"whispr/internal/models"
	"whispr/internal/providers"
)

const DefaultMinRelevance = 0.3

type Engine struct {
	completer    providers.Completer
	minRelevance float64
}

func New(completer providers.Completer, minRelevance float64) *Engine {
	if minRelevance <= 0 {
		minRelevance = DefaultMinRelevance
	}
	return &Engine{completer: completer, minRelevance: minRelevance}
}

// Place decides a target section (or none) for every image. Decisions
// are independent of each other: no capacity limits, no global search.
// Output order follows input image order.
func (e *Engine) Place(ctx context.Context, doc models.StructuredDocument, images []models.ImageRecord) []models.PlacementDecision {
	decisions := make([]models.PlacementDecision, 0, len(images))
	for _, img := range images {
		decisions = append(decisions, e.placeOne(ctx, doc, img))
	}
	return decisions
}

func (e *Engine) placeOne(ctx context.Context, doc models.StructuredDocument, img models.ImageRecord) models.PlacementDecision {
	decision := models.PlacementDecision{ImageSourceID: img.SourceID}
	if len(doc.Sections) == 0 {
		decision.Rationale = "document has no sections"
		return decision
	}

	best, bestScore, _ := rankSections(img, doc.Sections)
	decision.Score = bestScore

	verdict, err := e.adjudicate(ctx, doc, img)
	if err != nil {
		// Transport failure degrades to lexical-only placement rather
		// than failing the request.
		log.Printf("placement: adjudication failed for %s: %v", img.SourceID, err)
		if bestScore >= e.minRelevance {
			decision.TargetSectionID = &best.ID
			decision.Rationale = fmt.Sprintf("lexical overlap with %q (adjudication unavailable)", best.Title)
		} else {
			decision.Rationale = "overlap below threshold (adjudication unavailable)"
		}
		return decision
	}

	if verdict.NoFit {
		decision.Rationale = nonEmpty(verdict.Reason, "adjudicator declared no fit")
		return decision
	}
	if bestScore < e.minRelevance {
		decision.Rationale = fmt.Sprintf("overlap %.2f below threshold %.2f", bestScore, e.minRelevance)
		return decision
	}

	target := best
	if sec, ok := doc.SectionByID(strings.TrimSpace(verdict.SectionID)); ok {
		target = sec
	}
	decision.TargetSectionID = &target.ID
	decision.Rationale = nonEmpty(verdict.Reason, fmt.Sprintf("best overlap with %q", target.Title))
	return decision
}

type verdictWire struct {
	SectionID string `json:"section_id"`
	NoFit     bool   `json:"no_fit"`
	Reason    string `json:"reason"`
}

func (e *Engine) adjudicate(ctx context.Context, doc models.StructuredDocument, img models.ImageRecord) (verdictWire, error) {
	system, prompt := buildAdjudicationPrompt(doc, img)
	resp, _, err := e.completer.Complete(ctx, providers.CompletionRequest{
		Operation:   "placement_adjudication",
		System:      system,
		Prompt:      prompt,
		MaxTokens:   512,
		Temperature: 0,
	})
	if err != nil {
		return verdictWire{}, err
	}
	var verdict verdictWire
	if res := extract.Into(resp.Text, &verdict); !res.OK() {
		// An unparseable verdict is treated like a declared no-fit: the
		// lexical gate already guards against forced placement.
		return verdictWire{NoFit: true, Reason: "adjudicator response unparseable"}, nil
	}
	return verdict, nil
}

func buildAdjudicationPrompt(doc models.StructuredDocument, img models.ImageRecord) (string, string) {
	system := "You are a document layout assistant matching one image to the best-fitting section. " +
		"An image belongs in the section it illustrates or supports. If no section fits well, declare no fit. " +
		"Respond with JSON only."
	var b strings.Builder
	b.WriteString("IMAGE:\n")
	fmt.Fprintf(&b, "  Category: %s\n", img.Category)
	fmt.Fprintf(&b, "  Description: %s\n", truncateRunes(img.Description, 300))
	fmt.Fprintf(&b, "  Keywords: %s\n", strings.Join(img.Keywords, ", "))
	if img.OCRText != "" {
		fmt.Fprintf(&b, "  OCR Text: %s\n", truncateRunes(img.OCRText, 300))
	}
	b.WriteString("\nSECTIONS:\n")
	for _, sec := range doc.Sections {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", sec.ID, sec.Title, truncateRunes(sec.BodyText, 200))
	}
	b.WriteString("\nRespond with JSON:\n")
	b.WriteString(`{"section_id": "id of the best-fitting section", "no_fit": false, "reason": "why this image fits there"}`)
	b.WriteString("\nSet no_fit to true and leave section_id empty when no section is a good match.")
	return system, b.String()
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
