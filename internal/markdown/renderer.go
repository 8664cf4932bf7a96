// Package markdown renders an enriched document to a single markdown
// string. Rendering is pure and deterministic: identical input yields
// byte-identical output.
package markdown

import (
	"fmt"
	"sort"
	"strings"

	"whispr/internal/models"
)

// Render lays out the note: title, overview, sections in order with
// their images directly beneath the heading, then glossary, follow-up
// questions, and an Additional Images section for anything unplaced.
func Render(enriched models.EnrichedDocument) string {
	doc := enriched.Document
	var lines []string

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = "Untitled Session"
	}
	lines = append(lines, "# "+title, "")

	if overview := strings.TrimSpace(doc.Overview); overview != "" {
		lines = append(lines, "## Overview", overview, "")
	}

	rationales := rationalesByImage(enriched.Decisions)

	sections := orderedSections(doc.Sections)
	for _, sec := range sections {
		secTitle := strings.TrimSpace(sec.Title)
		if secTitle == "" {
			secTitle = "Section"
		}
		lines = append(lines, "## "+secTitle)
		for _, img := range enriched.SectionImages[sec.ID] {
			lines = append(lines, imageLine(img))
			if reason := strings.TrimSpace(rationales[img.SourceID]); reason != "" {
				lines = append(lines, "*"+reason+"*")
			}
			lines = append(lines, "")
		}
		if body := strings.TrimSpace(sec.BodyText); body != "" {
			lines = append(lines, body, "")
		}
		if len(sec.KeyPoints) > 0 {
			lines = append(lines, "### Key Points")
			for _, point := range sec.KeyPoints {
				lines = append(lines, "- "+point)
			}
			lines = append(lines, "")
		}
	}

	if len(doc.Glossary) > 0 {
		lines = append(lines, "## Glossary")
		terms := make([]string, 0, len(doc.Glossary))
		for term := range doc.Glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", term, doc.Glossary[term]))
		}
		lines = append(lines, "")
	}

	if len(doc.FollowUpQuestions) > 0 {
		lines = append(lines, "## Follow-up Questions")
		for _, q := range doc.FollowUpQuestions {
			lines = append(lines, "- "+q)
		}
		lines = append(lines, "")
	}

	if len(enriched.UnplacedImages) > 0 {
		lines = append(lines, "## Additional Images")
		for _, img := range enriched.UnplacedImages {
			lines = append(lines, imageLine(img), "")
		}
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

func imageLine(img models.ImageRecord) string {
	alt := strings.TrimSpace(img.Description)
	if alt == "" {
		alt = "Image"
	}
	target := img.Filename
	if target == "" {
		target = img.SourceID
	}
	return fmt.Sprintf("![%s](%s)", alt, target)
}

// orderedSections sorts a copy by OrderIndex without mutating the
// document.
func orderedSections(sections []models.DocumentSection) []models.DocumentSection {
	out := make([]models.DocumentSection, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func rationalesByImage(decisions []models.PlacementDecision) map[string]string {
	out := make(map[string]string, len(decisions))
	for _, d := range decisions {
		if d.Placed() {
			out[d.ImageSourceID] = d.Rationale
		}
	}
	return out
}
