package placement

import (
	"strings"

	"whispr/internal/models"
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"are": {}, "was": {}, "were": {}, "from": {}, "have": {}, "has": {},
	"not": {}, "you": {}, "your": {}, "its": {}, "his": {}, "her": {},
	"they": {}, "them": {}, "will": {}, "can": {}, "what": {}, "when": {},
	"how": {}, "why": {}, "into": {}, "about": {}, "which": {}, "their": {},
}

// tokenize lowercases and splits on non-alphanumerics, dropping
// stopwords and fragments shorter than three characters.
func tokenize(text string) map[string]struct{} {
	out := map[string]struct{}{}
	var b strings.Builder
	flush := func() {
		if b.Len() >= 3 {
			w := b.String()
			if _, stop := stopwords[w]; !stop {
				out[w] = struct{}{}
			}
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}

func imageTokens(img models.ImageRecord) map[string]struct{} {
	tokens := tokenize(img.OCRText)
	for _, k := range img.Keywords {
		for t := range tokenize(k) {
			tokens[t] = struct{}{}
		}
	}
	return tokens
}

func sectionTokens(sec models.DocumentSection) map[string]struct{} {
	text := sec.Title + " " + sec.BodyText + " " + strings.Join(sec.KeyPoints, " ")
	return tokenize(text)
}

// overlapScore is the fraction of the image's terms found in the
// section, in [0,1]. An image with no usable terms scores 0 everywhere.
func overlapScore(img map[string]struct{}, sec map[string]struct{}) float64 {
	if len(img) == 0 {
		return 0
	}
	hits := 0
	for t := range img {
		if _, ok := sec[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(img))
}

// rankSections scores every section for one image. The best candidate
// is the highest overlap; ties resolve to the earlier order index, so
// ranking is deterministic for identical inputs.
func rankSections(img models.ImageRecord, sections []models.DocumentSection) (best models.DocumentSection, bestScore float64, scores map[string]float64) {
	tokens := imageTokens(img)
	scores = make(map[string]float64, len(sections))
	bestScore = -1
	for _, sec := range sections {
		score := overlapScore(tokens, sectionTokens(sec))
		scores[sec.ID] = score
		// Sections arrive ordered by OrderIndex, so strict > keeps the
		// earlier section on ties.
		if score > bestScore {
			best = sec
			bestScore = score
		}
	}
	if bestScore < 0 {
		bestScore = 0
	}
	return best, bestScore, scores
}
