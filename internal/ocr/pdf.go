package ocr

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"whispr/internal/util"
)

// SlideDeckText extracts per-page text from an uploaded PDF slide deck.
// Decks arrive alongside audio when the speaker exports slides instead
// of screenshots; each page becomes one pseudo-image text block.
func SlideDeckText(deck []byte) ([]string, error) {
	reader := bytes.NewReader(deck)
	r, err := pdf.NewReader(reader, int64(len(deck)))
	if err != nil {
		return nil, fmt.Errorf("open slide deck: %w", err)
	}
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page degrades to empty text.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, util.SanitizeText(text))
	}
	return pages, nil
}

// DeckPlainText flattens a whole deck for diagnostics and artifacts.
func DeckPlainText(deck []byte) (string, error) {
	pages, err := SlideDeckText(deck)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range pages {
		if p == "" {
			continue
		}
		if _, err := io.WriteString(&b, p+"\n\n"); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(b.String()), nil
}
