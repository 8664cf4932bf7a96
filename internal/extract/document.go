package extract

import (
	"encoding/json"
	"strings"

	"whispr/internal/models"
)

// docWire is the schema requested from the model. Models are inconsistent
// about field names, so body text accepts "body_text" or "summary" and
// the glossary accepts an object map or a list of term/definition pairs.
type docWire struct {
	Title             string        `json:"title"`
	Overview          string        `json:"overview"`
	Sections          []sectionWire `json:"sections"`
	Glossary          glossaryWire  `json:"glossary"`
	FollowUpQuestions []string      `json:"follow_up_questions"`
}

type sectionWire struct {
	Title     string   `json:"title"`
	BodyText  string   `json:"body_text"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

type glossaryWire map[string]string

func (g *glossaryWire) UnmarshalJSON(b []byte) error {
	out := map[string]string{}
	var asMap map[string]string
	if err := json.Unmarshal(b, &asMap); err == nil {
		*g = asMap
		return nil
	}
	var asList []struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
	}
	if err := json.Unmarshal(b, &asList); err == nil {
		for _, e := range asList {
			if strings.TrimSpace(e.Term) != "" {
				out[e.Term] = e.Definition
			}
		}
		*g = out
		return nil
	}
	// Unrecognized glossary shape is dropped, not fatal.
	*g = out
	return nil
}

// Document recovers a StructuredDocument from a model response. A parsed
// object missing sections, or with an empty sections list, is an
// incomplete structure, never a partial success. Section ids and order
// are not assigned here; the summarization orchestrator owns creation.
func Document(raw string) (models.StructuredDocument, Result) {
	var wire docWire
	res := Into(raw, &wire)
	if !res.OK() {
		return models.StructuredDocument{}, res
	}
	if len(wire.Sections) == 0 {
		return models.StructuredDocument{}, Result{Outcome: OutcomeIncomplete, Detail: "document has no sections"}
	}
	doc := models.StructuredDocument{
		Title:             strings.TrimSpace(wire.Title),
		Overview:          strings.TrimSpace(wire.Overview),
		Glossary:          map[string]string(wire.Glossary),
		FollowUpQuestions: wire.FollowUpQuestions,
	}
	if doc.Glossary == nil {
		doc.Glossary = map[string]string{}
	}
	if doc.FollowUpQuestions == nil {
		doc.FollowUpQuestions = []string{}
	}
	for _, s := range wire.Sections {
		body := s.BodyText
		if body == "" {
			body = s.Summary
		}
		points := s.KeyPoints
		if points == nil {
			points = []string{}
		}
		doc.Sections = append(doc.Sections, models.DocumentSection{
			Title:     strings.TrimSpace(s.Title),
			BodyText:  strings.TrimSpace(body),
			KeyPoints: points,
		})
	}
	return doc, res
}
