// Package summary turns an ordered transcript plus a depth profile into
// a structured document via the language model, with one strict retry
// around malformed output.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whispr/internal/depth"
	"whispr/internal/extract"
	"whispr/internal/models"
	"whispr/internal/providers"
	"whispr/internal/transcribe"
	"whispr/internal/util"
)

var (
	// ErrEmptyTranscript is returned before any model call when the
	// segment sequence carries no text.
	ErrEmptyTranscript = errors.New("transcript is empty")
	// ErrModelUnavailable wraps transport-level completion failures.
	ErrModelUnavailable = errors.New("language model unavailable")
	// ErrMalformedOutput means extraction failed twice, including the
	// strict JSON-only retry.
	ErrMalformedOutput = errors.New("model output could not be parsed into a document")
)

type Options struct {
	WindowSize    int
	WindowOverlap int
	MaxTokens     int
}

type Orchestrator struct {
	completer providers.Completer
	opts      Options
}

func New(completer providers.Completer, opts Options) *Orchestrator {
	if opts.WindowSize <= 0 {
		opts.WindowSize = 24000
	}
	if opts.WindowOverlap < 0 || opts.WindowOverlap >= opts.WindowSize {
		opts.WindowOverlap = 800
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	return &Orchestrator{completer: completer, opts: opts}
}

// Summarize produces a finalized StructuredDocument. Long transcripts
// are split into rune-budget windows, summarized per window and merged;
// section ids and order are assigned here and never change downstream.
func (o *Orchestrator) Summarize(ctx context.Context, segments []models.TranscriptSegment, profile depth.Profile) (models.StructuredDocument, error) {
	if len(segments) == 0 {
		return models.StructuredDocument{}, ErrEmptyTranscript
	}
	text := transcribe.JoinText(segments)
	if strings.TrimSpace(text) == "" {
		return models.StructuredDocument{}, ErrEmptyTranscript
	}

	windows := util.WindowText(text, o.opts.WindowSize, o.opts.WindowOverlap)
	if len(windows) == 0 {
		return models.StructuredDocument{}, ErrEmptyTranscript
	}

	if len(windows) == 1 {
		doc, err := o.summarizeWindow(ctx, profile, windows[0], "")
		if err != nil {
			return models.StructuredDocument{}, err
		}
		return finalize(doc), nil
	}

	docs := make([]models.StructuredDocument, 0, len(windows))
	for i, w := range windows {
		label := fmt.Sprintf("part %d of %d", i+1, len(windows))
		doc, err := o.summarizeWindow(ctx, profile, w, label)
		if err != nil {
			return models.StructuredDocument{}, err
		}
		docs = append(docs, doc)
	}
	return finalize(mergeWindows(docs)), nil
}

func (o *Orchestrator) summarizeWindow(ctx context.Context, profile depth.Profile, transcript, windowLabel string) (models.StructuredDocument, error) {
	system, prompt := BuildSummaryPrompt(profile, transcript, windowLabel)

	raw, err := o.complete(ctx, system, prompt, false)
	if err == nil {
		if doc, res := extract.Document(raw); res.OK() {
			return doc, nil
		}
	}

	// One retry with the strict JSON-only instruction, covering both a
	// failed transport attempt and a malformed first answer.
	raw, retryErr := o.complete(ctx, system, prompt+strictSuffix, true)
	if retryErr != nil {
		return models.StructuredDocument{}, fmt.Errorf("%w: %w", ErrModelUnavailable, retryErr)
	}
	doc, res := extract.Document(raw)
	if !res.OK() {
		return models.StructuredDocument{}, fmt.Errorf("%w: %s (%s)", ErrMalformedOutput, res.Outcome, res.Detail)
	}
	return doc, nil
}

func (o *Orchestrator) complete(ctx context.Context, system, prompt string, jsonOnly bool) (string, error) {
	resp, _, err := o.completer.Complete(ctx, providers.CompletionRequest{
		Operation:   "summarize",
		System:      system,
		Prompt:      prompt,
		MaxTokens:   o.opts.MaxTokens,
		Temperature: 0.2,
		JSONOnly:    jsonOnly,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// mergeWindows combines per-window documents into one: sections keep
// window order, glossaries union with first definition winning,
// follow-ups deduplicate.
func mergeWindows(docs []models.StructuredDocument) models.StructuredDocument {
	merged := models.StructuredDocument{
		Glossary:          map[string]string{},
		FollowUpQuestions: []string{},
	}
	overviews := make([]string, 0, len(docs))
	seenQuestions := map[string]struct{}{}
	for _, d := range docs {
		if merged.Title == "" {
			merged.Title = d.Title
		}
		if strings.TrimSpace(d.Overview) != "" {
			overviews = append(overviews, strings.TrimSpace(d.Overview))
		}
		merged.Sections = append(merged.Sections, d.Sections...)
		for term, def := range d.Glossary {
			if _, ok := merged.Glossary[term]; !ok {
				merged.Glossary[term] = def
			}
		}
		for _, q := range d.FollowUpQuestions {
			key := strings.ToLower(strings.TrimSpace(q))
			if key == "" {
				continue
			}
			if _, ok := seenQuestions[key]; ok {
				continue
			}
			seenQuestions[key] = struct{}{}
			merged.FollowUpQuestions = append(merged.FollowUpQuestions, q)
		}
	}
	merged.Overview = strings.Join(overviews, " ")
	return merged
}

// finalize assigns stable section ids and order indexes. Ids are
// deterministic for identical inputs so downstream placement stays
// reproducible.
func finalize(doc models.StructuredDocument) models.StructuredDocument {
	for i := range doc.Sections {
		doc.Sections[i].OrderIndex = i
		doc.Sections[i].ID = fmt.Sprintf("sec-%d-%s", i+1, util.ShortHash([]byte(fmt.Sprintf("%d:%s", i, doc.Sections[i].Title)))[:8])
		if doc.Sections[i].KeyPoints == nil {
			doc.Sections[i].KeyPoints = []string{}
		}
	}
	if doc.Glossary == nil {
		doc.Glossary = map[string]string{}
	}
	if doc.FollowUpQuestions == nil {
		doc.FollowUpQuestions = []string{}
	}
	return doc
}
