// Package depth maps a listener's self-rated understanding level onto
// the prompt-construction parameters used by summarization. Resolution
// is pure and total over the valid range; the six profiles form a
// monotonic scale where lower levels request strictly more explanatory
// content.
package depth

import "whispr/internal/models"

// Profile fixes how much enrichment a summarization prompt asks for.
type Profile struct {
	Level models.UnderstandingLevel

	// GlossaryThreshold is how technical a term must be before it gets
	// a glossary entry, on a 0..1 scale. Lower means more terms defined.
	GlossaryThreshold float64

	// VerbosityMultiplier scales explanation length relative to the
	// baseline section summary.
	VerbosityMultiplier float64

	// IncludeBackground requests dedicated background/context paragraphs.
	IncludeBackground bool

	// Framing is the system-prompt sentence describing the audience.
	Framing string
}

var profiles = [...]Profile{
	{
		Level:               0,
		GlossaryThreshold:   0.0,
		VerbosityMultiplier: 2.0,
		IncludeBackground:   true,
		Framing:             "The listener is a complete novice: define every acronym and technical term, add real-world analogies, and assume no prior background.",
	},
	{
		Level:               1,
		GlossaryThreshold:   0.15,
		VerbosityMultiplier: 1.8,
		IncludeBackground:   true,
		Framing:             "The listener is a beginner: define acronyms and most technical terms, include extensive explanations and analogies.",
	},
	{
		Level:               2,
		GlossaryThreshold:   0.35,
		VerbosityMultiplier: 1.5,
		IncludeBackground:   true,
		Framing:             "The listener has some exposure: explain jargon and niche terms, keep analogies where they clarify.",
	},
	{
		Level:               3,
		GlossaryThreshold:   0.55,
		VerbosityMultiplier: 1.0,
		IncludeBackground:   false,
		Framing:             "The listener is moderately familiar with the field: provide moderate enrichment with key clarifications only.",
	},
	{
		Level:               4,
		GlossaryThreshold:   0.8,
		VerbosityMultiplier: 0.7,
		IncludeBackground:   false,
		Framing:             "The listener is experienced: keep enrichment light, focus on formatted bullet summaries, call out only non-intuitive terms.",
	},
	{
		Level:               5,
		GlossaryThreshold:   0.95,
		VerbosityMultiplier: 0.5,
		IncludeBackground:   false,
		Framing:             "The listener is an expert: terse summaries only, no definitions unless a term is genuinely obscure.",
	},
}

// Resolve returns the fixed profile for a level. The only failure path
// is range validation; no model call depends on an unvalidated level.
func Resolve(level models.UnderstandingLevel) (Profile, error) {
	if err := level.Validate(); err != nil {
		return Profile{}, err
	}
	return profiles[int(level)], nil
}
