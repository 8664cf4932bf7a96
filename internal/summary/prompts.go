package summary

import (
	"fmt"
	"strings"

	"whispr/internal/depth"
)

const systemPrompt = "You are an expert technical note-taker. Given a transcript, craft a modular summary " +
	"with clear sections, expand acronyms, explain jargon, and vary depth based on the " +
	"listener's self-rated understanding."

const schemaInstructions = `Output STRICT JSON with this schema:
{
  "title": "string",
  "overview": "string",
  "sections": [
    {"title": "string", "body_text": "string", "key_points": ["string"]}
  ],
  "glossary": {"term": "definition"},
  "follow_up_questions": ["string"]
}

Rules:
- sections must be non-empty and follow the transcript's order of ideas.
- glossary keys are the terms exactly as spoken; values explain them.
- If no follow-up questions remain, return an empty array.`

// BuildSummaryPrompt embeds the transcript, the output schema and the
// depth-profile framing into one user prompt.
func BuildSummaryPrompt(profile depth.Profile, transcript string, windowLabel string) (string, string) {
	var b strings.Builder
	b.WriteString("Audience: ")
	b.WriteString(profile.Framing)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Define every term whose technicality exceeds %.2f on a 0-1 scale in the glossary; when in doubt at or below that bar, include it.\n", profile.GlossaryThreshold)
	fmt.Fprintf(&b, "Scale explanation length by roughly %.1fx relative to a plain summary.\n", profile.VerbosityMultiplier)
	if profile.IncludeBackground {
		b.WriteString("Open each section body with a short background paragraph giving context a newcomer needs.\n")
	}
	b.WriteString("\n")
	b.WriteString(schemaInstructions)
	b.WriteString("\n\n")
	if windowLabel != "" {
		fmt.Fprintf(&b, "This is %s of a longer talk; summarize only this part.\n\n", windowLabel)
	}
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	return systemPrompt, b.String()
}

// strictSuffix is appended on the retry after a malformed response.
const strictSuffix = "\n\nIMPORTANT: Your previous answer could not be parsed. Return ONLY the JSON object described above. No prose, no code fences, no explanations."
