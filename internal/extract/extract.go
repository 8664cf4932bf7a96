// Package extract recovers structured data from free-form language
// model output. Generative text has no enforced schema, so recovery is
// a staged parse with tagged outcomes rather than a single unmarshal:
// callers can always tell "nothing parseable" apart from "parseable but
// missing required fields".
package extract

import (
	"encoding/json"
	"strings"
)

type Outcome string

const (
	// OutcomeSuccess means a structurally valid value was recovered.
	OutcomeSuccess Outcome = "success"
	// OutcomeNoStructure means no parseable JSON was found anywhere in
	// the response.
	OutcomeNoStructure Outcome = "no_structure_found"
	// OutcomeIncomplete means JSON was found but it does not satisfy
	// the required shape (wrong type or missing required fields).
	OutcomeIncomplete Outcome = "incomplete_structure"
)

type Result struct {
	Outcome Outcome
	// Raw holds the recovered JSON text on success.
	Raw    string
	Detail string
}

func (r Result) OK() bool { return r.Outcome == OutcomeSuccess }

// Structure locates JSON in a model response. Ordered attempts, first
// success wins: (a) the whole response parses as JSON; (b) the largest
// balanced brace- or bracket-delimited substring parses; (c) code-fence
// markers and surrounding prose are stripped and (a)-(b) retried.
// Never panics or errors on malformed input.
func Structure(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Outcome: OutcomeNoStructure, Detail: "empty response"}
	}
	for _, candidate := range []string{trimmed, stripWrapping(trimmed)} {
		if candidate == "" {
			continue
		}
		if isJSONValue(candidate) {
			return Result{Outcome: OutcomeSuccess, Raw: candidate}
		}
		if span := largestBalanced(candidate); span != "" && isJSONValue(span) {
			return Result{Outcome: OutcomeSuccess, Raw: span}
		}
	}
	return Result{Outcome: OutcomeNoStructure, Detail: "no parseable JSON in response"}
}

// Into recovers JSON from raw and decodes it into v. A recovered value
// that cannot decode into v yields OutcomeIncomplete, not NoStructure.
func Into(raw string, v any) Result {
	res := Structure(raw)
	if !res.OK() {
		return res
	}
	if err := json.Unmarshal([]byte(res.Raw), v); err != nil {
		return Result{Outcome: OutcomeIncomplete, Detail: "recovered JSON does not match required shape: " + err.Error()}
	}
	return res
}

func isJSONValue(s string) bool {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return false
	}
	return json.Valid([]byte(s))
}

// largestBalanced returns the longest balanced {...} or [...] span,
// tracking string literals and escapes so braces inside strings do not
// break the depth count.
func largestBalanced(s string) string {
	best := ""
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '{' && c != '[' {
			continue
		}
		if end := matchBalanced(s, i); end > i {
			span := s[i : end+1]
			if len(span) > len(best) {
				best = span
			}
			// Skip past this span; nested spans are shorter.
			i = end
		}
	}
	return best
}

func matchBalanced(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stripWrapping removes code-fence markers and any prose before the
// first fence or after the last one.
func stripWrapping(s string) string {
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		// Drop a language tag like "json" directly after the fence.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			tag := strings.TrimSpace(s[:nl])
			if tag == "" || isFenceTag(tag) {
				s = s[nl+1:]
			}
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

func isFenceTag(tag string) bool {
	for _, r := range tag {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(tag) <= 10
}
