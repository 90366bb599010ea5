// Package thought converts raw model text to and from the typed reasoning
// record (core.ThoughtProcess). Parsing strips optional fenced-code markers,
// decodes the structured document and validates the minimal shape; failures
// surface as *ParseError so callers can build deterministic fallback records
// instead of handling raw panics or generic errors.
package thought

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/reagent/core"
)

// historyNote prefixes the reasoning of a parsed record when prior
// conversation context exists.
const historyNote = "Considering our previous conversation: "

// ParseError reports a completion that failed structural decode or minimal
// shape validation.
type ParseError struct {
	Raw    string // Original model text (before fence stripping)
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse thought process: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse thought process: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes raw model text into a ThoughtProcess. hasHistory indicates
// prior conversation exists, in which case the reasoning is prefixed with a
// contextual note. On any failure a *ParseError is returned.
func Parse(raw string, hasHistory bool) (*core.ThoughtProcess, error) {
	text := StripFences(raw)

	var tp core.ThoughtProcess
	if err := json.Unmarshal([]byte(text), &tp); err != nil {
		return nil, &ParseError{Raw: raw, Reason: "malformed document", Err: err}
	}

	if strings.TrimSpace(tp.Thought.Reasoning) == "" {
		return nil, &ParseError{Raw: raw, Reason: "missing required field thought.reasoning"}
	}
	if strings.TrimSpace(tp.Thought.Plan) == "" {
		return nil, &ParseError{Raw: raw, Reason: "missing required field thought.plan"}
	}

	if hasHistory && !strings.HasPrefix(tp.Thought.Reasoning, historyNote) {
		tp.Thought.Reasoning = historyNote + tp.Thought.Reasoning
	}

	return &tp, nil
}

// StripFences removes a leading/trailing markdown code fence (``` or
// ```json) around the document, leaving inner text untouched.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(text[:idx])
		if first == "" || !strings.HasPrefix(first, "{") {
			text = text[idx+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
