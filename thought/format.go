package thought

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/reagent/core"
)

// Format serializes a ThoughtProcess back to its structured text form, the
// same document shape Parse accepts.
func Format(tp *core.ThoughtProcess) (string, error) {
	b, err := json.MarshalIndent(tp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format thought process: %w", err)
	}
	return string(b), nil
}

// FormatDebug serializes tp augmented with a debug_info block carrying the
// reduced in-session reasoning history and a note that relevant memory was
// considered. tp itself is not mutated.
func FormatDebug(tp *core.ThoughtProcess, session []*core.ThoughtProcess) (string, error) {
	thoughts := make([]core.SessionThought, 0, len(session))
	for _, s := range session {
		st := core.SessionThought{
			Reasoning:   s.Thought.Reasoning,
			Plan:        s.Thought.Plan,
			Action:      s.Action,
			Observation: s.Observation,
		}
		if s.NextStep != nil {
			st.NextStep = s.NextStep.Plan
		}
		thoughts = append(thoughts, st)
	}

	augmented := *tp
	augmented.DebugInfo = &core.DebugInfo{
		SessionThoughts: thoughts,
		MemoryNote:      "Relevant memories were considered while generating this response",
	}
	return Format(&augmented)
}
