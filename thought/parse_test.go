package thought

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/internal/testutil"
)

func TestParse_Minimal(t *testing.T) {
	tp, err := Parse(`{"thought":{"reasoning":"check weather","plan":"call the weather tool"}}`, false)
	require.NoError(t, err)
	assert.Equal(t, "check weather", tp.Thought.Reasoning)
	assert.Equal(t, "call the weather tool", tp.Thought.Plan)
	assert.Nil(t, tp.Action)
}

func TestParse_WithAction(t *testing.T) {
	raw := `{
		"thought": {"reasoning": "need the sum", "plan": "use calculator"},
		"action": {"tool": "calculate_sum", "params": {"a": 2, "b": 3}}
	}`
	tp, err := Parse(raw, false)
	require.NoError(t, err)
	require.NotNil(t, tp.Action)
	assert.Equal(t, "calculate_sum", tp.Action.Tool)
	assert.Equal(t, float64(2), tp.Action.Params["a"])
}

func TestParse_StripsFences(t *testing.T) {
	fenced := "```json\n{\"thought\":{\"reasoning\":\"r\",\"plan\":\"p\"}}\n```"
	tp, err := Parse(fenced, false)
	require.NoError(t, err)
	assert.Equal(t, "r", tp.Thought.Reasoning)

	bare := "```\n{\"thought\":{\"reasoning\":\"r2\",\"plan\":\"p2\"}}\n```"
	tp2, err := Parse(bare, false)
	require.NoError(t, err)
	assert.Equal(t, "r2", tp2.Thought.Reasoning)
}

func TestParse_MalformedDocument(t *testing.T) {
	_, err := Parse("this is not a structured document", false)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Raw, "this is not")
}

func TestParse_MissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"no reasoning": `{"thought":{"plan":"p"}}`,
		"no plan":      `{"thought":{"reasoning":"r"}}`,
		"empty fields": `{"thought":{"reasoning":"  ","plan":""}}`,
		"no thought":   `{"action":{"tool":"x"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw, false)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestParse_HistoryPrefix(t *testing.T) {
	raw := `{"thought":{"reasoning":"the user asked again","plan":"answer"}}`

	tp, err := Parse(raw, true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tp.Thought.Reasoning, historyNote))

	// Without history the reasoning is untouched.
	tp2, err := Parse(raw, false)
	require.NoError(t, err)
	assert.Equal(t, "the user asked again", tp2.Thought.Reasoning)
}

func TestRoundTrip(t *testing.T) {
	tp := testutil.NewThoughtBuilder().
		Reasoning("look up the value").
		Plan("call lookup then summarize").
		Action("lookup", map[string]any{"q": "x"}).
		Observation("42").
		NextStep("summarize the result").
		Build()
	tp.ErrorHandling = &core.ErrorHandling{
		Error: "transient failure",
		Recovery: &core.ErrorRecovery{
			LogError:      "transient failure",
			AlternatePlan: "retry once",
			DiscordMessage: &core.DiscordMessage{
				Content:   "retrying",
				Ephemeral: true,
			},
		},
	}

	text, err := Format(tp)
	require.NoError(t, err)

	parsed, err := Parse(text, false)
	require.NoError(t, err)
	assert.Equal(t, tp.Thought, parsed.Thought)
	assert.Equal(t, tp.Action.Tool, parsed.Action.Tool)
	assert.Equal(t, tp.NextStep.Plan, parsed.NextStep.Plan)
	assert.Equal(t, tp.ErrorHandling, parsed.ErrorHandling)
}

func TestFormatDebug(t *testing.T) {
	tp := testutil.NewThoughtBuilder().Reasoning("final").Plan("report").Build()
	session := []*core.ThoughtProcess{
		testutil.NewThoughtBuilder().
			Reasoning("first round").
			Action("lookup", map[string]any{"q": "x"}).
			Observation("42").
			NextStep("keep going").
			Build(),
		tp,
	}

	text, err := FormatDebug(tp, session)
	require.NoError(t, err)

	parsed, err := Parse(text, false)
	require.NoError(t, err)
	require.NotNil(t, parsed.DebugInfo)
	require.Len(t, parsed.DebugInfo.SessionThoughts, 2)
	assert.Equal(t, "first round", parsed.DebugInfo.SessionThoughts[0].Reasoning)
	assert.Equal(t, "keep going", parsed.DebugInfo.SessionThoughts[0].NextStep)
	assert.NotEmpty(t, parsed.DebugInfo.MemoryNote)

	// tp itself is never mutated.
	assert.Nil(t, tp.DebugInfo)
}

func TestStripFences_Passthrough(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, StripFences("```{\"a\":1}```"))
}
