package core

// ThoughtProcess is the structured record produced by one reasoning round.
// Its JSON form is both the format the model is instructed to emit and the
// format persisted to memory and returned to callers.
type ThoughtProcess struct {
	Thought       Thought        `json:"thought"`
	Action        *Action        `json:"action,omitempty"`
	Observation   *Observation   `json:"observation,omitempty"`
	NextStep      *NextStep      `json:"next_step,omitempty"`
	ErrorHandling *ErrorHandling `json:"error_handling,omitempty"`
	DebugInfo     *DebugInfo     `json:"debug_info,omitempty"`
}

// Thought carries the model's reasoning and its plan for the round. Both
// fields are required for a record to be considered well formed.
type Thought struct {
	Reasoning string `json:"reasoning"`
	Plan      string `json:"plan"`
}

// Action is the model's request to execute a named tool with parameters.
type Action struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// Observation holds the result of an executed tool call.
type Observation struct {
	Result any `json:"result"`
}

// NextStep is the model's continuation plan after observing a tool result.
type NextStep struct {
	Plan string `json:"plan"`
}

// ErrorHandling describes a failure encountered during the round together
// with the recovery the agent intends to take.
type ErrorHandling struct {
	Error    string         `json:"error"`
	Recovery *ErrorRecovery `json:"recovery,omitempty"`
}

// ErrorRecovery details how a failure is handled: what gets logged, the
// alternate plan, and an optional user-facing chat notice.
type ErrorRecovery struct {
	LogError       string          `json:"log_error"`
	AlternatePlan  string          `json:"alternate_plan"`
	DiscordMessage *DiscordMessage `json:"discord_message,omitempty"`
}

// DiscordMessage is an optional user-visible notice emitted as part of error
// recovery. The chat front end decides how to deliver it.
type DiscordMessage struct {
	Content   string `json:"content"`
	Ephemeral bool   `json:"ephemeral"`
}

// DebugInfo augments a formatted record with in-session reasoning history.
// Attached only when formatting in debug mode.
type DebugInfo struct {
	SessionThoughts []SessionThought `json:"session_thoughts"`
	MemoryNote      string           `json:"memory_note"`
}

// SessionThought is a reduced view of one in-session reasoning round used in
// DebugInfo.
type SessionThought struct {
	Reasoning   string       `json:"reasoning"`
	Plan        string       `json:"plan"`
	Action      *Action      `json:"action,omitempty"`
	Observation *Observation `json:"observation,omitempty"`
	NextStep    string       `json:"next_step,omitempty"`
}
