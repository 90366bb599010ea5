package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/internal/util"
	"github.com/hupe1980/reagent/logging"
	"github.com/hupe1980/reagent/prompt"
	"github.com/hupe1980/reagent/thought"
	"github.com/hupe1980/reagent/tool"
)

const maxIterationsNote = " (Reached maximum iterations)"

// finishSignals are the substrings of a continuation plan that end the loop.
// The substring match on free-form plan text is a deliberate behavioral
// contract; callers relying on it should not expect a structured flag.
var finishSignals = []string{"finish", "complete", "done"}

// importance hints attached to journaled records.
const (
	importanceDefault     = 0.5
	importanceToolSuccess = 0.8
)

// Result is the outcome of one Process invocation: the formatted final
// reasoning record plus the responses of every tool call that actually
// executed, in order.
type Result struct {
	// Content is the serialized final ThoughtProcess.
	Content string
	// ToolResults accumulates successful tool responses in execution order.
	ToolResults []core.ToolResponse
	// FinalThought is the record Content was formatted from.
	FinalThought *core.ThoughtProcess
	// Iterations counts the reasoning rounds that ran.
	Iterations int
	// TokenCount sums the token counts reported by the model provider.
	TokenCount int
}

// Options configures an Orchestrator.
type Options struct {
	// Memory receives an async journal write for every reasoning record.
	// Nil disables persistence.
	Memory core.MemoryProvider
	// Prompts overrides the default prompt generator.
	Prompts core.PromptGenerator
	// MaxIterations bounds the reasoning rounds per invocation. Zero or
	// negative falls back to 3.
	MaxIterations int
	// Debug augments the returned record with in-session reasoning history.
	Debug bool
	// JournalBuffer sets the persistence queue capacity.
	JournalBuffer int
	Logger        logging.Logger
}

// Orchestrator drives the bounded reason-act-observe-plan loop. Construct one
// per process via New and share it; invocations are independent and safe to
// run concurrently.
type Orchestrator struct {
	model         core.ModelProvider
	manager       core.ToolManager
	prompts       core.PromptGenerator
	invoker       *tool.Invoker
	journal       *Journal
	logger        logging.Logger
	maxIterations int
	debug         bool
}

// New creates an Orchestrator around a model provider and tool manager. All
// collaborators are passed in explicitly; there is no process-global state.
func New(model core.ModelProvider, manager core.ToolManager, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxIterations: 3,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 3
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.NewGenerator()
	}

	o := &Orchestrator{
		model:         model,
		manager:       manager,
		prompts:       opts.Prompts,
		invoker:       tool.NewInvoker(manager, func(io *tool.InvokerOptions) { io.Logger = opts.Logger }),
		logger:        opts.Logger,
		maxIterations: opts.MaxIterations,
		debug:         opts.Debug,
	}
	if opts.Memory != nil {
		o.journal = NewJournal(opts.Memory, func(jo *JournalOptions) {
			jo.BufferSize = opts.JournalBuffer
			jo.Logger = opts.Logger
		})
	}
	return o
}

// Close flushes the persistence journal. Call once the orchestrator is no
// longer needed.
func (o *Orchestrator) Close() {
	if o.journal != nil {
		o.journal.Close()
	}
}

// Process runs one reasoning session for input on behalf of userID. history
// is prior conversation replayed to the model. The returned Result is always
// well formed: every failure inside the loop is converted into a record whose
// error_handling block explains what happened, and no error or panic escapes
// this boundary.
func (o *Orchestrator) Process(ctx context.Context, input, userID string, history []core.Message) (res *Result) {
	invocationID := util.NewID()
	logger := o.logger

	defer func() {
		if r := recover(); r != nil {
			logger.Error("orchestrator.panic", "invocation_id", invocationID, "panic", fmt.Sprintf("%v", r))
			tp := o.errorRecord(fmt.Sprintf("unexpected error during processing: %v", r))
			res = o.finish(tp, nil, nil, 0, 0)
		}
	}()

	logger.Info("orchestrator.process.start", "invocation_id", invocationID, "user_id", userID)

	var (
		toolResults []core.ToolResponse
		session     []*core.ThoughtProcess
		finalTP     *core.ThoughtProcess
		tokenCount  int
		iterations  int
		completed   bool
	)

	tools, err := o.manager.GetAvailableTools(ctx)
	if err != nil {
		logger.Error("orchestrator.catalog.error", "invocation_id", invocationID, "error", err.Error())
		tp := o.errorRecord(fmt.Sprintf("failed to list available tools: %v", err))
		o.persist(tp, userID, 0, importanceDefault)
		return o.finish(tp, nil, session, 0, tokenCount)
	}

	currentInput := input

	for iteration := 0; iteration < o.maxIterations; iteration++ {
		iterations = iteration + 1

		// REASON
		promptText := o.prompts.GeneratePrompt(currentInput, tools, history)
		resp, err := o.model.GenerateResponse(ctx, promptText, history)
		if err != nil {
			logger.Error("orchestrator.model.error", "invocation_id", invocationID, "error", err.Error())
			tp := o.errorRecord(fmt.Sprintf("model call failed: %v", err))
			o.persist(tp, userID, iteration, importanceDefault)
			return o.finish(tp, toolResults, session, iterations, tokenCount)
		}
		tokenCount += resp.TokenCount

		tp, perr := thought.Parse(resp.Content, len(history) > 0)
		if perr != nil {
			// Recovered locally; a later round may still succeed.
			logger.Warn("orchestrator.parse.error", "invocation_id", invocationID, "error", perr.Error())
			tp = o.parseFallback(perr)
			o.persist(tp, userID, iteration, importanceDefault)
			session = append(session, tp)
			finalTP = tp
			continue
		}
		session = append(session, tp)
		finalTP = tp

		// No action requested: the model answered directly.
		if tp.Action == nil {
			o.persist(tp, userID, iteration, importanceDefault)
			completed = true
			break
		}

		// VALIDATE_PARAMS + EXECUTE_TOOL
		toolResp, invErr := o.invoker.Invoke(ctx, tp.Action)
		if invErr != nil {
			var notFound *tool.ToolNotFoundError
			if errors.As(invErr, &notFound) {
				tp.ErrorHandling = o.errorHandling(
					fmt.Sprintf("Tool %s not found", notFound.Tool),
					fmt.Sprintf("Requested tool %q is not in the catalog", notFound.Tool),
				)
				o.persist(tp, userID, iteration, importanceDefault)
				return o.finish(tp, toolResults, session, iterations, tokenCount)
			}

			var missing *tool.MissingParametersError
			if errors.As(invErr, &missing) {
				tp.ErrorHandling = o.errorHandling(
					fmt.Sprintf("Missing required parameters: %s", strings.Join(missing.Fields, ", ")),
					fmt.Sprintf("Tool %q was called without: %s", missing.Tool, strings.Join(missing.Fields, ", ")),
				)
				o.persist(tp, userID, iteration, importanceDefault)
				completed = true
				break
			}

			// Unexpected invoker failure, treated like an execution error.
			tp.ErrorHandling = o.errorHandling(invErr.Error(), invErr.Error())
			o.persist(tp, userID, iteration, importanceDefault)
			return o.finish(tp, toolResults, session, iterations, tokenCount)
		}

		if !toolResp.Success {
			// Execution failed: escalate and terminate, bypassing the
			// normal result accumulation.
			tp.ErrorHandling = o.errorHandling(toolResp.Error, toolResp.Error)
			o.persist(tp, userID, iteration, importanceDefault)
			return o.finish(tp, toolResults, session, iterations, tokenCount)
		}

		toolResults = append(toolResults, toolResp)
		tp.Observation = &core.Observation{Result: toolResp.Data}
		o.persist(tp, userID, iteration, importanceToolSuccess)

		// PLAN_NEXT
		plan, planTokens := o.planNext(ctx, tp)
		tokenCount += planTokens
		tp.NextStep = &core.NextStep{Plan: plan}

		if hasFinishSignal(plan) {
			// FINAL_REASON
			final, finalTokens := o.finalReason(ctx, tp)
			tokenCount += finalTokens
			if final != nil {
				session = append(session, final)
				finalTP = final
				o.persist(final, userID, iteration, importanceDefault)
			}
			completed = true
			break
		}

		currentInput = fmt.Sprintf("Observation from %s: %s. Next: %s",
			tp.Action.Tool, stringify(tp.Observation.Result), plan)
	}

	if finalTP == nil {
		finalTP = o.errorRecord("no reasoning record was produced")
	} else if !completed {
		finalTP.Thought.Reasoning += maxIterationsNote
	}

	logger.Info("orchestrator.process.done",
		"invocation_id", invocationID,
		"iterations", iterations,
		"tool_calls", len(toolResults),
		"token_count", tokenCount,
	)

	return o.finish(finalTP, toolResults, session, iterations, tokenCount)
}

// planNext asks the model for its continuation plan after a tool observation.
func (o *Orchestrator) planNext(ctx context.Context, tp *core.ThoughtProcess) (string, int) {
	promptText := fmt.Sprintf(`You just executed a tool. Review the round and decide how to continue.

Reasoning: %s
Plan: %s
Action: tool %q with params %v
Observation: %s

If the task is now complete, say so plainly (for example "finish"). Respond
with the same JSON document format, putting your continuation plan in
next_step.plan.`,
		tp.Thought.Reasoning, tp.Thought.Plan, tp.Action.Tool, tp.Action.Params,
		stringify(tp.Observation.Result))

	resp, err := o.model.GenerateResponse(ctx, promptText, nil)
	if err != nil {
		o.logger.Warn("orchestrator.plan_next.error", "error", err.Error())
		return "", 0
	}

	parsed, perr := thought.Parse(resp.Content, false)
	if perr != nil {
		// Free-form reply; use the raw text as the plan.
		return strings.TrimSpace(thought.StripFences(resp.Content)), resp.TokenCount
	}
	if parsed.NextStep != nil && parsed.NextStep.Plan != "" {
		return parsed.NextStep.Plan, resp.TokenCount
	}
	return parsed.Thought.Plan, resp.TokenCount
}

// finalReason asks for one closing summary after a finish signal. A nil
// return means the summary could not be obtained and the current record
// stands.
func (o *Orchestrator) finalReason(ctx context.Context, tp *core.ThoughtProcess) (*core.ThoughtProcess, int) {
	promptText := fmt.Sprintf(`The task is complete. Summarize the outcome for the user.

Observation: %s

Respond with the same JSON document format. Do not include an action.`,
		stringify(tp.Observation.Result))

	resp, err := o.model.GenerateResponse(ctx, promptText, nil)
	if err != nil {
		o.logger.Warn("orchestrator.final_reason.error", "error", err.Error())
		return nil, 0
	}
	final, perr := thought.Parse(resp.Content, false)
	if perr != nil {
		o.logger.Warn("orchestrator.final_reason.parse_error", "error", perr.Error())
		return nil, resp.TokenCount
	}
	final.Action = nil
	final.Observation = tp.Observation
	return final, resp.TokenCount
}

// finish formats the final record and assembles the Result. Formatting
// failures fall back to a minimal rendering so the caller always receives
// content.
func (o *Orchestrator) finish(tp *core.ThoughtProcess, toolResults []core.ToolResponse, session []*core.ThoughtProcess, iterations, tokenCount int) *Result {
	var (
		content string
		err     error
	)
	if o.debug {
		content, err = thought.FormatDebug(tp, session)
	} else {
		content, err = thought.Format(tp)
	}
	if err != nil {
		o.logger.Error("orchestrator.format.error", "error", err.Error())
		content = tp.Thought.Reasoning
	}
	if toolResults == nil {
		toolResults = []core.ToolResponse{}
	}
	return &Result{
		Content:      content,
		ToolResults:  toolResults,
		FinalThought: tp,
		Iterations:   iterations,
		TokenCount:   tokenCount,
	}
}

// persist queues an async journal write. Failures never reach the loop.
func (o *Orchestrator) persist(tp *core.ThoughtProcess, userID string, iteration int, importance float64) {
	if o.journal == nil {
		return
	}
	o.journal.Record(tp, userID, map[string]any{
		"iteration":  iteration,
		"importance": importance,
	})
}

func (o *Orchestrator) parseFallback(perr error) *core.ThoughtProcess {
	return &core.ThoughtProcess{
		Thought: core.Thought{
			Reasoning: "The model response could not be interpreted as a reasoning record",
			Plan:      "Retry with a clarified prompt",
		},
		ErrorHandling: o.errorHandling(perr.Error(), "Model output failed structural validation"),
	}
}

func (o *Orchestrator) errorRecord(msg string) *core.ThoughtProcess {
	return &core.ThoughtProcess{
		Thought: core.Thought{
			Reasoning: "An error occurred during processing",
			Plan:      "Report the failure to the user",
		},
		ErrorHandling: o.errorHandling(msg, msg),
	}
}

func (o *Orchestrator) errorHandling(errMsg, logMsg string) *core.ErrorHandling {
	return &core.ErrorHandling{
		Error: errMsg,
		Recovery: &core.ErrorRecovery{
			LogError:      logMsg,
			AlternatePlan: "Inform the user about the problem and await further instructions",
			DiscordMessage: &core.DiscordMessage{
				Content:   "Sorry, something went wrong while processing your request.",
				Ephemeral: true,
			},
		},
	}
}

func hasFinishSignal(plan string) bool {
	lower := strings.ToLower(plan)
	for _, signal := range finishSignals {
		if strings.Contains(lower, signal) {
			return true
		}
	}
	return false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
