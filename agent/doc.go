// Package agent contains the Orchestrator, the bounded reason-act-observe-plan
// loop at the center of reagent. Each invocation runs at most a configured
// number of reasoning rounds against a model provider, validating and
// dispatching requested tool calls through the tool subsystem and journaling
// every produced reasoning record to the memory provider without ever
// blocking on it.
//
// Failure handling is total: no error escapes Process. Parse failures,
// unknown tools, missing parameters and tool execution errors are all
// converted into well formed records whose error_handling block explains what
// happened.
package agent
