package models

import "time"

// AgentEvent is the unified telemetry event emitted by the executor loop,
// the sandbox evaluator, and the agent server.
//
// Design principles:
//   - Versioned and forward-compatible (add fields, don't rename/remove)
//   - Single Type discriminator with optional payload pointers
//   - Monotonic Sequence for ordering guarantees across goroutines
type AgentEvent struct {
	Version int            `json:"version"`
	Type    AgentEventType `json:"type"`
	Time    time.Time      `json:"time"`

	// Sequence is monotonic within a run for ordering guarantees.
	Sequence uint64 `json:"seq"`

	RunID     string `json:"run_id,omitempty"`
	Iteration int    `json:"iteration,omitempty"`
	Retry     int    `json:"retry,omitempty"`

	// Exactly one payload should be non-nil for a given Type.
	LLMRequest *LLMRequestPayload `json:"llm_request,omitempty"`
	Sandbox    *SandboxEventPayload `json:"sandbox,omitempty"`
	Human      *HumanEventPayload `json:"human,omitempty"`
	Error      *ErrorEventPayload `json:"error,omitempty"`
}

// AgentEventType identifies the kind of telemetry event. Names follow the
// dotted convention required of the external telemetry sink.
type AgentEventType string

const (
	AgentEventCallStart     AgentEventType = "call.start"
	AgentEventCallStop      AgentEventType = "call.stop"
	AgentEventCallException AgentEventType = "call.exception"

	AgentEventIterationStart AgentEventType = "iteration.start"
	AgentEventIterationStop  AgentEventType = "iteration.stop"

	AgentEventLLMRequestStart AgentEventType = "llm.request.start"
	AgentEventLLMRequestStop  AgentEventType = "llm.request.stop"

	AgentEventSandboxEvalStart AgentEventType = "sandbox.eval.start"
	AgentEventSandboxEvalStop  AgentEventType = "sandbox.eval.stop"

	AgentEventHumanInputRequired AgentEventType = "human.input_required"
	AgentEventHumanInputReceived AgentEventType = "human.input_received"
)

// LLMRequestPayload carries the structured request record and, on stop, the
// response object described by the LLM transport contract.
type LLMRequestPayload struct {
	Model        string        `json:"model"`
	MessageCount int           `json:"message_count"`
	Iteration    int           `json:"iteration"`
	Retry        int           `json:"retry"`
	Duration     time.Duration `json:"duration,omitempty"`
	Action       string        `json:"action,omitempty"`
	Err          string        `json:"err,omitempty"`
}

// SandboxEventPayload describes one sandbox evaluation.
type SandboxEventPayload struct {
	Duration time.Duration `json:"duration,omitempty"`
	ErrKind  string        `json:"err_kind,omitempty"`
}

// HumanEventPayload describes a human-input suspension/resumption pair.
type HumanEventPayload struct {
	Question string `json:"question,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// ErrorEventPayload standardizes errors for streaming and plugins.
type ErrorEventPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"-"`
}
