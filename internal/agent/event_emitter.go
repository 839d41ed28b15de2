package agent

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/agentcore/agentcore/internal/sandbox"
	"github.com/agentcore/agentcore/pkg/models"
)

// EventEmitter generates and dispatches AgentEvents with monotonic
// sequencing for one executor activation (§6's required telemetry event
// names).
type EventEmitter struct {
	runID    string
	sequence uint64

	iteration int
	retry     int

	sink EventSink
}

// NewEventEmitter creates an emitter for runID. If sink is nil, a NopSink is
// used.
func NewEventEmitter(runID string, sink EventSink) *EventEmitter {
	if sink == nil {
		sink = NopSink{}
	}
	return &EventEmitter{runID: runID, sink: sink}
}

// SetIteration updates the current iteration counter for subsequent events.
func (e *EventEmitter) SetIteration(iteration, retry int) {
	e.iteration = iteration
	e.retry = retry
}

func (e *EventEmitter) nextSeq() uint64 {
	return atomic.AddUint64(&e.sequence, 1)
}

func (e *EventEmitter) base(eventType models.AgentEventType) models.AgentEvent {
	return models.AgentEvent{
		Version:   1,
		Type:      eventType,
		Time:      time.Now(),
		Sequence:  e.nextSeq(),
		RunID:     e.runID,
		Iteration: e.iteration,
		Retry:     e.retry,
	}
}

func (e *EventEmitter) emit(ctx context.Context, event models.AgentEvent) {
	if e.sink != nil {
		e.sink.Emit(ctx, event)
	}
}

// CallStart/CallStop/CallException bracket one executor activation (run or
// continue).
func (e *EventEmitter) CallStart(ctx context.Context) {
	e.emit(ctx, e.base(models.AgentEventCallStart))
}

func (e *EventEmitter) CallStop(ctx context.Context) {
	e.emit(ctx, e.base(models.AgentEventCallStop))
}

func (e *EventEmitter) CallException(ctx context.Context, err error) {
	event := e.base(models.AgentEventCallException)
	event.Error = &models.ErrorEventPayload{Message: err.Error(), Err: err}
	e.emit(ctx, event)
}

// IterationStart/IterationStop bracket one state-machine transition.
func (e *EventEmitter) IterationStart(ctx context.Context) {
	e.emit(ctx, e.base(models.AgentEventIterationStart))
}

func (e *EventEmitter) IterationStop(ctx context.Context) {
	e.emit(ctx, e.base(models.AgentEventIterationStop))
}

// LLMRequestStart/LLMRequestStop bracket one generate_structured call, per
// §6's required request/response metadata contract.
func (e *EventEmitter) LLMRequestStart(ctx context.Context, model string, messageCount int) {
	event := e.base(models.AgentEventLLMRequestStart)
	event.LLMRequest = &models.LLMRequestPayload{
		Model:        model,
		MessageCount: messageCount,
		Iteration:    e.iteration,
		Retry:        e.retry,
	}
	e.emit(ctx, event)
}

func (e *EventEmitter) LLMRequestStop(ctx context.Context, model string, action string, duration time.Duration, err error) {
	event := e.base(models.AgentEventLLMRequestStop)
	payload := &models.LLMRequestPayload{
		Model:     model,
		Iteration: e.iteration,
		Retry:     e.retry,
		Duration:  duration,
		Action:    action,
	}
	if err != nil {
		payload.Err = err.Error()
	}
	event.LLMRequest = payload
	e.emit(ctx, event)
}

// SandboxEvalStart/SandboxEvalStop bracket one sandbox evaluation.
func (e *EventEmitter) SandboxEvalStart(ctx context.Context) {
	e.emit(ctx, e.base(models.AgentEventSandboxEvalStart))
}

func (e *EventEmitter) SandboxEvalStop(ctx context.Context, duration time.Duration, sandboxErr *sandbox.SandboxError) {
	event := e.base(models.AgentEventSandboxEvalStop)
	payload := &models.SandboxEventPayload{Duration: duration}
	if sandboxErr != nil {
		payload.ErrKind = string(sandboxErr.Kind)
	}
	event.Sandbox = payload
	e.emit(ctx, event)
}

// HumanInputRequired/HumanInputReceived bracket a human-in-the-loop
// suspension (§4.7, S6).
func (e *EventEmitter) HumanInputRequired(ctx context.Context, question, kind string) {
	event := e.base(models.AgentEventHumanInputRequired)
	event.Human = &models.HumanEventPayload{Question: question, Kind: kind}
	e.emit(ctx, event)
}

func (e *EventEmitter) HumanInputReceived(ctx context.Context) {
	e.emit(ctx, e.base(models.AgentEventHumanInputReceived))
}
