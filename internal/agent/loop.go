// Package agent implements the executor loop (C6): the bounded
// iterate-request-evaluate state machine that carries conversation
// context, counts successful iterations vs. consecutive retries, and
// dispatches structured LLM replies into continue/complete/cancel
// transitions.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentcore/agentcore/internal/actionschema"
	"github.com/agentcore/agentcore/internal/allowlist"
	"github.com/agentcore/agentcore/internal/config"
	"github.com/agentcore/agentcore/internal/descriptor"
	"github.com/agentcore/agentcore/internal/sandbox"
	"github.com/agentcore/agentcore/internal/vault"
	"github.com/agentcore/agentcore/pkg/models"
)

// Context is the per-activation Executor Context of §3, mutated only
// through Loop's transitions.
type Context struct {
	Messages  []models.Message
	Iteration int
	Retry     int
}

// TerminalResult is the outcome of a Loop activation: exactly one of Value
// (on Ok), Cancel (on a bounded terminate), or Err (a fatal, non-retryable
// failure -- transport or setup) is populated.
type TerminalResult struct {
	Value  any
	Cancel *CancelError
	Err    error
}

// Ok reports whether the activation produced a value rather than
// cancelling or failing.
func (r TerminalResult) Ok() bool {
	return r.Cancel == nil && r.Err == nil
}

// Loop wires together the allowlist/sandbox/schema/config/vault/prompt
// collaborators that back one agent's executions (§2's control flow
// summary: C6 invokes C4, dispatches to C3 under C1, through config
// resolved by C5).
type Loop struct {
	agent      descriptor.Agent
	validator  *actionschema.Validator
	schema     map[string]any
	evaluator  *sandbox.Evaluator
	aliases    map[string]string
	vault      *vault.Vault
	processDef map[string]any
}

// NewLoop builds a Loop for agent. symbols supplies the reflect-backed Go
// implementations for every tool a Tool Descriptor contributes, on top of
// the default module builtins; processDefaults is the process-wide config
// layer of §4.5.
func NewLoop(agent descriptor.Agent, symbols map[string]map[string]reflect.Value, processDefaults map[string]any) (*Loop, error) {
	validator, err := actionschema.Compile(agent.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("compile action schema: %w", err)
	}

	spec := agent.AllowlistSpec
	if spec == nil {
		spec = defaultAllowlistSpec()
	}
	catalog := defaultCatalog()

	mergedSymbols := sandbox.DefaultSymbols()
	for module, syms := range symbols {
		mergedSymbols[module] = syms
	}

	aliases := sandbox.DefaultAliases()
	toolIdentifiers := make([]string, 0, len(agent.Tools))
	for _, tool := range agent.Tools {
		toolIdentifiers = append(toolIdentifiers, tool.Name)
		if tool.AllowlistContribution != nil {
			for module, perm := range tool.AllowlistContribution {
				spec.Allow(module, perm)
				surface, ok := catalog[module]
				if !ok {
					surface = make(allowlist.ModuleSurface)
					catalog[module] = surface
				}
				for _, fn := range tool.Functions {
					surface[fn.Name] = true
				}
			}
		}
		if tool.Aliases != nil {
			for alias, full := range tool.Aliases(nil) {
				aliases[alias] = full
			}
		}
	}

	v := vault.New()
	if agent.ToolOptions != nil {
		v.Setup(toolIdentifiers, agent.ToolOptions)
	}

	return &Loop{
		agent:      agent,
		validator:  validator,
		schema:     actionschema.Build(agent.OutputSchema),
		evaluator:  sandbox.NewEvaluator(spec, catalog, mergedSymbols),
		aliases:    aliases,
		vault:      v,
		processDef: processDefaults,
	}, nil
}

// Vault exposes the per-agent tool option store so tool implementations can
// read back their resolved options at call time (§4.8).
func (l *Loop) Vault() *vault.Vault { return l.vault }

// Run is the run(agent, task, opts) entry point of §4.6: a fresh
// conversation seeded with the system prompt and the task, iteration and
// retry both starting at zero.
func (l *Loop) Run(ctx context.Context, task string, opts RunOptions) (TerminalResult, Context) {
	systemPrompt := buildSystemPrompt(l.agent, opts.CallOpts)
	ectx := Context{
		Messages: []models.Message{
			models.NewSystemMessage(systemPrompt),
			models.NewUserMessage(task),
		},
	}

	cfg, err := config.Resolve(l.processDef, l.agent.StaticConfig, opts.CallOpts)
	if err != nil {
		return TerminalResult{Err: fmt.Errorf("resolve config: %w", err)}, ectx
	}
	return l.run(ctx, ectx, cfg, opts)
}

// Continue is the continue(agent, context, message, config) entry point of
// §4.6: message is appended only if non-empty, and both counters reset to
// zero for the new activation.
func (l *Loop) Continue(ctx context.Context, prior Context, message string, opts RunOptions) (TerminalResult, Context) {
	ectx := Context{Messages: append([]models.Message(nil), prior.Messages...)}
	if strings.TrimSpace(message) != "" {
		ectx.Messages = append(ectx.Messages, models.NewUserMessage(message))
	}

	cfg, err := config.Resolve(l.processDef, l.agent.StaticConfig, opts.CallOpts)
	if err != nil {
		return TerminalResult{Err: fmt.Errorf("resolve config: %w", err)}, ectx
	}
	return l.run(ctx, ectx, cfg, opts)
}

func (l *Loop) run(ctx context.Context, ectx Context, cfg config.Config, opts RunOptions) (TerminalResult, Context) {
	emitter := NewEventEmitter(uuid.NewString(), opts.sink())
	emitter.CallStart(ctx)
	defer emitter.CallStop(ctx)

	for {
		emitter.SetIteration(ectx.Iteration, ectx.Retry)
		emitter.IterationStart(ctx)

		iterCtx := ctx
		var iterSpan trace.Span
		if opts.Tracer != nil {
			iterCtx, iterSpan = opts.Tracer.TraceIteration(ctx, emitter.runID, ectx.Iteration, ectx.Retry)
		}

		if ectx.Iteration >= cfg.MaxIterations {
			emitter.IterationStop(ctx)
			if opts.Metrics != nil {
				opts.Metrics.RecordIteration("cancel")
			}
			if iterSpan != nil {
				iterSpan.End()
			}
			return TerminalResult{Cancel: &CancelError{Reason: ReasonMaxIterations}}, ectx
		}

		reply, action, code, err := l.request(iterCtx, emitter, ectx, cfg, opts)
		if err != nil {
			emitter.CallException(ctx, err)
			emitter.IterationStop(ctx)
			if opts.Tracer != nil {
				opts.Tracer.RecordError(iterSpan, err)
			}
			if iterSpan != nil {
				iterSpan.End()
			}
			return TerminalResult{Err: err}, ectx
		}

		encoded, _ := json.Marshal(reply)
		ectx.Messages = append(ectx.Messages, models.NewAssistantMessage(string(encoded)))

		priorRetry := ectx.Retry
		result, terminal, updated := l.dispatch(iterCtx, emitter, ectx, cfg, opts, action, code, reply)
		ectx = updated
		emitter.IterationStop(ctx)

		if opts.Metrics != nil {
			opts.Metrics.RecordIteration(iterationOutcome(terminal, priorRetry, ectx.Retry))
		}
		if iterSpan != nil {
			iterSpan.End()
		}

		if terminal != nil {
			return *terminal, ectx
		}
		_ = result
	}
}

// iterationOutcome classifies one dispatch call's result for the iteration
// counter: complete/cancel/error on a terminal result, retry when the
// retry counter advanced without terminating, continue otherwise.
func iterationOutcome(terminal *TerminalResult, priorRetry, newRetry int) string {
	switch {
	case terminal == nil:
		if newRetry > priorRetry {
			return "retry"
		}
		return "continue"
	case terminal.Cancel != nil:
		return "cancel"
	case terminal.Err != nil:
		return "error"
	default:
		return "complete"
	}
}

// request performs the LLM round trip of §4.6 steps 2-4: transport failure
// is reported as a fatal, non-retryable error, distinct from everything
// dispatch may classify as recoverable.
func (l *Loop) request(ctx context.Context, emitter *EventEmitter, ectx Context, cfg config.Config, opts RunOptions) (map[string]any, string, string, error) {
	emitter.LLMRequestStart(ctx, cfg.Model, len(ectx.Messages))
	start := time.Now()

	spanCtx := ctx
	var span trace.Span
	if opts.Tracer != nil {
		spanCtx, span = opts.Tracer.TraceLLMRequest(ctx, cfg.Model)
	}

	reqCtx := spanCtx
	var cancel context.CancelFunc
	if cfg.TimeoutMs > 0 {
		reqCtx, cancel = context.WithTimeout(spanCtx, time.Duration(cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	reply, err := opts.Transport.GenerateStructured(reqCtx, cfg.Model, ectx.Messages, l.schema)
	duration := time.Since(start)
	if err != nil {
		emitter.LLMRequestStop(ctx, cfg.Model, "", duration, err)
		if opts.Metrics != nil {
			opts.Metrics.RecordLLMRequest(cfg.Model, "error", duration.Seconds())
		}
		if span != nil {
			opts.Tracer.RecordError(span, err)
			span.End()
		}
		return nil, "", "", fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}

	action, _ := reply["action"].(string)
	emitter.LLMRequestStop(ctx, cfg.Model, action, duration, nil)
	if opts.Metrics != nil {
		opts.Metrics.RecordLLMRequest(cfg.Model, "ok", duration.Seconds())
	}
	if span != nil {
		span.End()
	}

	code, _ := reply["code"].(string)
	return reply, action, code, nil
}

// dispatch implements §4.6 step 5: the four-action classification plus the
// parse-error fallback for anything malformed.
func (l *Loop) dispatch(ctx context.Context, emitter *EventEmitter, ectx Context, cfg config.Config, opts RunOptions, action, code string, reply map[string]any) (any, *TerminalResult, Context) {
	if err := l.validator.Validate(reply); err != nil {
		ectx, terminal := l.retry(opts, ectx, cfg, "invalid_action", (&InvalidActionError{Detail: err.Error()}).Error())
		return nil, terminal, ectx
	}

	switch action {
	case "eval_and_continue":
		if code == "" {
			ectx, terminal := l.retry(opts, ectx, cfg, "invalid_action", (&InvalidActionError{Detail: "eval_and_continue requires non-empty code"}).Error())
			return nil, terminal, ectx
		}
		value, sErr := l.eval(ctx, emitter, code, cfg, opts)
		if sErr != nil {
			ectx, terminal := l.retry(opts, ectx, cfg, "sandbox_error", codeFailureMessage(sErr))
			return nil, terminal, ectx
		}
		ectx.Messages = append(ectx.Messages, models.NewUserMessage(
			fmt.Sprintf("Code executed successfully. Result:\n```\n%s\n```", inspect(value)),
		))
		ectx.Iteration++
		ectx.Retry = 0
		return value, nil, ectx

	case "eval_and_complete":
		if code == "" {
			ectx, terminal := l.retry(opts, ectx, cfg, "invalid_action", (&InvalidActionError{Detail: "eval_and_complete requires non-empty code"}).Error())
			return nil, terminal, ectx
		}
		value, sErr := l.eval(ctx, emitter, code, cfg, opts)
		if sErr != nil {
			ectx, terminal := l.retry(opts, ectx, cfg, "sandbox_error", codeFailureMessage(sErr))
			return nil, terminal, ectx
		}
		return value, &TerminalResult{Value: value}, ectx

	case "return":
		result := reply["result"]
		return result, &TerminalResult{Value: result}, ectx

	case "done":
		return nil, &TerminalResult{Value: nil}, ectx

	default:
		ectx, terminal := l.retry(opts, ectx, cfg, "unrecognized_action", (&InvalidActionError{Detail: fmt.Sprintf("unrecognized action %q", action)}).Error())
		return nil, terminal, ectx
	}
}

func codeFailureMessage(sErr *sandbox.SandboxError) string {
	return fmt.Sprintf("Code execution failed:\n\n%s\n\nPlease fix the error and try again.", sErr.Message)
}

// retry implements §4.6's retry-handling rule: terminate on exhaustion,
// otherwise append the error feedback and advance the retry counter while
// leaving iteration unchanged. reason labels the retry for the retry
// counter; it never reaches the conversation.
func (l *Loop) retry(opts RunOptions, ectx Context, cfg config.Config, reason, message string) (Context, *TerminalResult) {
	if ectx.Retry >= cfg.MaxRetries {
		return ectx, &TerminalResult{Cancel: &CancelError{Reason: ReasonMaxRetries}}
	}
	if opts.Metrics != nil {
		opts.Metrics.RecordRetry(reason)
	}
	ectx.Messages = append(ectx.Messages, models.NewUserMessage(message))
	ectx.Retry++
	return ectx, nil
}

func (l *Loop) eval(ctx context.Context, emitter *EventEmitter, code string, cfg config.Config, opts RunOptions) (any, *sandbox.SandboxError) {
	emitter.SandboxEvalStart(ctx)
	start := time.Now()

	spanCtx := ctx
	var span trace.Span
	if opts.Tracer != nil {
		spanCtx, span = opts.Tracer.TraceSandboxEval(ctx)
	}

	value, sErr := l.evaluator.Eval(spanCtx, code, sandbox.EvalOptions{
		TimeoutMs: cfg.Sandbox.TimeoutMs,
		Aliases:   l.aliases,
	})
	duration := time.Since(start)
	emitter.SandboxEvalStop(ctx, duration, sErr)

	if opts.Metrics != nil {
		kind := "ok"
		if sErr != nil {
			kind = string(sErr.Kind)
		}
		opts.Metrics.RecordSandboxEval(kind, duration.Seconds())
	}
	if span != nil {
		if sErr != nil {
			opts.Tracer.RecordError(span, fmt.Errorf("%s", sErr.Message))
		}
		span.End()
	}

	return value, sErr
}
