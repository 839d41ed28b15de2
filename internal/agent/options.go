package agent

import (
	"log/slog"

	"github.com/agentcore/agentcore/internal/observability"
	"github.com/agentcore/agentcore/pkg/llmtransport"
)

// RunOptions gathers the per-call collaborators and overrides for one
// executor activation: the call_opts layer of the config resolver (§5),
// plus the transport, sink, and logger the loop needs but that aren't part
// of the merged configuration document itself.
type RunOptions struct {
	// CallOpts is the highest-precedence layer of the layered config
	// resolver (§5): per-call overrides of model, timeouts, iteration and
	// retry limits, and sandbox settings.
	CallOpts map[string]any

	// Transport issues the generate_structured request each iteration.
	Transport llmtransport.Transport

	// Sink receives telemetry events as the loop progresses. A nil Sink
	// means events are discarded.
	Sink EventSink

	// Logger receives structured diagnostics. Defaults to slog.Default()
	// when nil.
	Logger *slog.Logger

	// HumanInput resolves a pending human_input_waiter suspension (§4.7).
	// Left nil for activations that never issue a "return" action
	// requiring human input.
	HumanInput HumanInputProvider

	// Metrics receives Prometheus series for LLM requests, sandbox
	// evaluations, iterations, and retries. A nil Metrics means no series
	// are recorded.
	Metrics *observability.Metrics

	// Tracer opens an OpenTelemetry span per iteration, per LLM request,
	// and per sandbox evaluation. A nil Tracer means no spans are opened.
	Tracer *observability.Tracer
}

// HumanInputProvider supplies a reply to a suspended human-in-the-loop
// question. Implementations may block until an answer arrives.
type HumanInputProvider interface {
	Await(question, kind string) (string, error)
}

func (o RunOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o RunOptions) sink() EventSink {
	if o.Sink != nil {
		return o.Sink
	}
	return NopSink{}
}
