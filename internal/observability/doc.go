// Package observability provides the three observability pillars an
// executor deployment wires around the control loop (C6) and the agent
// server (C7): structured logging, Prometheus metrics, and OpenTelemetry
// tracing.
//
// # Architecture
//
// None of this package participates in the control flow it observes.
// Every collaborator -- Logger, Metrics, Tracer -- is optional, and a nil
// one degrades to a no-op: a deployment that never constructs a Metrics or
// Tracer runs the loop identically to one that does, just without series
// or spans.
//
// # Logging
//
// Logger wraps log/slog with run/agent correlation and redaction of
// sensitive values (LLM provider API keys, bearer tokens, JWTs) before a
// record is written:
//
//	logger := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	ctx = observability.AddRunID(ctx, runID)
//	logger.Info(ctx, "iteration started", "iteration", ectx.Iteration)
//
// # Metrics
//
// Metrics tracks the quantities a deployment cares about for the loop and
// the agent server: generate_structured request latency and outcome,
// sandbox evaluation latency and outcome by error kind, iteration and
// retry counts by classification, and the agent server's queue depth and
// human-input suspension state.
//
//	metrics := observability.NewMetrics()
//	opts := agent.RunOptions{Metrics: metrics /* ... */}
//
// # Tracing
//
// Tracer opens an OpenTelemetry span per iteration, per generate_structured
// request, and per sandbox evaluation, exported over OTLP when an endpoint
// is configured:
//
//	tracer, shutdown := observability.NewTracer(observability.TraceConfig{
//	    ServiceName: "agentcore",
//	    Endpoint:    "localhost:4317",
//	})
//	defer shutdown(context.Background())
//	opts := agent.RunOptions{Tracer: tracer /* ... */}
package observability
