package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides a centralized interface for collecting Prometheus series
// for the executor loop (C6) and the agent server (C7): LLM request
// latency and outcome, sandbox evaluation latency and outcome by error
// kind, iteration and retry counts, and the agent server's queue depth.
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	sink := observability.NewMetricsSink(metrics)
//	// pass sink as (part of) agent.RunOptions.Sink
type Metrics struct {
	// LLMRequestDuration measures generate_structured call latency.
	// Labels: model
	// Buckets: 0.1s, 0.5s, 1s, 2s, 5s, 10s, 30s, 60s
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestCounter counts generate_structured calls by model and
	// outcome.
	// Labels: model, status (ok|error)
	LLMRequestCounter *prometheus.CounterVec

	// SandboxEvalDuration measures sandbox evaluation latency.
	// Buckets: 0.001s, 0.005s, 0.01s, 0.05s, 0.1s, 0.5s, 1s, 5s
	SandboxEvalDuration prometheus.Histogram

	// SandboxEvalCounter counts sandbox evaluations by error kind; a
	// successful evaluation is recorded with kind "ok".
	// Labels: kind
	SandboxEvalCounter *prometheus.CounterVec

	// IterationCounter counts executor iterations by outcome.
	// Labels: outcome (continue|complete|cancel|retry)
	IterationCounter *prometheus.CounterVec

	// RetryCounter counts retry transitions by reason.
	// Labels: reason
	RetryCounter *prometheus.CounterVec

	// AgentServerQueueDepth tracks the number of messages queued behind
	// the agent server's active worker.
	AgentServerQueueDepth prometheus.Gauge

	// HumanInputWaiting tracks whether a worker is currently suspended
	// awaiting a human response (0 or 1).
	HumanInputWaiting prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus series with the default
// registry. This should be called once at application startup.
func NewMetrics() *Metrics {
	return &Metrics{
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentcore_llm_request_duration_seconds",
				Help:    "Duration of generate_structured requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"model"},
		),

		LLMRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_llm_requests_total",
				Help: "Total number of generate_structured requests by model and status",
			},
			[]string{"model", "status"},
		),

		SandboxEvalDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentcore_sandbox_eval_duration_seconds",
				Help:    "Duration of sandbox evaluations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		SandboxEvalCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_sandbox_evals_total",
				Help: "Total number of sandbox evaluations by error kind (\"ok\" on success)",
			},
			[]string{"kind"},
		),

		IterationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_iterations_total",
				Help: "Total number of executor iterations by outcome",
			},
			[]string{"outcome"},
		),

		RetryCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentcore_retries_total",
				Help: "Total number of retry transitions by reason",
			},
			[]string{"reason"},
		),

		AgentServerQueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentcore_agentserver_queue_depth",
				Help: "Current number of messages queued behind an agent server's active worker",
			},
		),

		HumanInputWaiting: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentcore_human_input_waiting",
				Help: "1 while an agent server worker is suspended awaiting human input, 0 otherwise",
			},
		),
	}
}

// RecordLLMRequest records one generate_structured call's outcome and
// latency.
func (m *Metrics) RecordLLMRequest(model, status string, durationSeconds float64) {
	m.LLMRequestCounter.WithLabelValues(model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(model).Observe(durationSeconds)
}

// RecordSandboxEval records one sandbox evaluation's outcome and latency;
// kind is "ok" for a successful evaluation, otherwise the SandboxError kind.
func (m *Metrics) RecordSandboxEval(kind string, durationSeconds float64) {
	m.SandboxEvalCounter.WithLabelValues(kind).Inc()
	m.SandboxEvalDuration.Observe(durationSeconds)
}

// RecordIteration records one executor iteration's terminal classification.
func (m *Metrics) RecordIteration(outcome string) {
	m.IterationCounter.WithLabelValues(outcome).Inc()
}

// RecordRetry records one retry transition.
func (m *Metrics) RecordRetry(reason string) {
	m.RetryCounter.WithLabelValues(reason).Inc()
}

// SetAgentServerQueueDepth sets the current agent server queue depth gauge.
func (m *Metrics) SetAgentServerQueueDepth(depth int) {
	m.AgentServerQueueDepth.Set(float64(depth))
}

// SetHumanInputWaiting sets whether a worker is currently suspended
// awaiting human input.
func (m *Metrics) SetHumanInputWaiting(waiting bool) {
	if waiting {
		m.HumanInputWaiting.Set(1)
		return
	}
	m.HumanInputWaiting.Set(0)
}
