// Command agentcore demonstrates the executor loop (C6) against a toy
// arithmetic agent, using a stub LLM transport so the whole pipeline can be
// exercised without a network dependency.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentcore/agentcore/internal/agent"
	"github.com/agentcore/agentcore/internal/config"
	"github.com/agentcore/agentcore/internal/descriptor"
	"github.com/agentcore/agentcore/internal/observability"
	"github.com/agentcore/agentcore/pkg/llmtransport"
	"github.com/agentcore/agentcore/pkg/models"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentcore",
		Short: "Run a sandboxed agent activation",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var task string
	var model string
	var configPath string
	var traceFile string
	var otlpEndpoint string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single executor loop activation against a demo agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), runArgs{
				task:         task,
				model:        model,
				configPath:   configPath,
				traceFile:    traceFile,
				otlpEndpoint: otlpEndpoint,
			})
		},
	}
	cmd.Flags().StringVar(&task, "task", "add 1 and 2", "task description handed to the agent")
	cmd.Flags().StringVar(&model, "model", "openai:gpt-4o", "model identifier used in the resolved config")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML/JSON5 process-defaults file (§5), resolving $include directives")
	cmd.Flags().StringVar(&traceFile, "trace-file", "", "path to write a JSONL trace of the activation's events")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC collector endpoint; tracing is disabled when empty")
	return cmd
}

type runArgs struct {
	task         string
	model        string
	configPath   string
	traceFile    string
	otlpEndpoint string
}

func runDemo(ctx context.Context, a runArgs) error {
	logger := observability.NewLogger(observability.LogConfig{Level: "info", Format: "text"})

	var processDefaults map[string]any
	if a.configPath != "" {
		raw, err := config.LoadRaw(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		processDefaults = raw
	}

	demoAgent := descriptor.Agent{
		Moduledoc: "You solve small arithmetic problems by writing Go expressions.",
	}

	loop, err := agent.NewLoop(demoAgent, nil, processDefaults)
	if err != nil {
		return fmt.Errorf("construct loop: %w", err)
	}

	transport := llmtransport.Func(stubTransport)

	metrics := observability.NewMetrics()
	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName: "agentcore",
		Endpoint:    a.otlpEndpoint,
	})
	defer shutdownTracer(ctx)

	runID := "demo"
	sink, closeSink, err := buildSink(runID, a.traceFile)
	if err != nil {
		return fmt.Errorf("build trace sink: %w", err)
	}
	defer closeSink()

	result, _ := loop.Run(ctx, a.task, agent.RunOptions{
		Transport: transport,
		CallOpts:  map[string]any{"model": a.model},
		Sink:      sink,
		Metrics:   metrics,
		Tracer:    tracer,
	})

	switch {
	case result.Err != nil:
		logger.Error(ctx, "activation failed", "error", result.Err)
		return result.Err
	case result.Cancel != nil:
		fmt.Printf("cancelled: %s\n", result.Cancel.Reason)
	default:
		fmt.Printf("result: %v\n", result.Value)
	}
	return nil
}

// buildSink returns the event sink a run should use: a no-op sink, or a
// TracePlugin writing JSONL to traceFile when one is requested. The returned
// close func flushes and closes the trace file, if any; it is always safe
// to call.
func buildSink(runID, traceFile string) (agent.EventSink, func(), error) {
	if traceFile == "" {
		return agent.NopSink{}, func() {}, nil
	}
	plugin, err := agent.NewTracePluginFile(runID, traceFile)
	if err != nil {
		return nil, nil, err
	}
	return plugin, func() { plugin.Close() }, nil
}

// stubTransport always answers with a single eval_and_complete action
// evaluating "1 + 2", for demonstration purposes only; a real deployment
// wires a transport that actually calls an LLM.
func stubTransport(_ context.Context, _ string, _ []models.Message, _ map[string]any) (map[string]any, error) {
	reply := map[string]any{
		"action": "eval_and_complete",
		"code":   "1 + 2",
		"result": map[string]any{"value": ""},
	}
	encoded, err := json.Marshal(reply)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
