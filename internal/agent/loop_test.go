package agent

import (
	"context"
	"testing"

	"github.com/agentcore/agentcore/internal/descriptor"
	"github.com/agentcore/agentcore/pkg/llmtransport"
	"github.com/agentcore/agentcore/pkg/models"
)

func replyTransport(t *testing.T, replies ...map[string]any) llmtransport.Transport {
	t.Helper()
	i := 0
	return llmtransport.Func(func(_ context.Context, _ string, _ []models.Message, _ map[string]any) (map[string]any, error) {
		if i >= len(replies) {
			t.Fatalf("transport invoked more times (%d) than replies supplied (%d)", i+1, len(replies))
		}
		reply := replies[i]
		i++
		return reply, nil
	})
}

func evalAndComplete(code string) map[string]any {
	return map[string]any{"action": "eval_and_complete", "code": code, "result": map[string]any{"value": ""}}
}

func evalAndContinue(code string) map[string]any {
	return map[string]any{"action": "eval_and_continue", "code": code, "result": map[string]any{"value": ""}}
}

func doneAction() map[string]any {
	return map[string]any{"action": "done", "code": "", "result": map[string]any{"value": ""}}
}

// S1: arithmetic happy path.
func TestRunArithmeticHappyPath(t *testing.T) {
	loop, err := NewLoop(descriptor.Agent{}, nil, nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	transport := replyTransport(t, evalAndComplete("1 + 2"))
	result, _ := loop.Run(context.Background(), "add 1 and 2", RunOptions{Transport: transport})

	if !result.Ok() {
		t.Fatalf("expected Ok result, got %+v", result)
	}
	if result.Value != int64(3) && result.Value != 3 {
		t.Fatalf("expected 3, got %v (%T)", result.Value, result.Value)
	}
}

// S2: restricted escape attempt retries rather than succeeding.
func TestRunRestrictedEscapeAttemptRetries(t *testing.T) {
	loop, err := NewLoop(descriptor.Agent{}, nil, nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	transport := replyTransport(t,
		evalAndContinue(`os.ReadFile("/etc/passwd")`),
		doneAction(),
	)
	result, _ := loop.Run(context.Background(), "read a file", RunOptions{
		Transport: transport,
		CallOpts:  map[string]any{"max_retries": 3},
	})

	if !result.Ok() {
		t.Fatalf("expected Ok after recovering from one retry, got %+v", result)
	}
}

// S5: max-iterations cancel.
func TestRunMaxIterationsCancel(t *testing.T) {
	loop, err := NewLoop(descriptor.Agent{}, nil, nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	transport := replyTransport(t,
		evalAndContinue("1 + 1"),
		evalAndContinue("1 + 1"),
	)
	result, ectx := loop.Run(context.Background(), "count", RunOptions{
		Transport: transport,
		CallOpts:  map[string]any{"max_iterations": 2},
	})

	if result.Cancel == nil || result.Cancel.Reason != ReasonMaxIterations {
		t.Fatalf("expected Cancel(reached_max_iterations), got %+v", result)
	}
	if ectx.Iteration != 2 {
		t.Fatalf("expected iteration counter at 2, got %d", ectx.Iteration)
	}
}

// Transport failures abort immediately without being counted as a retry.
func TestRunTransportFailureIsFatal(t *testing.T) {
	loop, err := NewLoop(descriptor.Agent{}, nil, nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	calls := 0
	transport := llmtransport.Func(func(context.Context, string, []models.Message, map[string]any) (map[string]any, error) {
		calls++
		return nil, llmtransport.ErrTransport
	})

	result, _ := loop.Run(context.Background(), "task", RunOptions{Transport: transport})

	if result.Err == nil {
		t.Fatal("expected a fatal transport error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one transport call (no retry), got %d", calls)
	}
}

// Continue resets both counters even if the prior activation had advanced
// them.
func TestContinueResetsCounters(t *testing.T) {
	loop, err := NewLoop(descriptor.Agent{}, nil, nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	prior := Context{
		Messages:  []models.Message{models.NewSystemMessage("sys"), models.NewUserMessage("first")},
		Iteration: 4,
		Retry:     2,
	}

	transport := replyTransport(t, evalAndComplete("2 + 2"))
	result, ectx := loop.Continue(context.Background(), prior, "continue please", RunOptions{Transport: transport})

	if !result.Ok() {
		t.Fatalf("expected Ok, got %+v", result)
	}
	if ectx.Messages[len(ectx.Messages)-1].Role != models.RoleAssistant {
		t.Fatalf("expected last message to be the assistant's JSON reply")
	}
}

func TestContinueSkipsEmptyMessage(t *testing.T) {
	loop, err := NewLoop(descriptor.Agent{}, nil, nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	prior := Context{Messages: []models.Message{models.NewSystemMessage("sys"), models.NewUserMessage("task")}}

	transport := replyTransport(t, doneAction())
	_, ectx := loop.Continue(context.Background(), prior, "", RunOptions{Transport: transport})

	if len(ectx.Messages) != 3 {
		t.Fatalf("expected no extra user message appended for empty input, got %d messages", len(ectx.Messages))
	}
}
