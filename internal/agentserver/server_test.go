package agentserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agentcore/agentcore/internal/agent"
	"github.com/agentcore/agentcore/internal/descriptor"
	"github.com/agentcore/agentcore/pkg/llmtransport"
	"github.com/agentcore/agentcore/pkg/models"
)

func sequencedTransport(t *testing.T, replies ...map[string]any) llmtransport.Transport {
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

const waitTimeout = 2 * time.Second

// S6: a sandbox call to Human.input suspends the worker; a respond message
// resumes it with the supplied value; a second respond with nothing
// pending is rejected.
func TestHumanInputRoundTrip(t *testing.T) {
	transport := sequencedTransport(t, evalAndComplete(`Human.input("go?", "ask")`))

	handle, err := Start(descriptor.Agent{}, "ask the operator", agent.RunOptions{Transport: transport}, waitTimeout)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Poll until the waiter is registered: AwaitHumanInput blocks inside
	// the sandboxed worker, so there is an inherent race between the
	// worker reaching Human.input and this goroutine calling Respond.
	deadline := time.Now().Add(waitTimeout)
	for {
		err := handle.Respond("yes", 200*time.Millisecond)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Respond never succeeded: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case result := <-handle.Initial:
		if !result.Ok() {
			t.Fatalf("expected Ok terminal result, got %+v", result)
		}
		encoded, _ := json.Marshal(result.Value)
		if string(encoded) == "" {
			t.Fatal("expected a non-empty result value echoing the human's answer")
		}
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for the initial activation to complete")
	}

	if err := handle.Respond("yes again", 200*time.Millisecond); err != agent.ErrNoPendingRequest {
		t.Fatalf("expected ErrNoPendingRequest for a respond with nothing pending, got %v", err)
	}
}

// A Cast issued immediately after Start queues behind the still-running
// initial activation; a Call issued right after that queues behind the
// Cast. All three are processed in arrival order by the single active
// worker, never concurrently.
func TestCastThenCallQueuesInOrder(t *testing.T) {
	transport := sequencedTransport(t,
		evalAndComplete("1 + 1"),
		evalAndComplete("2 + 2"),
		evalAndComplete("3 + 3"),
	)

	handle, err := Start(descriptor.Agent{}, "first", agent.RunOptions{Transport: transport}, waitTimeout)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	handle.Cast("second")

	result, err := handle.Call("third", waitTimeout)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !result.Ok() {
		t.Fatalf("expected Ok, got %+v", result)
	}

	select {
	case initial := <-handle.Initial:
		if !initial.Ok() {
			t.Fatalf("expected initial Ok, got %+v", initial)
		}
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for initial activation")
	}
}

// Respond with nothing pending is rejected even on a freshly started
// server that never suspended.
func TestRespondWithNoPendingRequest(t *testing.T) {
	transport := sequencedTransport(t, evalAndComplete("1 + 2"))

	handle, err := Start(descriptor.Agent{}, "add", agent.RunOptions{Transport: transport}, waitTimeout)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-handle.Initial:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for initial activation")
	}

	if err := handle.Respond("anything", 200*time.Millisecond); err != agent.ErrNoPendingRequest {
		t.Fatalf("expected ErrNoPendingRequest, got %v", err)
	}
}
