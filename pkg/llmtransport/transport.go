// Package llmtransport declares the single external "structured generation"
// collaborator the executor loop depends on (§6). The transport itself --
// HTTP/JSON to a remote model -- is out of scope for this repository; only
// the interface and a stub implementation for tests/CLI demonstration live
// here.
package llmtransport

import (
	"context"
	"errors"

	"github.com/agentcore/agentcore/pkg/models"
)

// ErrTransport wraps any failure of the transport itself (network, auth,
// malformed upstream response). Per §7 this is always fatal to the executor
// loop -- never counted as a retry.
var ErrTransport = errors.New("llm transport failure")

// Transport is the external LLM collaborator. Schema is the action schema
// (C4) object the response must conform to; Transport implementations are
// responsible for retrying their own network-level errors and must only
// return an error here once those retries are exhausted.
type Transport interface {
	GenerateStructured(ctx context.Context, model string, messages []models.Message, schema map[string]any) (map[string]any, error)
}

// Func adapts a plain function to the Transport interface, mirroring the
// teacher corpus's functional-adapter convention for single-method
// interfaces.
type Func func(ctx context.Context, model string, messages []models.Message, schema map[string]any) (map[string]any, error)

func (f Func) GenerateStructured(ctx context.Context, model string, messages []models.Message, schema map[string]any) (map[string]any, error) {
	return f(ctx, model, messages, schema)
}
