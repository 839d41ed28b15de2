package agent

import (
	"errors"
	"fmt"
)

// ErrTransportFailure marks a fatal LLM transport failure (§7): distinct
// from recoverable sandbox/parse errors, it aborts the loop immediately and
// is never counted against max_retries.
var ErrTransportFailure = errors.New("llm transport failure")

// ErrNoPendingRequest is returned by the agent server's respond operation
// when no human_input_waiter is outstanding (§4.7, §7).
var ErrNoPendingRequest = errors.New("no pending request")

// CancelReason names why the executor loop terminated without a value.
type CancelReason string

const (
	ReasonMaxIterations CancelReason = "reached_max_iterations"
	ReasonMaxRetries    CancelReason = "reached_max_retries"
)

// CancelError is the terminal Cancel(reason) result of §4.6.
type CancelError struct {
	Reason CancelReason
}

func (e *CancelError) Error() string {
	return fmt.Sprintf("cancelled: %s", e.Reason)
}

// InvalidActionError marks a structurally malformed Action Reply: missing/
// empty code for an eval action, or an unrecognized action discriminant.
// Per §4.6 it is dispatched through the same retry handling as a sandbox
// parsing error.
type InvalidActionError struct {
	Detail string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("Invalid response format: %s. Please respond with valid JSON in the expected format.", e.Detail)
}
