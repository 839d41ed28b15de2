package sandbox

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"

	"github.com/agentcore/agentcore/internal/allowlist"
)

// ErrKind tags the taxonomy of recoverable sandbox failures from §7.
type ErrKind string

const (
	ErrParsing    ErrKind = "parsing"
	ErrRestricted ErrKind = "restricted"
	ErrException  ErrKind = "exception"
	ErrThrow      ErrKind = "throw"
	ErrExit       ErrKind = "exit"
	ErrTimeout    ErrKind = "timeout"
)

// SandboxError is the tagged Err<SandboxError> result of eval.
type SandboxError struct {
	Kind    ErrKind
	Message string
}

func (e *SandboxError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// EvalOptions configures one eval call.
type EvalOptions struct {
	TimeoutMs int
	// Aliases maps alias name -> full module identifier. When non-empty,
	// the sandbox injects alias bindings ahead of the user program before
	// analysis; those injected forms are exempt from the "alias is
	// blocked" syntactic rule.
	Aliases map[string]string
}

// Evaluator runs the C3 pipeline: parse -> inject aliases -> analyze ->
// evaluate with timeout in a cancellable worker.
type Evaluator struct {
	Spec    *allowlist.Spec
	Catalog allowlist.Catalog
	// Symbols exposes the concrete Go values backing every allowlisted
	// module/function pair to the yaegi interpreter. Only functions
	// actually present here -- and authorized by Spec/Catalog -- are ever
	// reachable from evaluated code.
	Symbols map[string]map[string]reflect.Value
}

// NewEvaluator constructs an Evaluator bound to the given allowlist and its
// backing symbol table.
func NewEvaluator(spec *allowlist.Spec, catalog allowlist.Catalog, symbols map[string]map[string]reflect.Value) *Evaluator {
	return &Evaluator{Spec: spec, Catalog: catalog, Symbols: symbols}
}

// Eval runs source through parse -> alias-inject -> analyze -> bounded
// evaluate, per §4.3.
func (e *Evaluator) Eval(ctx context.Context, source string, opts EvalOptions) (any, *SandboxError) {
	ast, perr := Parse(source)
	if perr != nil {
		return nil, &SandboxError{Kind: ErrParsing, Message: perr.Message}
	}

	injected := injectAliases(ast, opts.Aliases)

	if aerr := Analyze(injected, e.Spec, e.Catalog, opts.Aliases); aerr != nil {
		return nil, &SandboxError{Kind: ErrRestricted, Message: aerr.Error()}
	}

	timeout := time.Duration(opts.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	evalCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return e.evaluate(evalCtx, withImportPreamble(source, opts.Aliases), timeout)
}

// withImportPreamble prepends one `import Alias "sandbox/<module>"` line per
// alias actually referenced in source, so module-qualified calls like
// "List.map(...)" resolve without the LLM ever writing an import statement
// itself -- the sandboxed program only ever sees the bare alias name,
// mirroring the AST-level injection used during analysis. Only referenced
// aliases are imported: Go rejects unused imports, and most of the several
// dozen default module aliases are irrelevant to any given snippet.
func withImportPreamble(source string, aliases map[string]string) string {
	if len(aliases) == 0 {
		return source
	}
	var b strings.Builder
	for alias, full := range aliases {
		if !strings.Contains(source, alias+".") {
			continue
		}
		fmt.Fprintf(&b, "import %s %q\n", alias, "sandbox/"+full)
	}
	b.WriteString(source)
	return b.String()
}

// injectAliases wraps ast in a Block prefixed with one injectedAlias node
// per declared alias. The returned tree is what gets analyzed; analysis
// treats injectedAlias nodes as always-Ok (§4.2's alias-injection
// exemption).
func injectAliases(ast Node, aliases map[string]string) Node {
	if len(aliases) == 0 {
		return ast
	}
	stmts := make([]Node, 0, len(aliases)+1)
	for alias, full := range aliases {
		stmts = append(stmts, injectedAlias{Alias: alias, Full: full})
	}
	stmts = append(stmts, ast)
	return Block{Stmts: stmts}
}

type evalResult struct {
	value any
	err   *SandboxError
}

// evaluate runs source in a fresh yaegi interpreter exposing only the
// symbols this Evaluator was built with, racing completion against ctx's
// deadline. Grounded on the goroutine+channel+select-against-ctx.Done()
// pattern used for tool-code evaluation elsewhere in this corpus.
func (e *Evaluator) evaluate(ctx context.Context, source string, timeout time.Duration) (any, *SandboxError) {
	resultCh := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- evalResult{err: &SandboxError{Kind: ErrException, Message: fmt.Sprintf("%v", r)}}
			}
		}()

		i := interp.New(interp.Options{})
		exports := make(interp.Exports, len(e.Symbols))
		for pkg, syms := range e.Symbols {
			exports["sandbox/"+pkg] = syms
		}
		if err := i.Use(exports); err != nil {
			resultCh <- evalResult{err: &SandboxError{Kind: ErrException, Message: err.Error()}}
			return
		}

		v, err := i.Eval(source)
		if err != nil {
			resultCh <- evalResult{err: classifyEvalError(err)}
			return
		}
		if !v.IsValid() {
			resultCh <- evalResult{value: nil}
			return
		}
		resultCh <- evalResult{value: v.Interface()}
	}()

	select {
	case res := <-resultCh:
		return res.value, res.err
	case <-ctx.Done():
		return nil, &SandboxError{Kind: ErrTimeout, Message: fmt.Sprintf("Execution timed out after %dms", timeout.Milliseconds())}
	}
}

// classifyEvalError maps a yaegi evaluation error onto the exception/throw/
// exit taxonomy of §7. yaegi itself only ever surfaces Go-style runtime
// errors, so "throw" and "exit" are reserved for evaluators of languages
// that distinguish them; everything from this Go-hosted interpreter is
// classified as an exception unless it is a context cancellation.
func classifyEvalError(err error) *SandboxError {
	return &SandboxError{Kind: ErrException, Message: err.Error()}
}
