package sandbox

import (
	"fmt"

	"github.com/agentcore/agentcore/internal/allowlist"
)

// AnalysisError is the {type: restricted, message} shape of §4.2.
type AnalysisError struct {
	Message string
}

func (e *AnalysisError) Error() string { return e.Message }

// injectedAlias marks an Import/Require/Alias SyntacticForm node as having
// been introduced by the sandbox's own alias-injection step (§4.3), which
// exempts it from the "alias is a blocked syntactic form" rule.
type injectedAlias struct {
	Alias string
	Full  string
}

func (injectedAlias) isNode() {}

// Analyze pre-walks ast in order and returns the first violation, or nil if
// the whole tree is authorized. aliases resolves AliasPath segments (joined
// with "/") to a full module identifier before authorization.
func Analyze(ast Node, spec *allowlist.Spec, catalog allowlist.Catalog, aliases map[string]string) *AnalysisError {
	return analyzeNode(ast, spec, catalog, aliases)
}

func analyzeNode(n Node, spec *allowlist.Spec, catalog allowlist.Catalog, aliases map[string]string) *AnalysisError {
	switch v := n.(type) {
	case Block:
		for _, stmt := range v.Stmts {
			if err := analyzeNode(stmt, spec, catalog, aliases); err != nil {
				return err
			}
		}
		return nil

	case injectedAlias:
		// Introduced by the sandbox itself; always Ok.
		return nil

	case SyntacticForm:
		return &AnalysisError{Message: fmt.Sprintf("%s is not allowed in sandbox", v.Kind)}

	case Local:
		if IsBlockedPrimitive(v.Name) {
			return &AnalysisError{Message: fmt.Sprintf("function %s is restricted", v.Name)}
		}
		for _, arg := range v.Args {
			if err := analyzeNode(arg, spec, catalog, aliases); err != nil {
				return err
			}
		}
		return nil

	case Call:
		module := resolveModule(v.Module, v.AliasPath, aliases)
		if IsBlockedModule(module) {
			return &AnalysisError{Message: fmt.Sprintf("module %s is restricted", module)}
		}
		if IsBlockedPrimitive(v.Function) {
			return &AnalysisError{Message: fmt.Sprintf("function %s.%s is restricted", module, v.Function)}
		}
		if allowlist.Decide(spec, catalog, module, v.Function, len(v.Args)) != allowlist.Allowed {
			return &AnalysisError{Message: fmt.Sprintf("function %s.%s/%d is restricted", module, v.Function, len(v.Args))}
		}
		for _, arg := range v.Args {
			if err := analyzeNode(arg, spec, catalog, aliases); err != nil {
				return err
			}
		}
		return nil

	case Capture:
		// A capture is treated as a call of the referenced MFA for
		// authorization purposes, whether or not it is ever invoked. This
		// closes the `f = &apply/3; f.(...)` bypass (S3).
		if v.Local != "" {
			// Bare local capture resolves to the core library.
			if IsBlockedPrimitive(v.Local) {
				return &AnalysisError{Message: fmt.Sprintf("function %s is restricted", v.Local)}
			}
			return nil
		}
		module := resolveModule(v.Module, v.AliasPath, aliases)
		if IsBlockedModule(module) {
			return &AnalysisError{Message: fmt.Sprintf("module %s is restricted", module)}
		}
		if IsBlockedPrimitive(v.Function) {
			return &AnalysisError{Message: fmt.Sprintf("function %s.%s is restricted", module, v.Function)}
		}
		if allowlist.Decide(spec, catalog, module, v.Function, v.Arity) != allowlist.Allowed {
			return &AnalysisError{Message: fmt.Sprintf("function %s.%s/%d is restricted", module, v.Function, v.Arity)}
		}
		return nil

	default:
		// Literal and any other non-call node: Ok by default.
		return nil
	}
}

func resolveModule(module string, aliasPath []string, aliases map[string]string) string {
	if module != "" {
		if full, ok := aliases[module]; ok {
			return full
		}
		return module
	}
	key := joinPath(aliasPath)
	if full, ok := aliases[key]; ok {
		return full
	}
	return key
}

func joinPath(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}
