// Package sandbox implements the AST analyzer (C2) and sandbox evaluator
// (C3): a static pre-walk over a neutral AST that rejects blocked
// primitives and any call the allowlist does not authorize, followed by a
// time-bounded evaluation of the program that passed analysis.
package sandbox

// Node is the neutral AST shape the analyzer and evaluator consume. The
// scripting language's own parser is an external collaborator (§1, §6);
// this package only ever sees nodes in these shapes.
type Node interface {
	isNode()
}

// Call is a remote call: callee is either a (module, function) pair or an
// AliasPath + function when the call targets an alias introduced via
// Import/Require/Alias. Exactly one of Module/AliasPath is set.
type Call struct {
	Module   string   // resolved module identifier, or "" if AliasPath is used
	AliasPath []string // alias segments, resolved against the injected alias map
	Function string
	Args     []Node
}

func (Call) isNode() {}

// Local is an implicit-core-library call: a bare name with no module
// qualifier, e.g. local function calls and core built-ins like spawn/send.
type Local struct {
	Name string
	Args []Node
}

func (Local) isNode() {}

// Capture is a function capture (&Mod.fun/arity or &fun/arity). It is
// treated as a call of the referenced MFA for authorization purposes
// without actually invoking it at analysis time.
//
// Exactly one of (Module or AliasPath) + Function, or Local, is set: a
// remote/aliased capture sets Module/AliasPath+Function; a bare local
// capture (&fun/arity) sets only Local.
type Capture struct {
	Module    string
	AliasPath []string
	Function  string
	Local     string
	Arity     int
}

func (Capture) isNode() {}

// SyntacticForm tags a blocked syntactic construct: receive blocks, import/
// require/alias declarations, and any module/function/macro/struct/
// protocol/impl definition form. The analyzer rejects every SyntacticForm
// node outright regardless of allowlist.
type SyntacticForm struct {
	Kind string // "receive", "import", "require", "alias", "def", "defmodule", ...
}

func (SyntacticForm) isNode() {}

// Block is a top-level sequence of statements. The sandbox evaluator wraps
// parsed user code in a Block when injecting alias bindings; such
// sandbox-injected Alias forms are exempt from the SyntacticForm rejection
// rule (see Analyze's injectedAliasDepth handling).
type Block struct {
	Stmts []Node
}

func (Block) isNode() {}

// Literal is any node the analyzer does not need to inspect: constants,
// identifiers that are not calls, operators already desugared to Call, etc.
// It is always Ok.
type Literal struct {
	Value any
}

func (Literal) isNode() {}
