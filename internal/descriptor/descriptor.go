// Package descriptor holds the Agent Descriptor and Tool Descriptor data
// model (§3): the collaborator-supplied records the prompt builder,
// allowlist, and config resolver all read from. It has no dependents of its
// own so every other package can import it without a cycle.
package descriptor

import (
	"github.com/agentcore/agentcore/internal/actionschema"
	"github.com/agentcore/agentcore/internal/allowlist"
)

// FunctionDoc documents one exported function of a Tool Descriptor.
type FunctionDoc struct {
	Name   string
	Arity  int
	Doc    string
	Params []string
}

// Tool is the Tool Descriptor of §3: an externally-supplied module exposing
// approved functions to sandboxed code.
type Tool struct {
	Name                 string
	Moduledoc            string
	Functions            []FunctionDoc
	AllowlistContribution map[string]allowlist.Permission

	// DynamicDoc, Aliases, and DescriptionOverride are optional
	// collaborators a tool may supply; nil means "not provided".
	DynamicDoc          func(opts map[string]any) (string, bool)
	Aliases             func(opts map[string]any) map[string]string // short_name -> full_name
	DescriptionOverride func() (string, bool)
}

// Agent is the Agent Descriptor of §3.
type Agent struct {
	Moduledoc          string
	Tools              []Tool
	OutputSchema       []actionschema.Field
	SystemPromptExtra  string
	StaticConfig       map[string]any
	SandboxOptions     map[string]any
	AllowlistSpec      *allowlist.Spec

	// ToolOptions resolves per-tool dynamic options for vault setup (§4.6).
	ToolOptions func(toolIdentifier string) map[string]any
}
