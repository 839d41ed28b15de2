// Package promptbuilder implements C9: deterministic assembly of the
// system prompt from an agent descriptor's tool catalog and action schema.
package promptbuilder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentcore/agentcore/internal/actionschema"
	"github.com/agentcore/agentcore/internal/descriptor"
)

const fallbackDescription = "You are an AI agent that executes tasks by generating sandboxed code."

const codeExecutionRules = `Code execution rules:
- Code runs in a sandboxed, in-process evaluator with no filesystem, network, or process access beyond the tools listed above.
- Each evaluation is stateless: variables and bindings do not persist across separate code submissions within the same task.
- Errors (parse, restricted, exception, timeout) are fed back to you verbatim; fix the code and resubmit rather than repeating the identical call.
- Tool calls are not automatically idempotent; do not assume a failed call had no side effects.
- Call tool functions using their fully module-qualified name, e.g. Mod.function(args).`

// Build assembles the deterministic system prompt for agent.
func Build(agent descriptor.Agent, opts map[string]any) string {
	var b strings.Builder

	writeDescription(&b, agent)
	writeToolDocs(&b, agent, opts)
	writeResponseFormat(&b, agent)
	b.WriteString("\n\n")
	b.WriteString(codeExecutionRules)

	if strings.TrimSpace(agent.SystemPromptExtra) != "" {
		b.WriteString("\n\n")
		b.WriteString(agent.SystemPromptExtra)
	}

	return b.String()
}

func writeDescription(b *strings.Builder, agent descriptor.Agent) {
	if strings.TrimSpace(agent.Moduledoc) != "" {
		b.WriteString(agent.Moduledoc)
		return
	}
	b.WriteString(fallbackDescription)
}

func writeToolDocs(b *strings.Builder, agent descriptor.Agent, opts map[string]any) {
	if len(agent.Tools) == 0 {
		return
	}
	b.WriteString("\n\nAvailable tools:\n")
	for _, tool := range agent.Tools {
		b.WriteString(fmt.Sprintf("\n## %s\n", tool.Name))

		desc := tool.Moduledoc
		if tool.DescriptionOverride != nil {
			if override, ok := tool.DescriptionOverride(); ok {
				desc = override
			}
		}
		if strings.TrimSpace(desc) != "" {
			b.WriteString(desc)
			b.WriteString("\n")
		}

		if tool.DynamicDoc != nil {
			if dyn, ok := tool.DynamicDoc(opts); ok && strings.TrimSpace(dyn) != "" {
				b.WriteString(dyn)
				b.WriteString("\n")
			}
		}

		for _, fn := range tool.Functions {
			b.WriteString(fmt.Sprintf("- %s(%s)", signature(tool.Name, fn.Name, fn.Params), ""))
			if fn.Doc != "" {
				b.WriteString(fmt.Sprintf("\n    %s", fn.Doc))
			}
			b.WriteString("\n")
		}
	}
}

func signature(moduleName, fnName string, params []string) string {
	return fmt.Sprintf("%s.%s(%s)", moduleName, fnName, strings.Join(params, ", "))
}

func writeResponseFormat(b *strings.Builder, agent descriptor.Agent) {
	b.WriteString("\n\nRespond with exactly one JSON object shaped as one of:\n")
	b.WriteString(`{"action": "eval_and_continue", "code": "<code>", "result": {}}` + "\n")
	b.WriteString(`{"action": "eval_and_complete", "code": "<code>", "result": {}}` + "\n")
	b.WriteString(`{"action": "return", "code": "", "result": <output>}` + "\n")
	b.WriteString(`{"action": "done", "code": "", "result": {}}` + "\n")

	if isCustomOutputSchema(agent.OutputSchema) {
		example := exampleResult(agent.OutputSchema)
		if pretty, err := json.MarshalIndent(example, "", "  "); err == nil {
			b.WriteString("\nWhen you use `return`, `result` must match this shape, for example:\n")
			b.Write(pretty)
			b.WriteString("\n")
		}
	}
}

func isCustomOutputSchema(fields []actionschema.Field) bool {
	if len(fields) != 1 {
		return len(fields) != 0
	}
	return fields[0].Name != "value"
}

func exampleResult(fields []actionschema.Field) map[string]any {
	example := map[string]any{}
	for _, f := range fields {
		switch f.Type {
		case actionschema.TypeString:
			example[f.Name] = "..."
		case actionschema.TypeFloat:
			example[f.Name] = 0.0
		case actionschema.TypeInteger:
			example[f.Name] = 0
		case actionschema.TypeBoolean:
			example[f.Name] = false
		case actionschema.TypeList:
			example[f.Name] = []any{}
		default:
			example[f.Name] = "..."
		}
	}
	return example
}
