package agent

import (
	"github.com/agentcore/agentcore/internal/allowlist"
	"github.com/agentcore/agentcore/internal/descriptor"
	"github.com/agentcore/agentcore/internal/promptbuilder"
)

func buildSystemPrompt(agent descriptor.Agent, callOpts map[string]any) string {
	return promptbuilder.Build(agent, callOpts)
}

func defaultAllowlistSpec() *allowlist.Spec {
	return allowlist.Extend(allowlist.DefaultAllowlist())
}

func defaultCatalog() allowlist.Catalog {
	catalog := allowlist.DefaultCatalog()
	out := make(allowlist.Catalog, len(catalog))
	for module, surface := range catalog {
		cloned := make(allowlist.ModuleSurface, len(surface))
		for fn := range surface {
			cloned[fn] = true
		}
		out[module] = cloned
	}
	return out
}
