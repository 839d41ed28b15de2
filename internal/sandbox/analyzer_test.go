package sandbox

import (
	"testing"

	"github.com/agentcore/agentcore/internal/allowlist"
)

func TestAnalyzeBlockedPrimitiveWins(t *testing.T) {
	catalog := allowlist.Catalog{"file": allowlist.ModuleSurface{"read!": true}}
	spec := allowlist.NewSpec().Allow("file", allowlist.PermAll())

	ast := Call{Module: "file", Function: "read!", Args: []Node{Literal{Value: "/etc/passwd"}}}
	err := Analyze(ast, spec, catalog, nil)
	if err == nil {
		t.Fatal("expected restricted error for blocked module, regardless of allowlist grant")
	}
}

func TestAnalyzeCaptureBypassBlocked(t *testing.T) {
	// S3: f = &apply/3; f.(File, :read!, [...]) must be Restricted at
	// analysis time, before any evaluation occurs.
	spec := allowlist.DefaultAllowlist()
	catalog := allowlist.DefaultCatalog()

	ast := Block{Stmts: []Node{
		Capture{Local: "apply", Arity: 3},
	}}
	if err := Analyze(ast, spec, catalog, nil); err == nil {
		t.Fatal("capture of a blocked primitive must be restricted")
	}
}

func TestAnalyzeUnauthorizedModule(t *testing.T) {
	catalog := allowlist.Catalog{"mod": allowlist.ModuleSurface{"f": true}}
	spec := allowlist.NewSpec() // nothing allowed

	ast := Call{Module: "mod", Function: "f"}
	err := Analyze(ast, spec, catalog, nil)
	if err == nil {
		t.Fatal("expected restricted error for unauthorized module")
	}
}

func TestAnalyzeSyntacticFormBlocked(t *testing.T) {
	spec := allowlist.DefaultAllowlist()
	catalog := allowlist.DefaultCatalog()
	for _, kind := range []string{"receive", "import", "require", "alias", "defmodule"} {
		ast := SyntacticForm{Kind: kind}
		if err := Analyze(ast, spec, catalog, nil); err == nil {
			t.Fatalf("expected %s to be rejected as a syntactic form", kind)
		}
	}
}

func TestAnalyzeInjectedAliasExempt(t *testing.T) {
	spec := allowlist.DefaultAllowlist()
	catalog := allowlist.DefaultCatalog()
	ast := Block{Stmts: []Node{injectedAlias{Alias: "S", Full: "string"}}}
	if err := Analyze(ast, spec, catalog, nil); err != nil {
		t.Fatalf("sandbox-injected alias must be exempt from the blocked-syntax rule: %v", err)
	}
}

func TestAnalyzeAliasResolution(t *testing.T) {
	catalog := allowlist.Catalog{"string": allowlist.ModuleSurface{"upcase": true}}
	spec := allowlist.NewSpec().Allow("string", allowlist.PermAll())
	aliases := map[string]string{"S": "string"}

	ast := Call{AliasPath: []string{"S"}, Function: "upcase", Args: []Node{Literal{Value: "hi"}}}
	if err := Analyze(ast, spec, catalog, aliases); err != nil {
		t.Fatalf("aliased call should resolve through the alias map: %v", err)
	}
}
