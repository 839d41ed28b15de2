package config

import "testing"

func TestResolveUsesHardCodedDefaults(t *testing.T) {
	cfg, err := Resolve(nil, nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := Defaults()
	if cfg != want {
		t.Fatalf("got %+v, want hard-coded defaults %+v", cfg, want)
	}
}

func TestResolvePrecedenceCallOptsWinsOverAgentStatic(t *testing.T) {
	processDefaults := map[string]any{"max_retries": 5}
	agentStatic := map[string]any{"model": "anthropic:claude", "max_retries": 1}
	callOpts := map[string]any{"model": "openai:gpt-4o-mini"}

	cfg, err := Resolve(processDefaults, agentStatic, callOpts)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Model != "openai:gpt-4o-mini" {
		t.Fatalf("call_opts must win over agent static_config, got model=%s", cfg.Model)
	}
	if cfg.MaxRetries != 1 {
		t.Fatalf("agent static_config must win over process defaults, got max_retries=%d", cfg.MaxRetries)
	}
}

func TestResolveNestedSandboxMergesPerKey(t *testing.T) {
	agentStatic := map[string]any{"sandbox": map[string]any{"timeout_ms": 9000}}
	cfg, err := Resolve(nil, agentStatic, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Sandbox.TimeoutMs != 9000 {
		t.Fatalf("expected nested sandbox.timeout_ms override to apply, got %d", cfg.Sandbox.TimeoutMs)
	}
	if cfg.Sandbox.MaxHeapSizeUnits != Defaults().Sandbox.MaxHeapSizeUnits {
		t.Fatal("unset nested sandbox fields must fall through to defaults, not reset")
	}
}
