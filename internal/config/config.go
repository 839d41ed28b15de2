// Package config implements the layered configuration resolver (C5): a
// deep-merge over call_opts, an agent's static_config, process-wide
// defaults, and hard-coded defaults, in that precedence.
package config

import (
	"gopkg.in/yaml.v3"
)

// SandboxConfig is the sandbox-specific slice of Config. Only TimeoutMs is
// enforced; MaxHeapSizeUnits is an advisory passthrough (§3).
type SandboxConfig struct {
	TimeoutMs        int `yaml:"timeout_ms"`
	MaxHeapSizeUnits int `yaml:"max_heap_size"`
}

// Config is the immutable per-activation configuration snapshot (§3).
type Config struct {
	Model         string        `yaml:"model"`
	TimeoutMs     int           `yaml:"timeout_ms"`
	MaxIterations int           `yaml:"max_iterations"`
	MaxRetries    int           `yaml:"max_retries"`
	Sandbox       SandboxConfig `yaml:"sandbox"`
}

// Defaults returns the hard-coded defaults of §4.5, the bottom of the
// precedence chain.
func Defaults() Config {
	return Config{
		Model:         "openai:gpt-4o",
		TimeoutMs:     30000,
		MaxIterations: 10,
		MaxRetries:    3,
		Sandbox: SandboxConfig{
			TimeoutMs:        5000,
			MaxHeapSizeUnits: 50000,
		},
	}
}

// toMap round-trips cfg through YAML to a generic map so it can be
// deep-merged by mergeMaps alongside the other layers, which are already
// generic maps loaded from process config files.
func toMap(cfg Config) map[string]any {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// Resolve applies the deep-merge precedence of §4.5: call_opts ⟶
// agent.static_config ⟶ process-wide defaults ⟶ hard-coded defaults
// (highest precedence first). Nested maps merge per-key; scalar values at
// the same key replace outright.
func Resolve(processDefaults, agentStaticConfig, callOpts map[string]any) (Config, error) {
	merged := toMap(Defaults())
	merged = mergeMaps(merged, processDefaults)
	merged = mergeMaps(merged, agentStaticConfig)
	merged = mergeMaps(merged, callOpts)
	cfg, err := decodeRawConfig(merged)
	if err != nil {
		return Config{}, err
	}
	return *cfg, nil
}
