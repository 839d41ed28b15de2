package actionschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }

// Validator compiles a Build()-produced schema once and validates candidate
// action replies against it, as defense in depth beyond whatever shape
// enforcement the LLM transport itself performs.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile builds and compiles the action schema for the given output_schema.
func Compile(outputSchema []Field) (*Validator, error) {
	raw, err := json.Marshal(Build(outputSchema))
	if err != nil {
		return nil, fmt.Errorf("marshal action schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	const resourceName = "action-reply.json"
	if err := compiler.AddResource(resourceName, bytesReader(raw)); err != nil {
		return nil, fmt.Errorf("add action schema resource: %w", err)
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile action schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks reply (already decoded from the LLM's JSON response)
// against the compiled schema.
func (v *Validator) Validate(reply map[string]any) error {
	return v.schema.Validate(reply)
}
