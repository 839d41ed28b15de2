package actionschema

import "testing"

func TestBuildDefaultResultSchema(t *testing.T) {
	schema := Build(nil)
	props := schema["properties"].(map[string]any)
	if _, ok := props["action"]; !ok {
		t.Fatal("schema must declare an action property")
	}
	required := schema["required"].([]string)
	if len(required) != 3 {
		t.Fatalf("expected 3 required top-level fields, got %v", required)
	}
	if schema["additionalProperties"] != false {
		t.Fatal("schema must forbid additional properties")
	}
}

func TestBuildResultFromOutputSchema(t *testing.T) {
	schema := Build([]Field{
		{Name: "count", Type: TypeInteger, Required: true},
		{Name: "tags", Type: TypeList, Elem: TypeString, Required: false},
	})
	props := schema["properties"].(map[string]any)
	result := props["result"].(map[string]any)
	resultProps := result["properties"].(map[string]any)

	if resultProps["count"].(map[string]any)["type"] != "integer" {
		t.Fatal("integer field must map to JSON schema integer type")
	}
	tags := resultProps["tags"].(map[string]any)
	if tags["type"] != "array" {
		t.Fatal("list field must map to JSON schema array type")
	}
	if tags["items"].(map[string]any)["type"] != "string" {
		t.Fatal("list<string> must map to array<string>")
	}

	required := result["required"].([]string)
	if len(required) != 1 || required[0] != "count" {
		t.Fatalf("only count should be required, got %v", required)
	}
}

func TestValidatorAcceptsConformingReply(t *testing.T) {
	v, err := Compile([]Field{{Name: "value", Type: TypeString, Required: true}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	reply := map[string]any{
		"action": "return",
		"code":   "",
		"result": map[string]any{"value": "ok"},
	}
	if err := v.Validate(reply); err != nil {
		t.Fatalf("expected valid reply, got %v", err)
	}
}

func TestValidatorRejectsUnknownAction(t *testing.T) {
	v, err := Compile(nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	reply := map[string]any{
		"action": "teleport",
		"code":   "",
		"result": map[string]any{"value": "x"},
	}
	if err := v.Validate(reply); err == nil {
		t.Fatal("expected validation error for unknown action")
	}
}
