// Package actionschema builds the strict JSON schema (C4) that constrains
// an LLM reply to one of the four structured actions the executor loop
// dispatches on.
package actionschema

// FieldType is an output_schema field type, per §3's Agent Descriptor.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeFloat   FieldType = "float"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeList    FieldType = "list"
)

// Field is one entry of an agent's output_schema: name -> {type, required}.
// Elem is only meaningful when Type == TypeList and names the element type.
type Field struct {
	Name     string
	Type     FieldType
	Elem     FieldType
	Required bool
}

// Actions are the four tagged variants an Action Reply's discriminant may
// take (§3, §4.4).
var Actions = []string{"eval_and_continue", "eval_and_complete", "return", "done"}

// Build constructs the JSON schema object of §4.4 from an agent's declared
// output_schema. The zero value ([]Field(nil)) produces the single-field
// default result schema.
func Build(outputSchema []Field) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{"enum": Actions},
			"code":   map[string]any{"type": "string"},
			"result": buildResultSchema(outputSchema),
		},
		"required":             []string{"action", "code", "result"},
		"additionalProperties": false,
	}
}

// buildResultSchema derives the `result` object schema from output_schema.
func buildResultSchema(fields []Field) map[string]any {
	properties := map[string]any{}
	var required []string

	if len(fields) == 0 {
		properties["value"] = map[string]any{"type": "string"}
		return map[string]any{
			"type":                 "object",
			"properties":           properties,
			"required":             []string{},
			"additionalProperties": false,
		}
	}

	for _, f := range fields {
		properties[f.Name] = mapFieldType(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	if required == nil {
		required = []string{}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func mapFieldType(f Field) map[string]any {
	switch f.Type {
	case TypeString:
		return map[string]any{"type": "string"}
	case TypeFloat:
		return map[string]any{"type": "number"}
	case TypeInteger:
		return map[string]any{"type": "integer"}
	case TypeBoolean:
		return map[string]any{"type": "boolean"}
	case TypeList:
		elem := Field{Type: f.Elem}
		return map[string]any{"type": "array", "items": mapFieldType(elem)}
	default:
		return map[string]any{"type": "string"}
	}
}
