package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ValueType enumerates the authorized parameter/output types (§3's Tool
// invariant: "output_type is authorized").
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeInteger ValueType = "integer"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeArray   ValueType = "array"
	TypeObject  ValueType = "object"
	TypeImage   ValueType = "image"
	TypeAudio   ValueType = "audio"
	TypeAny     ValueType = "any"
	TypeNull    ValueType = "null"
)

var authorizedTypes = map[ValueType]bool{
	TypeString: true, TypeInteger: true, TypeNumber: true, TypeBoolean: true,
	TypeArray: true, TypeObject: true, TypeImage: true, TypeAudio: true,
	TypeAny: true, TypeNull: true,
}

// Authorized reports whether t is one of the §3 authorized value types.
func Authorized(t ValueType) bool { return authorizedTypes[t] }

// Param describes one declared input parameter: {type, description,
// nullable?, default?}. Type is a union (len > 1 means "satisfied if the
// actual type is in the union", per §4.2).
type Param struct {
	Type        []ValueType
	Description string
	Nullable    bool
	Default     any
	HasDefault  bool
}

// Satisfies reports whether Param's declared type set accepts an argument
// whose JSON-decoded Go value is actual. "any" matches anything; "integer"
// satisfies a "number" parameter (the one permitted coercion, §4.2);
// "null" satisfies a nullable parameter regardless of nominal type.
func (p Param) Satisfies(actual ValueType) bool {
	if actual == TypeNull {
		return p.Nullable
	}
	for _, t := range p.Type {
		if t == TypeAny {
			return true
		}
		if t == actual {
			return true
		}
		if t == TypeNumber && actual == TypeInteger {
			return true
		}
	}
	return false
}

// Schema is the declared input schema: parameter name -> Param.
type Schema map[string]Param

// BuildSchema is a convenience constructor for hand-written schemas,
// returning the typed Schema instead of a raw JSON blob — JSON projection
// happens once, centrally, in ToJSONSchema.
func BuildSchema(params map[string]Param) Schema {
	out := make(Schema, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// SchemaFromStruct derives a Schema from a Go struct's JSON tags and
// jsonschema tags (`jsonschema:"required,description=..."`) using
// github.com/invopop/jsonschema's reflection-based schema builder. This is
// the preferred way to declare a tool's parameters when they already exist
// as a typed Args struct (see internal/builtin/http.go), instead of
// hand-rolling a Schema literal field by field.
func SchemaFromStruct(v any) Schema {
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	s := r.Reflect(v)

	required := map[string]bool{}
	for _, name := range s.Required {
		required[name] = true
	}

	out := make(Schema, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		name, prop := pair.Key, pair.Value
		vt := jsonTypeToValueType(prop.Type)
		p := Param{
			Type:        []ValueType{vt},
			Description: prop.Description,
			Nullable:    !required[name],
		}
		if prop.Default != nil {
			p.Default = prop.Default
			p.HasDefault = true
		}
		out[name] = p
	}
	return out
}

func jsonTypeToValueType(jsonType string) ValueType {
	switch jsonType {
	case "string":
		return TypeString
	case "integer":
		return TypeInteger
	case "number":
		return TypeNumber
	case "boolean":
		return TypeBoolean
	case "array":
		return TypeArray
	case "object":
		return TypeObject
	default:
		return TypeAny
	}
}

// FunctionSchema is the OpenAI-style function descriptor §4.2 projects a
// tool to: {type:"function", function:{name, description, parameters}}.
type FunctionSchema struct {
	Type     string           `json:"type"`
	Function FunctionSchemaFn `json:"function"`
}

type FunctionSchemaFn struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ParametersSpec `json:"parameters"`
}

type ParametersSpec struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

// ToJSONSchema projects a tool to a FunctionSchema per §4.2: "any" is
// rewritten to "string", and "required" lists every parameter lacking both
// a default and nullable:true.
func ToJSONSchema(name, description string, schema Schema) FunctionSchema {
	props := make(map[string]any, len(schema))
	var required []string
	for pname, p := range schema {
		jsonType := string(p.Type[0])
		if jsonType == string(TypeAny) {
			jsonType = string(TypeString)
		}
		prop := map[string]any{
			"type":        jsonType,
			"description": p.Description,
		}
		props[pname] = prop
		if !p.HasDefault && !p.Nullable {
			required = append(required, pname)
		}
	}
	return FunctionSchema{
		Type: "function",
		Function: FunctionSchemaFn{
			Name:        name,
			Description: description,
			Parameters: ParametersSpec{
				Type:       "object",
				Properties: props,
				Required:   required,
			},
		},
	}
}

// MarshalJSONSchema is a convenience wrapper returning the raw JSON bytes
// of ToJSONSchema, used where a json.RawMessage is needed (e.g. MCP's
// InputSchema() contract, or the model client's tool-definition payload).
func MarshalJSONSchema(name, description string, schema Schema) json.RawMessage {
	data, _ := json.Marshal(ToJSONSchema(name, description, schema).Function.Parameters)
	return data
}

// ToCodeSignature renders a Python-like call signature for the code agent's
// system prompt, e.g. `add(a: number, b: number) -> number`.
func ToCodeSignature(name string, schema Schema, outputType ValueType) string {
	sig := name + "("
	first := true
	// Deterministic order: Go map iteration order is random, so the
	// parameter names are sorted here to keep the signature stable.
	names := make([]string, 0, len(schema))
	for pname := range schema {
		names = append(names, pname)
	}
	sortStrings(names)
	for _, pname := range names {
		p := schema[pname]
		if !first {
			sig += ", "
		}
		first = false
		sig += pname + ": " + string(p.Type[0])
		if p.Nullable {
			sig += " | null"
		}
	}
	sig += ") -> " + string(outputType)
	return sig
}

func sortStrings(xs []string) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
