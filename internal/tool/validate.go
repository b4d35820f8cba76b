package tool

import (
	"github.com/spf13/cast"

	"github.com/go-smol/smolagents/internal/agenterr"
)

// Coerce applies §4.2's numeric/string coercion rules before validation:
// models frequently emit a stringified number ("3") for an integer/number
// parameter, or a bare number for a string parameter. Coerce returns a copy
// of args with values converted to the schema's declared type wherever a
// lossless conversion exists, leaving anything ambiguous (objects, arrays,
// already-matching values) untouched so Validate's stricter check still
// applies.
func Coerce(schema Schema, args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for name, v := range args {
		p, ok := schema[name]
		if !ok {
			out[name] = v
			continue
		}
		out[name] = coerceValue(p, v)
	}
	return out
}

func coerceValue(p Param, v any) any {
	if v == nil {
		return v
	}
	if p.Satisfies(actualType(v)) {
		return v
	}
	for _, t := range p.Type {
		switch t {
		case TypeInteger:
			if n, err := cast.ToInt64E(v); err == nil && actualType(v) != TypeObject && actualType(v) != TypeArray && actualType(v) != TypeNumber {
				return n
			}
		case TypeNumber:
			if n, err := cast.ToFloat64E(v); err == nil && actualType(v) != TypeObject && actualType(v) != TypeArray {
				return n
			}
		case TypeString:
			if _, isStr := v.(string); !isStr {
				if s, err := cast.ToStringE(v); err == nil {
					return s
				}
			}
		case TypeBoolean:
			if _, isBool := v.(bool); !isBool {
				if b, err := cast.ToBoolE(v); err == nil {
					return b
				}
			}
		}
	}
	return v
}

// Validate checks args against schema per §4.2's argument-validation rules:
//
//   - an argument name absent from schema is rejected (unknown argument)
//   - a schema parameter with no default and not nullable must be present
//     (missing required argument)
//   - a present argument's runtime type must satisfy its Param (type
//     mismatch), where "integer" values satisfy "number" parameters and
//     "null" satisfies a nullable parameter regardless of declared type
//
// Returns a *agenterr.AgentError of Kind ToolCall on any violation,
// otherwise nil. Call runs Coerce before this check, so Call rejects
// exactly when Validate rejects the coerced arguments; raw arguments that
// Coerce converts (such as "3" for a number parameter) fail Validate but
// pass Call.
func Validate(schema Schema, args map[string]any) error {
	for name := range args {
		if _, ok := schema[name]; !ok {
			return agenterr.NewToolCallError("unexpected argument %q", name)
		}
	}

	for name, p := range schema {
		v, present := args[name]
		if !present {
			if p.HasDefault || p.Nullable {
				continue
			}
			return agenterr.NewToolCallError("missing required argument %q", name)
		}
		actual := actualType(v)
		if !p.Satisfies(actual) {
			return agenterr.NewToolCallError("argument %q: expected %v, got %s", name, p.Type, actual)
		}
	}
	return nil
}

// actualType classifies a decoded JSON value (or a native Go value passed
// directly by a code-agent call) into one of the authorized ValueTypes.
// encoding/json decodes all JSON numbers as float64; a float64 with no
// fractional part is treated as "integer" so that `{"n": 3}` satisfies an
// "integer" parameter rather than only "number".
func actualType(v any) ValueType {
	switch x := v.(type) {
	case nil:
		return TypeNull
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case float64:
		if x == float64(int64(x)) {
			return TypeInteger
		}
		return TypeNumber
	case int, int32, int64:
		return TypeInteger
	case float32:
		return TypeNumber
	case []any:
		return TypeArray
	case map[string]any:
		return TypeObject
	default:
		return TypeAny
	}
}
