package skill

import (
	"context"
	"errors"

	"github.com/go-smol/smolagents/internal/tool"
)

// Tool implements tool.Tool for a single workspace skill defined by
// skill.yaml. Execution is delegated to the skill subprocess via the stdio
// JSON protocol.
type Tool struct {
	def    *SkillDef
	schema tool.Schema
}

// NewSkillTool creates a Tool from a parsed SkillDef. The schema is built
// once at construction time for efficiency.
func NewSkillTool(def *SkillDef) *Tool {
	return &Tool{def: def, schema: schemaFromParams(def.Parameters)}
}

func (t *Tool) Name() string             { return t.def.Name }
func (t *Tool) Description() string      { return t.def.Description }
func (t *Tool) InputSchema() tool.Schema { return t.schema }

// OutputType is always "string" — the stdio skill protocol returns a single
// text payload regardless of what the underlying script computed.
func (t *Tool) OutputType() tool.ValueType { return tool.TypeString }

// Forward runs the skill subprocess and returns its output, or an error
// wrapping the skill-reported failure message.
func (t *Tool) Forward(ctx context.Context, args map[string]any) (any, error) {
	output, errMsg := Run(ctx, t.def, args)
	if errMsg != "" {
		return nil, errors.New(errMsg)
	}
	return output, nil
}

// schemaFromParams converts []SkillParam into the declared tool.Schema.
func schemaFromParams(params []SkillParam) tool.Schema {
	out := make(tool.Schema, len(params))
	for _, p := range params {
		out[p.Name] = tool.Param{
			Type:        []tool.ValueType{skillParamType(p.Type)},
			Description: p.Description,
			Nullable:    !p.Required,
			Default:     p.Default,
			HasDefault:  p.Default != nil,
		}
	}
	return out
}

func skillParamType(t string) tool.ValueType {
	switch t {
	case "string":
		return tool.TypeString
	case "integer":
		return tool.TypeInteger
	case "number":
		return tool.TypeNumber
	case "boolean":
		return tool.TypeBoolean
	default:
		return tool.TypeAny
	}
}
