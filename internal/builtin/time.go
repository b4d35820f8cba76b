package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/go-smol/smolagents/internal/tool"
)

// TimeTool reports the current time, optionally converted to an IANA
// timezone.
type TimeTool struct{}

func NewTimeTool() *TimeTool { return &TimeTool{} }

func (t *TimeTool) Name() string        { return "get_time" }
func (t *TimeTool) Description() string { return "Returns the current time, optionally converted to a given IANA timezone." }

func (t *TimeTool) InputSchema() tool.Schema {
	return tool.Schema{
		"timezone": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "IANA timezone name, e.g. Asia/Shanghai", Nullable: true},
	}
}

func (t *TimeTool) OutputType() tool.ValueType { return tool.TypeString }

func (t *TimeTool) Forward(_ context.Context, args map[string]any) (any, error) {
	now := time.Now()
	if tz, ok := args["timezone"].(string); ok && tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		now = now.In(loc)
	}
	return fmt.Sprintf("%s (%s)", now.Format("2006-01-02 15:04:05 MST"), now.Weekday()), nil
}
