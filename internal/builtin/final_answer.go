package builtin

import (
	"context"

	"github.com/go-smol/smolagents/internal/tool"
)

// FinalAnswerTool exists only to publish the "final_answer" schema to the
// model — internal/toolagent.Agent special-cases calls named "final_answer"
// before dispatch ever reaches the registry, so Forward is never invoked in
// practice. It is still registered like any other tool so the model sees it
// in the tool catalogue and authorized_imports / registry listings stay
// consistent (§6's "reserved, required by every agent").
type FinalAnswerTool struct{}

func NewFinalAnswerTool() *FinalAnswerTool { return &FinalAnswerTool{} }

func (t *FinalAnswerTool) Name() string        { return "final_answer" }
func (t *FinalAnswerTool) Description() string { return "Provides the final answer to the given task." }
func (t *FinalAnswerTool) OutputType() tool.ValueType { return tool.TypeAny }
func (t *FinalAnswerTool) InputSchema() tool.Schema {
	return tool.Schema{"answer": tool.Param{Type: []tool.ValueType{tool.TypeAny}, Description: "the final answer to the task"}}
}

func (t *FinalAnswerTool) Forward(_ context.Context, args map[string]any) (any, error) {
	return args["answer"], nil
}
