package builtin

import (
	"context"
	"testing"
)

func TestFinalAnswerTool_Forward(t *testing.T) {
	tool := NewFinalAnswerTool()
	out, err := tool.Forward(context.Background(), map[string]any{"answer": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "42" {
		t.Errorf("got %v, want 42", out)
	}
}

func TestFinalAnswerTool_NameAndSchema(t *testing.T) {
	tool := NewFinalAnswerTool()
	if tool.Name() != "final_answer" {
		t.Errorf("unexpected name: %s", tool.Name())
	}
	if _, ok := tool.InputSchema()["answer"]; !ok {
		t.Error("expected answer param in schema")
	}
}
