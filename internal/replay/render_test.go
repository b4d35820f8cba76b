package replay

import (
	"strings"
	"testing"

	"github.com/go-smol/smolagents/internal/chatmsg"
	"github.com/go-smol/smolagents/internal/memory"
)

func buildSampleMemory(t *testing.T) *memory.Memory {
	t.Helper()
	mem := memory.New("you are a helpful agent")
	if err := mem.Append(memory.TaskStep{Task: "sum 2 and 3"}); err != nil {
		t.Fatal(err)
	}
	step := memory.ActionStep{
		StepNumber:  1,
		ModelOutput: "I'll call the adder tool.",
		ToolCalls: []chatmsg.ToolCall{
			{ID: "call_1", Name: "add", Arguments: []byte(`{"a":2,"b":3}`)},
		},
		Observations:  "5",
		IsFinalAnswer: true,
		ActionOutput:  5,
	}
	if err := mem.Append(step); err != nil {
		t.Fatal(err)
	}
	if err := mem.Append(memory.FinalAnswerStep{Output: 5}); err != nil {
		t.Fatal(err)
	}
	return mem
}

func TestMarkdown_IncludesStepsAndFinalAnswer(t *testing.T) {
	mem := buildSampleMemory(t)
	md := Markdown("run1", mem, nil)

	for _, want := range []string{"## Task", "sum 2 and 3", "## Step 1", "add({\"a\":2,\"b\":3})", "## Result", "5"} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q, got:\n%s", want, md)
		}
	}
}

func TestMarkdown_InterleavesNotes(t *testing.T) {
	mem := buildSampleMemory(t)
	notes := NewStore()
	notes.Append("run1", Note{StepNumber: 0, Source: SourceManual, Content: "reviewed by oncall"})
	notes.Append("run1", Note{StepNumber: 1, Source: SourceAuto, Content: "tool latency 12ms"})

	md := Markdown("run1", mem, notes)
	if !strings.Contains(md, "reviewed by oncall") {
		t.Errorf("expected run-level note in output:\n%s", md)
	}
	if !strings.Contains(md, "tool latency 12ms") {
		t.Errorf("expected step-level note in output:\n%s", md)
	}
}

func TestMarkdown_NilNotesStore(t *testing.T) {
	mem := buildSampleMemory(t)
	md := Markdown("run1", mem, nil)
	if md == "" {
		t.Error("expected non-empty markdown with nil notes store")
	}
}

func TestRender_ProducesNonEmptyOutput(t *testing.T) {
	mem := buildSampleMemory(t)
	out, err := Render("run1", mem, nil, "notty")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Error("expected non-empty rendered output")
	}
}
