package replay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/go-smol/smolagents/internal/memory"
)

// Markdown renders mem's succinct step dicts (§4.3 — no model_input_messages)
// as a Markdown transcript, interleaving any notes attached for runID: a
// full per-step transcript for a human reviewing a finished (or paused)
// run.
func Markdown(runID string, mem *memory.Memory, notes *Store) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Run %s\n\n", runID))

	var byStep map[int][]Note
	var runLevel []Note
	if notes != nil {
		byStep, runLevel = notesByStep(notes.Get(runID))
	}
	for _, n := range runLevel {
		sb.WriteString(renderNoteLine(n))
	}
	if len(runLevel) > 0 {
		sb.WriteString("\n")
	}

	for _, d := range mem.SuccinctSteps() {
		switch d.Kind {
		case "system_prompt":
			sb.WriteString("## System prompt\n\n")
			sb.WriteString(fenced(d.Task))

		case "task":
			sb.WriteString("## Task\n\n")
			sb.WriteString(d.Task + "\n\n")

		case "planning":
			sb.WriteString("## Plan\n\n")
			sb.WriteString(d.Plan + "\n\n")

		case "action":
			sb.WriteString(fmt.Sprintf("## Step %d\n\n", d.StepNumber))
			if d.ModelOutput != "" {
				sb.WriteString(d.ModelOutput + "\n\n")
			}
			for _, tc := range d.ToolCalls {
				sb.WriteString(fmt.Sprintf("**Call** `%s(%s)`\n\n", tc.Name, string(tc.Arguments)))
			}
			if d.Observations != "" {
				sb.WriteString("**Observation**\n\n")
				sb.WriteString(fenced(d.Observations))
			}
			if d.Error != "" {
				sb.WriteString(fmt.Sprintf("**Error:** %s\n\n", d.Error))
			}
			if d.IsFinalAnswer {
				sb.WriteString(fmt.Sprintf("**Final answer:** %v\n\n", d.Output))
			}
			for _, n := range byStep[d.StepNumber] {
				sb.WriteString(renderNoteLine(n))
			}

		case "final_answer":
			sb.WriteString("## Result\n\n")
			if d.Error != "" {
				sb.WriteString(fmt.Sprintf("**Error:** %s\n\n", d.Error))
			} else {
				sb.WriteString(fmt.Sprintf("%v\n\n", d.Output))
			}
		}
	}

	return sb.String()
}

func fenced(s string) string {
	return "```\n" + strings.TrimRight(s, "\n") + "\n```\n\n"
}

// Render renders runID's transcript through glamour for terminal display.
// style selects a glamour built-in style name ("dark", "light", "notty",
// "ascii"); an empty string uses glamour's auto-detected default.
func Render(runID string, mem *memory.Memory, notes *Store, style string) (string, error) {
	md := Markdown(runID, mem, notes)

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if style != "" {
		opts = append(opts, glamour.WithStandardStyle(style))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("replay: build renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("replay: render markdown: %w", err)
	}
	return out, nil
}
