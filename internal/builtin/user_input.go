package builtin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-smol/smolagents/internal/tool"
)

// UserInputTool reads one line of input from an operator-supplied reader —
// by default os.Stdin, wired in by cmd/agentrun — letting an agent pause a
// run to ask a clarifying question.
type UserInputTool struct {
	reader *bufio.Reader
}

func NewUserInputTool(r io.Reader) *UserInputTool {
	return &UserInputTool{reader: bufio.NewReader(r)}
}

func (t *UserInputTool) Name() string        { return "user_input" }
func (t *UserInputTool) Description() string { return "Asks the user a question and returns their typed reply." }
func (t *UserInputTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *UserInputTool) InputSchema() tool.Schema {
	return tool.Schema{"question": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "the question to show the user"}}
}

func (t *UserInputTool) Forward(_ context.Context, args map[string]any) (any, error) {
	question, _ := args["question"].(string)
	fmt.Printf("\n[agent asks] %s\n> ", question)

	line, err := t.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read user input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
