package builtin

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-smol/smolagents/internal/tool"
)

const shellTimeout = 30 * time.Second

// dangerousShellPatterns is a best-effort blocklist of commands catastrophic
// enough to warrant refusing outright, not a security boundary — a
// determined prompt can still route around it.
var dangerousShellPatterns = []string{
	"rm -rf /", "rm -r -f /", "rm -rf ~", "rm -rf $home", "rm -rf ${home}",
	"rm -rf -- /", "rm -r -f -- /",
	"mkfs", "dd if=",
	"shutdown", "reboot", "halt", "init 0", "init 6",
	"systemctl poweroff", "systemctl halt",
	"pkill -9", "chmod -r 000 /",
	":(){:|:&};:",
	"format c:", "format d:",
	"del /s /q c:\\", "del /s /q d:\\", "rd /s /q c:\\", "rd /s /q d:\\",
}

// ShellTool executes a shell command in the workspace directory with a hard
// timeout and output cap. Disabled unless explicitly enabled by the caller
// (cmd/agentrun's --enable-shell flag).
type ShellTool struct {
	workspaceDir string
	enabled      bool
}

func NewShellTool(workspaceDir string, enabled bool) *ShellTool {
	return &ShellTool{workspaceDir: workspaceDir, enabled: enabled}
}

func (t *ShellTool) Name() string             { return "shell_exec" }
func (t *ShellTool) Description() string      { return "Executes a shell command in the workspace directory and returns its output." }
func (t *ShellTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *ShellTool) InputSchema() tool.Schema {
	return tool.Schema{"command": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "the command to run"}}
}

func (t *ShellTool) Forward(ctx context.Context, args map[string]any) (any, error) {
	if !t.enabled {
		return nil, fmt.Errorf("shell_exec is disabled for this run")
	}
	command, _ := args["command"].(string)
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("command must not be empty")
	}

	lower := strings.ToLower(command)
	for _, pattern := range dangerousShellPatterns {
		if strings.Contains(lower, pattern) {
			return nil, fmt.Errorf("refusing to run command matching blocked pattern %q", pattern)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, shellTimeout)
	defer cancel()

	shell, flag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}
	cmd := exec.CommandContext(ctx, shell, flag, command)
	cmd.Dir = t.workspaceDir

	output, err := cmd.CombinedOutput()
	outStr := string(output)
	if utf8.RuneCountInString(outStr) > 8000 {
		runes := []rune(outStr)
		outStr = string(runes[:8000]) + "...[truncated]"
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command timed out after %v: %s", shellTimeout, outStr)
		}
		return nil, fmt.Errorf("command exited with error: %w\noutput:\n%s", err, outStr)
	}
	return outStr, nil
}
