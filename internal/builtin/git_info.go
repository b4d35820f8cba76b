package builtin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-smol/smolagents/internal/tool"
	"github.com/go-smol/smolagents/internal/util"
)

const gitTimeout = 10 * time.Second
const maxGitOutputRunes = 8000

// allowedGitCommands is the whitelist of read-only git subcommands.
var allowedGitCommands = map[string]bool{
	"status": true, "diff": true, "log": true,
	"branch": true, "stash": true, "show": true,
}

// dangerousGitArgs blocks git-level write/escape flags. Shell metacharacters
// aren't listed: exec.Command never invokes a shell, so they reach git as
// literal argv entries.
var dangerousGitArgs = []string{
	"--exec", "--upload-pack", "--receive-pack",
	"--output", "--output-directory",
	"--no-index", "--work-tree", "--git-dir",
}

// GitInfoTool provides read-only Git queries (status/diff/log/branch/stash/show).
type GitInfoTool struct {
	workspaceDir string
}

func NewGitInfoTool(workspaceDir string) *GitInfoTool {
	return &GitInfoTool{workspaceDir: workspaceDir}
}

func (t *GitInfoTool) Name() string        { return "git_info" }
func (t *GitInfoTool) Description() string { return "Read-only Git queries: status, diff, log, branch, stash, show." }

func (t *GitInfoTool) InputSchema() tool.Schema {
	return tool.Schema{
		"command": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "one of: status, diff, log, branch, stash, show"},
		"path":    tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "optional path restriction", Nullable: true},
		"args":    tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "optional whitespace-separated extra args", Nullable: true},
	}
}

func (t *GitInfoTool) OutputType() tool.ValueType { return tool.TypeString }

func isDangerousGitArg(token string) bool {
	lower := strings.ToLower(token)
	if strings.HasPrefix(lower, "-c") && !strings.HasPrefix(lower, "--") {
		return true
	}
	for _, bad := range dangerousGitArgs {
		if lower == bad || strings.HasPrefix(lower, bad+"=") {
			return true
		}
	}
	return false
}

func (t *GitInfoTool) Forward(ctx context.Context, args map[string]any) (any, error) {
	command, _ := args["command"].(string)
	path, _ := args["path"].(string)
	rawArgs, _ := args["args"].(string)

	if !allowedGitCommands[command] {
		return nil, fmt.Errorf("unsupported git command %q (allowed: status/diff/log/branch/stash/show)", command)
	}

	userArgs := strings.Fields(strings.TrimSpace(rawArgs))
	for _, tok := range userArgs {
		if isDangerousGitArg(tok) {
			return nil, fmt.Errorf("argument %q is not permitted", tok)
		}
	}

	var cmdArgs []string
	path = strings.TrimSpace(path)
	switch command {
	case "status":
		if len(userArgs) > 0 {
			cmdArgs = append([]string{"status"}, userArgs...)
		} else {
			cmdArgs = []string{"status", "--short"}
		}
		if path != "" {
			cmdArgs = append(cmdArgs, "--", path)
		}
	case "diff":
		if len(userArgs) > 0 {
			cmdArgs = append([]string{"diff"}, userArgs...)
		} else {
			cmdArgs = []string{"diff", "--stat"}
		}
		if path != "" {
			cmdArgs = append(cmdArgs, "--", path)
		}
	case "log":
		if len(userArgs) > 0 {
			cmdArgs = append([]string{"log"}, userArgs...)
		} else {
			cmdArgs = []string{"log", "--oneline", "-20"}
		}
		if path != "" {
			cmdArgs = append(cmdArgs, "--", path)
		}
	case "branch":
		if len(userArgs) > 0 {
			cmdArgs = append([]string{"branch"}, userArgs...)
		} else {
			cmdArgs = []string{"branch", "-a"}
		}
	case "stash":
		cmdArgs = []string{"stash", "list"}
	case "show":
		cmdArgs = append([]string{"show"}, userArgs...)
	}

	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	cmd.Dir = t.workspaceDir
	cmd.Env = filterGitEnv(os.Environ())

	output, err := cmd.CombinedOutput()
	outStr := util.TruncateRunes(strings.TrimSpace(string(output)), maxGitOutputRunes)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("git command timed out (%v): %s", gitTimeout, outStr)
		}
		return outStr, fmt.Errorf("git command error: %w", err)
	}
	return outStr, nil
}

// filterGitEnv strips credential-bearing variables before exec, so a
// sandboxed git invocation can't exfiltrate them via e.g. GIT_ASKPASS.
func filterGitEnv(environ []string) []string {
	out := environ[:0:0]
	for _, e := range environ {
		if strings.HasPrefix(e, "GIT_ASKPASS=") || strings.HasPrefix(e, "GIT_SSH_COMMAND=") {
			continue
		}
		out = append(out, e)
	}
	return out
}
