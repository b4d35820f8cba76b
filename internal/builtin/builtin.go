// Package builtin provides the curated set of first-party tool.Tool
// implementations every agent run starts with: the reserved final_answer
// tool, optional user interaction, web search/fetch, and a handful of
// workspace-scoped utilities (file, shell, http, time, git).
package builtin

import (
	"io"

	"github.com/go-smol/smolagents/internal/tool"
)

// Options configures which optional builtins Register wires in, beyond the
// always-registered final_answer.
type Options struct {
	WorkspaceDir     string
	Stdin            io.Reader // enables user_input when non-nil
	EnableShell      bool
	AllowInternalNet bool // http_request may reach loopback/private addresses
	BraveAPIKey      string
	TavilyAPIKey     string
}

// Register adds the standard builtin tools to reg according to opts.
// final_answer is always registered; search/user_input are only registered
// when their prerequisite (an API key, a stdin reader) is supplied, since an
// unusable tool in the catalogue just wastes the model's attention.
func Register(reg *tool.Registry, opts Options) {
	reg.Register(NewFinalAnswerTool())
	reg.Register(NewTimeTool())
	reg.Register(NewVisitWebpageTool())
	reg.Register(NewFileReadTool(opts.WorkspaceDir))
	reg.Register(NewFileWriteTool(opts.WorkspaceDir))
	reg.Register(NewFileListTool(opts.WorkspaceDir))
	reg.Register(NewGitInfoTool(opts.WorkspaceDir))
	reg.Register(NewHTTPRequestTool(opts.AllowInternalNet))
	reg.Register(NewShellTool(opts.WorkspaceDir, opts.EnableShell))

	if opts.Stdin != nil {
		reg.Register(NewUserInputTool(opts.Stdin))
	}
	if opts.BraveAPIKey != "" {
		reg.Register(NewBraveSearchTool(opts.BraveAPIKey))
	}
	if opts.TavilyAPIKey != "" {
		reg.Register(NewTavilySearchTool(opts.TavilyAPIKey))
	}
}
