package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-smol/smolagents/internal/tool"
)

const (
	maxFileReadBytes  = 1 << 20 // 1MB
	maxFileWriteBytes = 1 << 20 // 1MB
	maxListEntries    = 200
)

// safeResolvePath joins rel against workspaceDir and rejects any result
// that escapes it via "..". The check is lexical: symlinks are not
// resolved, so a symlink inside the workspace that points outside it is
// not detected.
func safeResolvePath(rel, workspaceDir string) (string, error) {
	root, err := filepath.Abs(workspaceDir)
	if err != nil {
		return "", fmt.Errorf("resolve workspace dir: %w", err)
	}
	joined := filepath.Join(root, rel)
	clean := filepath.Clean(joined)
	if clean != root && !strings.HasPrefix(clean, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace", rel)
	}
	return clean, nil
}

// ── file_read ──

type FileReadTool struct{ workspaceDir string }

func NewFileReadTool(workspaceDir string) *FileReadTool { return &FileReadTool{workspaceDir: workspaceDir} }

func (t *FileReadTool) Name() string             { return "file_read" }
func (t *FileReadTool) Description() string      { return "Reads the contents of a file in the workspace." }
func (t *FileReadTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *FileReadTool) InputSchema() tool.Schema {
	return tool.Schema{"path": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "workspace-relative file path"}}
}

func (t *FileReadTool) Forward(_ context.Context, args map[string]any) (any, error) {
	rel, _ := args["path"].(string)
	path, err := safeResolvePath(rel, t.workspaceDir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat failed: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory; use file_list", path)
	}
	if info.Size() > maxFileReadBytes {
		return nil, fmt.Errorf("file too large (%d bytes, max %d)", info.Size(), maxFileReadBytes)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxFileReadBytes))
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	return string(data), nil
}

// ── file_write ──

type FileWriteTool struct{ workspaceDir string }

func NewFileWriteTool(workspaceDir string) *FileWriteTool { return &FileWriteTool{workspaceDir: workspaceDir} }

func (t *FileWriteTool) Name() string             { return "file_write" }
func (t *FileWriteTool) Description() string      { return "Writes content to a file in the workspace, creating parent directories as needed." }
func (t *FileWriteTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *FileWriteTool) InputSchema() tool.Schema {
	return tool.Schema{
		"path":    tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "workspace-relative file path"},
		"content": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "content to write"},
	}
}

func (t *FileWriteTool) Forward(_ context.Context, args map[string]any) (any, error) {
	rel, _ := args["path"].(string)
	content, _ := args["content"].(string)
	if len(content) > maxFileWriteBytes {
		return nil, fmt.Errorf("content too large (%d bytes, max %d)", len(content), maxFileWriteBytes)
	}

	path, err := safeResolvePath(rel, t.workspaceDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create parent dirs: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write failed: %w", err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), rel), nil
}

// ── file_list ──

type FileListTool struct{ workspaceDir string }

func NewFileListTool(workspaceDir string) *FileListTool { return &FileListTool{workspaceDir: workspaceDir} }

func (t *FileListTool) Name() string             { return "file_list" }
func (t *FileListTool) Description() string      { return "Lists files and directories at a workspace-relative path (non-recursive)." }
func (t *FileListTool) OutputType() tool.ValueType { return tool.TypeString }
func (t *FileListTool) InputSchema() tool.Schema {
	return tool.Schema{"path": tool.Param{Type: []tool.ValueType{tool.TypeString}, Description: "workspace-relative directory path", Nullable: true, Default: ".", HasDefault: true}}
}

func (t *FileListTool) Forward(_ context.Context, args map[string]any) (any, error) {
	rel, ok := args["path"].(string)
	if !ok || rel == "" {
		rel = "."
	}
	path, err := safeResolvePath(rel, t.workspaceDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("list failed: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var sb strings.Builder
	count := 0
	for _, e := range entries {
		if count >= maxListEntries {
			sb.WriteString(fmt.Sprintf("... truncated at %d entries\n", maxListEntries))
			break
		}
		suffix := ""
		if e.IsDir() {
			suffix = "/"
		}
		sb.WriteString(e.Name() + suffix + "\n")
		count++
	}
	if count == 0 {
		return "(empty directory)", nil
	}
	return sb.String(), nil
}
