// Command agentrun is the CLI entry point of the agent runtime, built on
// github.com/spf13/cobra + github.com/spf13/viper: a root command plus a
// version subcommand, with flags for model/workspace/style bound through
// internal/config.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-smol/smolagents/internal/builtin"
	"github.com/go-smol/smolagents/internal/codeagent"
	agentconfig "github.com/go-smol/smolagents/internal/config"
	"github.com/go-smol/smolagents/internal/mcp"
	"github.com/go-smol/smolagents/internal/memory"
	"github.com/go-smol/smolagents/internal/model/openai"
	"github.com/go-smol/smolagents/internal/monitor"
	"github.com/go-smol/smolagents/internal/replay"
	"github.com/go-smol/smolagents/internal/runner"
	"github.com/go-smol/smolagents/internal/skill"
	"github.com/go-smol/smolagents/internal/tool"
	"github.com/go-smol/smolagents/internal/toolagent"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "agentrun [task]",
		Short: "agentrun — single-task LLM agent runtime",
		Args:  cobra.ArbitraryArgs,
		RunE:  runTask,
	}
	agentconfig.BindFlags(rootCmd.Flags())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the agentrun version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("agentrun v" + version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTask(cmd *cobra.Command, args []string) error {
	task := strings.Join(args, " ")
	if task == "" {
		return fmt.Errorf("usage: agentrun [flags] <task>")
	}

	cfg, err := agentconfig.Load(cmd.Flags())
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	registry := tool.NewRegistry(log)
	builtin.Register(registry, builtin.Options{
		WorkspaceDir:     cfg.WorkspaceDir,
		Stdin:            os.Stdin,
		EnableShell:      cfg.EnableShell,
		AllowInternalNet: cfg.AllowInternalNet,
		BraveAPIKey:      os.Getenv("BRAVE_API_KEY"),
		TavilyAPIKey:     os.Getenv("TAVILY_API_KEY"),
	})

	mcpManager := mcp.NewManager(cfg.MCPConfigPath)
	if n, errs := mcpManager.ConnectAll(ctx); n > 0 || len(errs) > 0 {
		for _, e := range errs {
			log.Warnw("mcp server connect failed", "error", e)
		}
		if err := mcpManager.RegisterTools(ctx, registry); err != nil {
			log.Warnw("mcp register tools failed", "error", err)
		}
	}
	defer mcpManager.CloseAll()

	skillManager := skill.NewManager(cfg.WorkspaceDir)
	if loaded, errs := skillManager.LoadAll(ctx, registry); loaded > 0 || len(errs) > 0 {
		for _, e := range errs {
			log.Warnw("skill load failed", "error", e)
		}
	}
	registry.Register(skill.NewReloadTool(skillManager, registry))
	registry.Register(mcp.NewReloadTool(mcpManager, registry))

	openaiCfg := &openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model, HTTPTimeout: 300}
	if openaiCfg.APIKey == "" {
		envCfg, err := openai.ConfigFromEnv(log)
		if err != nil {
			return fmt.Errorf("model config: %w", err)
		}
		openaiCfg = envCfg
	}
	provider, err := openai.NewClient(openaiCfg)
	if err != nil {
		return fmt.Errorf("build model client: %w", err)
	}

	driver := &runner.Driver{
		Memory:           memory.New(systemPrompt(cfg.Style)),
		Monitor:          monitor.NewMonitor(),
		Strategy:         buildStrategy(cfg, provider, registry, log),
		Callbacks:        memory.NewRegistry(),
		MaxSteps:         cfg.MaxSteps,
		PlanningInterval: cfg.PlanningInterval,
		Log:              log,
	}

	result, err := driver.Run(ctx, task, nil)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Printf("\n=== Result (%s) ===\n%v\n", result.State, result.Output)

	out, err := replay.Render("run", driver.Memory, nil, "")
	if err != nil {
		log.Warnw("replay render failed", "error", err)
		return nil
	}
	fmt.Println(out)
	return nil
}

func buildStrategy(cfg *agentconfig.RunConfig, provider *openai.Client, registry *tool.Registry, log *zap.SugaredLogger) runner.Strategy {
	if cfg.Style == "code" {
		imports := cfg.AuthorizedImports
		if len(imports) == 0 {
			imports = []string{"math", "strings", "fmt", "strconv", "time", "sort"}
		}
		return &codeagent.Agent{
			Provider:             provider,
			Registry:             registry,
			Tags:                 codeagent.DefaultTags,
			StructuredOutput:     cfg.StructuredOutput,
			MaxPrintOutputLength: 4000,
			AuthorizedImports:    imports,
			State:                map[string]any{},
			Log:                  log,
		}
	}
	return &toolagent.Agent{
		Provider:       provider,
		Registry:       registry,
		MaxToolThreads: cfg.MaxToolThreads,
		AnswerType:     tool.TypeAny,
		Log:            log,
	}
}

func systemPrompt(style string) string {
	if style == "code" {
		return "You are an expert assistant who solves tasks by writing and executing code. " +
			"Reason step by step, then emit a code block calling the tools provided. Call final_answer when done."
	}
	return "You are an expert assistant who solves tasks using the tools provided. " +
		"Reason step by step, then call the tools you need. Call final_answer when done."
}

func buildLogger(verbose bool) (*zap.SugaredLogger, error) {
	var zc zap.Config
	if verbose {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	zc.OutputPaths = []string{"stderr"}
	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

