package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RunConfig is the merged configuration for one cmd/agentrun invocation:
// CLI flags override LLM_*/AGENTRUN_* env vars, which override a config
// file, which overrides the defaults set below. Layered on top of env.go's
// .env loading via github.com/spf13/viper, so the same values can also be
// supplied as flags or a config file instead of only environment variables.
type RunConfig struct {
	Style             string   `mapstructure:"style"`              // "tool" | "code"
	Model             string   `mapstructure:"model"`
	APIKey            string   `mapstructure:"api_key"`
	BaseURL           string   `mapstructure:"base_url"`
	MaxSteps          int      `mapstructure:"max_steps"`
	PlanningInterval  int      `mapstructure:"planning_interval"`
	StructuredOutput  bool     `mapstructure:"structured_output"`
	AuthorizedImports []string `mapstructure:"authorized_imports"`
	MaxToolThreads    int      `mapstructure:"max_tool_threads"`
	WorkspaceDir      string   `mapstructure:"workspace_dir"`
	MCPConfigPath     string   `mapstructure:"mcp_config"`
	Verbose           bool     `mapstructure:"verbose"`
	EnableShell       bool     `mapstructure:"enable_shell"`
	AllowInternalNet  bool     `mapstructure:"allow_internal_net"`
}

// BindFlags registers the flags Load reads, on the given flag set (the
// root command's flags in cmd/agentrun).
func BindFlags(flags *pflag.FlagSet) {
	flags.String("style", "tool", "agent style: tool | code")
	flags.String("model", "gpt-4o", "model name passed to the provider")
	flags.String("api-key", "", "provider API key (or LLM_API_KEY)")
	flags.String("base-url", "https://api.openai.com/v1", "OpenAI-compatible base URL")
	flags.Int("max-steps", 40, "maximum action steps before synthesis")
	flags.Int("planning-interval", 0, "steps between planning calls (0 disables)")
	flags.Bool("structured-output", false, "request JSON-object responses from the model")
	flags.StringSlice("authorized-imports", []string{"math", "strings", "fmt", "strconv", "time", "sort"}, "packages the code agent's sandbox may import")
	flags.Int("max-tool-threads", 1, "worker pool size for concurrent tool calls")
	flags.String("workspace-dir", ".", "directory skills/ and the file, git and shell tools are resolved against")
	flags.String("mcp-config", "mcp.json", "path to the MCP server config file")
	flags.Bool("verbose", false, "enable debug-level logging")
	flags.Bool("enable-shell", false, "allow the shell_exec tool to execute commands")
	flags.Bool("allow-internal-net", false, "allow http_request to reach loopback/private addresses")
}

// Load builds a RunConfig by layering, in increasing priority: built-in
// defaults, a .env file (via LoadEnv), an optional config file named
// agentrun.(yaml|json|toml) discovered on the config search path, then
// LLM_*/AGENTRUN_* environment variables, then flags already parsed onto
// flagSet.
func Load(flagSet *pflag.FlagSet) (*RunConfig, error) {
	LoadEnv()

	v := viper.New()
	v.SetConfigName("agentrun")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/agentrun")

	v.SetEnvPrefix("AGENTRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The provider client itself is configured via LLM_* (openai.ConfigFromEnv);
	// mirror the two overlapping knobs so a single LLM_API_KEY/LLM_MODEL also
	// satisfies the CLI's notion of api_key/model without duplicating them.
	_ = v.BindEnv("api_key", "LLM_API_KEY", "AGENTRUN_API_KEY")
	_ = v.BindEnv("model", "LLM_MODEL", "AGENTRUN_MODEL")
	_ = v.BindEnv("base_url", "LLM_BASE_URL", "AGENTRUN_BASE_URL")

	if err := v.BindPFlags(flagSet); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: read agentrun config file: %w", err)
		}
	}

	var cfg RunConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
