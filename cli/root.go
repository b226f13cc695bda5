// Package cli implements the modelweb command line.
package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/slighter12/modelweb-mcp-go/config"
	"github.com/slighter12/modelweb-mcp-go/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Format     string // "json" | "text"

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "modelweb",
		Short: "Scene editor command history and MCP dispatcher",
		Long: `modelweb edits a 3D scene through named MCP operations with full undo/redo.

Requests are accepted over HTTP, websocket, stdio, or a one-shot call, and an
outbound socket or hosted chat endpoint can be attached as a transport.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (json, yaml or toml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override logging.level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "override logging.format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewToolsCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// load resolves configuration and initializes logging. An explicit --config
// must exist; a resolved default path may be absent.
func (o *RootOptions) load() error {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadConfig(o.ConfigPath)
	} else {
		var path string
		path, err = config.ResolveConfigPath()
		if err == nil {
			cfg, err = config.LoadOrDefault(path)
		}
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	if err := logger.Init(logger.GetLevelFromString(cfg.Logging.Level), logger.ParseFormat(cfg.Logging.Format), cfg.Logging.Path); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}
	o.Config = cfg
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
