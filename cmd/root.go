// Package cmd implements the quill command line.
//
// Every persistent flag can also be set through the environment with a
// QUILL_ prefix, for example QUILL_STRICT=true or QUILL_LOG_LEVEL=debug.
// Flags win over the environment. The environment name itself is read
// from --env, then QUILL_ENV, APP_ENV, GO_ENV and ENVIRONMENT.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/quill/internal/config"
	"github.com/conneroisu/quill/internal/logging"
	"github.com/conneroisu/quill/internal/renderer"
	"github.com/conneroisu/quill/internal/session"
	"github.com/conneroisu/quill/internal/version"
)

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

// cli carries the flag values shared by all subcommands.
type cli struct {
	v *viper.Viper
}

// NewRootCommand builds the command tree with its own flag state.
func NewRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Render directive-enhanced views from the command line",
		Long: `quill renders views written in a Django-style template language extended
with @directives, using layered configuration and failure recovery.

Configuration is read from quill.yaml, quill.json or quill.toml in the
project root (or its config/ directory), overlaid with the block under
environments.<name> for the active environment.

Quick Start:
  quill init
  quill render pages.home --data '{"title": "Home"}'
  quill config show
  quill directives list
  quill watch`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: discovered in the project root)")
	flags.String("env", "", "environment name (default: QUILL_ENV, APP_ENV, GO_ENV, ENVIRONMENT)")
	flags.Bool("strict", false, "fail on missing configuration and unresolvable paths")
	flags.String("root", "", "project root (default: nearest directory with go.mod)")
	flags.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	AddFlagValidation(rootCmd, "log-level", ValidateLogLevel)

	_ = c.v.BindPFlags(flags)
	c.v.SetEnvPrefix("QUILL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newMakeCommand(c))
	rootCmd.AddCommand(newRenderCommand(c))
	rootCmd.AddCommand(newConfigCommand(c))
	rootCmd.AddCommand(newDirectivesCommand(c))
	rootCmd.AddCommand(newWatchCommand(c))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func (c *cli) resolver() *config.Resolver {
	opts := config.Options{
		ProjectRoot: c.v.GetString("root"),
		ConfigFile:  c.v.GetString("config"),
		Strict:      c.v.GetBool("strict"),
	}
	if env := c.v.GetString("env"); env != "" {
		opts.Env = map[string]string{"QUILL_ENV": env}
	}
	return config.NewResolver(opts)
}

// logger writes to the command's error stream. --log-level wins over
// QUILL_LOG_LEVEL.
func (c *cli) logger(cmd *cobra.Command) (logging.Logger, error) {
	cfg, err := logging.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if level := c.v.GetString("log-level"); level != "" {
		if cfg.Level, err = logging.ParseLevel(level); err != nil {
			return nil, err
		}
	}
	cfg.Output = cmd.ErrOrStderr()
	return logging.NewLogger(cfg), nil
}

func (c *cli) service(cmd *cobra.Command, overrides map[string]any) (*renderer.Service, error) {
	logger, err := c.logger(cmd)
	if err != nil {
		return nil, err
	}
	return renderer.New(renderer.Options{
		Config:    c.resolver(),
		Overrides: overrides,
		Session:   session.NewMemory(),
		Logger:    logger,
	})
}
