package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigGetCommand(c))
	cmd.AddCommand(newConfigPathCommand(c))
	return cmd
}

func newConfigShowCommand(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Long: `Print the configuration after merging defaults, the config file, the
environment block and path resolution.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := c.resolver().Load(nil)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, snap.All())
		},
	}

	addOutputFlag(cmd, &format, "yaml")
	return cmd
}

func newConfigGetCommand(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "get KEY",
		Short:   "Print one configuration value",
		Example: "  quill config get errorHandling.showErrors",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.resolver().Load(nil)
			if err != nil {
				return err
			}
			value, ok := snap.Lookup(args[0])
			if !ok {
				return fmt.Errorf("configuration key %s is not set", args[0])
			}
			return writeOutput(cmd.OutOrStdout(), format, value)
		},
	}

	addOutputFlag(cmd, &format, "text")
	return cmd
}

// pathReport is printed by "config path".
type pathReport struct {
	ProjectRoot   string            `json:"projectRoot" yaml:"projectRoot"`
	ConfigFile    string            `json:"configFile" yaml:"configFile"`
	Environment   string            `json:"environment" yaml:"environment"`
	ViewsPath     string            `json:"viewsPath" yaml:"viewsPath"`
	CachePath     string            `json:"cachePath" yaml:"cachePath"`
	ComponentPath string            `json:"componentPath" yaml:"componentPath"`
	LangPath      string            `json:"langPath" yaml:"langPath"`
	Namespaces    map[string]string `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
}

func newConfigPathCommand(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the resolved project root, config file and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolver := c.resolver()
			settings, err := resolver.Settings()
			if err != nil {
				return err
			}
			root, err := resolver.ProjectRoot()
			if err != nil {
				return err
			}

			report := pathReport{
				ProjectRoot:   root,
				ConfigFile:    resolver.ConfigFile(),
				Environment:   settings.Environment,
				ViewsPath:     settings.ViewsPath,
				CachePath:     settings.CachePath,
				ComponentPath: settings.ComponentPath,
				LangPath:      settings.LangPath,
				Namespaces:    settings.Namespaces,
			}
			if format != "text" {
				return writeOutput(cmd.OutOrStdout(), format, report)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "root:        %s\n", report.ProjectRoot)
			fmt.Fprintf(w, "config:      %s\n", orNone(report.ConfigFile))
			fmt.Fprintf(w, "environment: %s\n", report.Environment)
			fmt.Fprintf(w, "views:       %s\n", report.ViewsPath)
			fmt.Fprintf(w, "cache:       %s\n", report.CachePath)
			fmt.Fprintf(w, "components:  %s\n", report.ComponentPath)
			fmt.Fprintf(w, "lang:        %s\n", report.LangPath)
			return nil
		},
	}

	addOutputFlag(cmd, &format, "text")
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
