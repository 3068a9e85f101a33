package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/quill/internal/scaffolding"
)

func newInitCommand() *cobra.Command {
	var (
		name   string
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Create a starter project",
		Long: `Write a config file, a base layout, a home page, starter components, an
error view and an English translation catalog into DIR (default: the
current directory).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", abs, err)
			}

			written, err := scaffolding.CreateProject(scaffolding.ProjectOptions{
				Dir:          abs,
				ProjectName:  name,
				ConfigFormat: format,
				Force:        force,
			})
			for _, path := range written {
				rel, relErr := filepath.Rel(abs, path)
				if relErr != nil {
					rel = path
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", rel)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (default: directory name)")
	cmd.Flags().StringVar(&format, "format", "yaml", "config file format (yaml, json, toml)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	AddFlagValidation(cmd, "format", ValidateOneOf(scaffolding.ConfigFormats...))
	return cmd
}

func newMakeCommand(c *cli) *cobra.Command {
	var (
		dir   string
		force bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "make [TEMPLATE NAME]",
		Short: "Generate a view from a starter template",
		Example: `  quill make page pricing
  quill make form signup --dir auth
  quill make --list`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.resolver().Settings()
			if err != nil {
				return err
			}
			g := scaffolding.NewGenerator(settings.ViewsPath, "", force)

			if list {
				for _, tmpl := range g.Templates() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-12s %s\n", tmpl.Name, tmpl.Category, tmpl.Description)
				}
				return nil
			}

			path, err := g.Generate(scaffolding.GenerateOptions{Template: args[0], Name: args[1], Dir: dir})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory below the views path (default: the template's)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing view")
	cmd.Flags().BoolVar(&list, "list", false, "list the available templates")
	return cmd
}
