package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/quill/internal/renderer"
)

func newDirectivesCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "directives",
		Aliases: []string{"directive"},
		Short:   "List directives or show what a view compiles to",
	}

	cmd.AddCommand(newDirectivesListCommand(c))
	cmd.AddCommand(newDirectivesCompileCommand(c))
	return cmd
}

func newDirectivesListCommand(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the installed directive names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd, nil)
			if err != nil {
				return err
			}
			if err := svc.RegisterDirectives(cmd.Context()); err != nil {
				return err
			}

			names := svc.Engine().Directives().Names()
			if format != "text" {
				return writeOutput(cmd.OutOrStdout(), format, names)
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "@%s\n", name)
			}
			return nil
		},
	}

	addOutputFlag(cmd, &format, "text")
	return cmd
}

func newDirectivesCompileCommand(c *cli) *cobra.Command {
	var (
		render bool
		flags  renderFlags
	)

	cmd := &cobra.Command{
		Use:   "compile [FILE]",
		Short: "Print the template source a file compiles to",
		Long: `Replace the directives in FILE (or stdin when FILE is "-" or missing)
and print the resulting template source without rendering it.

With --render the source is rendered instead, with the same data flags as
the render command.`,
		Example: `  quill directives compile views/pages/home.html
  echo "@csrf" | quill directives compile
  echo "@lang('welcome') {{ name }}" | quill directives compile --render --set name=Ada`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args)
			if err != nil {
				return err
			}

			svc, err := c.service(cmd, nil)
			if err != nil {
				return err
			}
			if err := svc.RegisterDirectives(cmd.Context()); err != nil {
				return err
			}

			if !render {
				_, err = fmt.Fprint(cmd.OutOrStdout(), svc.Engine().Compile(source))
				return err
			}

			data, err := flags.ParseData()
			if err != nil {
				return err
			}
			out, err := svc.RenderString(cmd.Context(), source, data)
			if err != nil {
				return err
			}
			return writeRendered(cmd, flags.Out, renderer.ExtractFragments(out, flags.Fragments))
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "render the source instead of printing the compiled template")
	addRenderFlags(cmd, &flags)
	return cmd
}

func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(raw), nil
}
