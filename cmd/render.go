package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRenderCommand(c *cli) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render VIEW",
		Short: "Render a view to stdout",
		Long: `Render a view through the full pipeline: directives, session helpers,
capabilities and the configured error handling.

View names use dots or slashes for directories and "namespace::" for
namespaced views.`,
		Example: `  quill render pages.home --data '{"title": "Home"}'
  quill render emails::welcome --data-file user.yaml
  quill render pages.home --set user.name=Ada --fragment content`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := flags.ParseData()
			if err != nil {
				return err
			}

			svc, err := c.service(cmd, nil)
			if err != nil {
				return err
			}

			if !svc.Exists(args[0]) {
				return fmt.Errorf("view [%s] not found", args[0])
			}

			out, err := svc.View(args[0]).With(data).Fragment(flags.Fragments...).Render(cmd.Context())
			if err != nil {
				return err
			}
			return writeRendered(cmd, flags.Out, out)
		},
	}

	addRenderFlags(cmd, &flags)
	return cmd
}

// writeRendered writes out to path, or to stdout when path is empty.
func writeRendered(cmd *cobra.Command, path, out string) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
