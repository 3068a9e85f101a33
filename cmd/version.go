package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/quill/internal/version"
)

func newVersionCommand() *cobra.Command {
	var (
		format   string
		short    bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Example: `  quill version              # Show short version
  quill version --detailed   # Show detailed version info
  quill version --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			w := cmd.OutOrStdout()

			switch format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "text":
			default:
				return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
			}

			switch {
			case short:
				fmt.Fprintln(w, info.Short())
			case detailed:
				fmt.Fprintln(w, info.Detailed())
			default:
				fmt.Fprintf(w, "quill %s\n", info.Short())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&short, "short", false, "show the version only")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show detailed build information")
	return cmd
}
