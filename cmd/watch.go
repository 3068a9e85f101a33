package cmd

import (
	"github.com/spf13/cobra"
)

func newWatchCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep compiled views and configuration fresh while editing",
		Long: `Watch the view directories and the config file. Changed views drop the
compiled cache, a changed config file is reloaded. autoReload is forced on
for the duration of the command. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd, map[string]any{"autoReload": true})
			if err != nil {
				return err
			}
			if err := svc.RegisterDirectives(cmd.Context()); err != nil {
				return err
			}
			return svc.Watch(cmd.Context())
		},
	}
}
