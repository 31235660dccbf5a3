package commands

import (
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize projects by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadProjects(cmd); err != nil {
				return err
			}
			return a.printer.Stats(a.state.Stats())
		},
	}
}
