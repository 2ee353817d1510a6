package main

import (
	"context"
	"io"
	"wellbeing/internal/app"

	"github.com/spf13/cobra"
)

// cli carries what every command needs; tests swap open for an in-memory app
type cli struct {
	open func(ctx context.Context) (*app.App, error)
	app  *app.App
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "wellbeing",
		Short:         "Manage and analyse the wellbeing assessment history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			err := c.app.Close()
			c.app = nil
			return err
		},
	}

	root.AddCommand(
		newAddCmd(c),
		newListCmd(c),
		newShowCmd(c),
		newDeleteCmd(c),
		newClearCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newStatsCmd(c),
		newChartCmd(c),
		newTrendsCmd(c),
	)
	return root
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
