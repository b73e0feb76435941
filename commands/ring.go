package commands

import (
	"context"

	"github.com/spf13/cobra"

	"netmigration/widcollector/internal/collector"
	"netmigration/widcollector/internal/record"
)

func init() {
	rootCmd.AddCommand(ringCmd)
}

var ringCmd = &cobra.Command{
	Use:   "ring <ring_name>",
	Short: "Lists the services attached to an aggregation ring.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := newCollector()
		if err != nil {
			return err
		}

		var recs []record.ServiceData
		err = collector.WithSession(ctx, c, func(ctx context.Context, c collector.Collector) error {
			recs, err = c.SearchByGroup(ctx, args[0])
			return err
		})
		if err != nil {
			return err
		}
		return printGroup(cmd.OutOrStdout(), args[0], recs)
	},
}
