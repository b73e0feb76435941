package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"netmigration/widcollector/helpers"
	"netmigration/widcollector/internal/sources"
	"netmigration/widcollector/services/publisher"
	"netmigration/widcollector/services/worker"
)

var (
	idsFile   string
	noPublish bool
)

func init() {
	batchCmd.Flags().StringVar(&idsFile, "file", "", "Read service ids from a file, one per line. Lines starting with # are skipped.")
	batchCmd.Flags().BoolVar(&noPublish, "no-publish", false, "Collect only, do not write records to Redis.")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch [service_id...] [--file <ids.txt>]",
	Short: "Collects many services over parallel sessions and publishes them to Redis streams.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		ids := args
		if idsFile != "" {
			fromFile, err := readIDs(idsFile)
			if err != nil {
				return err
			}
			ids = append(ids, fromFile...)
		}
		if len(ids) == 0 {
			return fmt.Errorf("no service ids given")
		}

		factory, err := sources.NewFactory(sourceName, cfg, newDeps())
		if err != nil {
			return err
		}

		var pub publisher.Publisher
		if !noPublish {
			rp := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
			if err := rp.Ping(); err != nil {
				rp.Close()
				return err
			}
			defer rp.Close()
			pub = rp
		}

		w := worker.NewWorker(ctx, factory, pub, helpers.NewLogger(cfg.BatchErrorLog), cfg.BatchSessions)
		summary, err := w.Run(ids)
		if err != nil {
			return err
		}
		return printSummary(cmd, summary)
	},
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, scanner.Err()
}

func printSummary(cmd *cobra.Command, s worker.Summary) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, s)
	}

	t := newTable(out)
	t.SetTitle("Batch of %d services in %s", s.Requested, s.Duration.Round(time.Millisecond))
	t.AppendHeader(table.Row{"Outcome", "Count"})
	t.AppendRows([]table.Row{
		{"found", len(s.Found)},
		{"not found", len(s.NotFound)},
		{"failed", len(s.Failed)},
		{"published", s.Published},
	})
	t.Render()

	if len(s.Failed) > 0 {
		f := newTable(out)
		f.SetTitle("Failures (also in %s)", cfg.BatchErrorLog)
		f.AppendHeader(table.Row{"Service", "Error"})
		for id, msg := range s.Failed {
			f.AppendRow(table.Row{id, msg})
		}
		f.SortBy([]table.SortBy{{Name: "Service", Mode: table.Asc}})
		f.Render()
	}
	if len(s.NotFound) > 0 {
		fmt.Fprintf(out, "Not found: %s\n", strings.Join(s.NotFound, ", "))
	}
	return nil
}
