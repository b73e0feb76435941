package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"netmigration/widcollector/helpers"
	"netmigration/widcollector/internal/collector/snapshot"
	"netmigration/widcollector/internal/collector/wid"
	"netmigration/widcollector/internal/extract"
	"netmigration/widcollector/internal/record"
)

var checkAll bool

func init() {
	labelsCmd.Flags().BoolVar(&checkAll, "all", false, "Check every saved detail page.")
	rootCmd.AddCommand(labelsCmd)
}

var labelsCmd = &cobra.Command{
	Use:   "labels [service_id...] [--all]",
	Short: "Prints the portal label dictionary, or the unmapped labels of saved detail pages.",
	Long: "Without arguments it prints every known portal label and the record field it fills.\n" +
		"With service ids (or --all) it reads the detail pages saved under DATA_DIR\n" +
		"and lists the labels the dictionary does not know yet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 && !checkAll {
			return printDictionary(cmd)
		}

		ids := args
		if checkAll {
			all, err := snapshot.New(snapshot.Options{Source: wid.Name, DataDir: cfg.DataDir}).IDs()
			if err != nil {
				return err
			}
			ids = all
		}

		unmapped := map[string][]string{}
		for _, id := range ids {
			data, err := snapshot.Read(cfg.DataDir, wid.Name, id)
			if err != nil {
				return fmt.Errorf("service %s: %w", id, err)
			}
			body, err := helpers.DecodeUTF8(data, "text/html")
			if err != nil {
				return err
			}
			attrs, err := extract.Attributes(body)
			if err != nil {
				return fmt.Errorf("service %s: %w", id, err)
			}
			for _, label := range wid.Normalizer().Unmapped(attrs) {
				unmapped[label] = append(unmapped[label], id)
			}
		}

		if jsonOutput {
			return printJSON(out, unmapped)
		}
		if len(unmapped) == 0 {
			fmt.Fprintf(out, "All labels of %d page(s) are known\n", len(ids))
			return nil
		}

		t := newTable(out)
		t.SetTitle("Unmapped labels")
		t.AppendHeader(table.Row{"Label", "Seen in"})
		for label, seen := range unmapped {
			t.AppendRow(table.Row{label, strings.Join(seen, ", ")})
		}
		t.SortBy([]table.SortBy{{Name: "Label", Mode: table.Asc}})
		t.Render()
		return nil
	},
}

func printDictionary(cmd *cobra.Command) error {
	mappings := wid.Normalizer().Mappings()
	if jsonOutput {
		dict := make(map[string]string, len(mappings))
		for _, m := range mappings {
			dict[m.Label] = m.Field.Name()
		}
		return printJSON(cmd.OutOrStdout(), dict)
	}

	t := newTable(cmd.OutOrStdout())
	t.SetTitle("WID labels")
	t.AppendHeader(table.Row{"Label", "Field"})
	for _, m := range mappings {
		field := m.Field.Name()
		if m.Field == record.FieldNone {
			field = "(raw only)"
		}
		t.AppendRow(table.Row{m.Label, field})
	}
	t.Render()
	return nil
}
