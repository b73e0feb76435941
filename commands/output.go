package commands

import (
	"encoding/json"
	"io"
	"maps"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"

	"netmigration/widcollector/internal/record"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRecord prints the populated fields, then the raw source pairs
func printRecord(out io.Writer, rec *record.ServiceData) error {
	if jsonOutput {
		return printJSON(out, rec)
	}

	t := newTable(out)
	t.SetTitle("%s %s (%s)", rec.SourceSystem, rec.ServiceID, rec.CollectedAt.Format("2006-01-02 15:04:05"))
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, fv := range rec.Fields() {
		t.AppendRow(table.Row{fv.Field.Name(), fv.Value})
	}
	t.Render()

	raw := newTable(out)
	raw.SetTitle("Raw data")
	raw.AppendHeader(table.Row{"Label", "Value"})
	for _, label := range slices.Sorted(maps.Keys(rec.RawData)) {
		raw.AppendRow(table.Row{label, rec.RawData[label]})
	}
	raw.Render()
	return nil
}

func optional[T any](v *T) any {
	if v == nil {
		return ""
	}
	return *v
}

// printGroup prints one line per record of a group search
func printGroup(out io.Writer, group string, recs []record.ServiceData) error {
	if jsonOutput {
		return printJSON(out, recs)
	}

	t := newTable(out)
	t.SetTitle("Ring %s", group)
	t.AppendHeader(table.Row{"Service", "Client site", "Aggregator", "P1", "P2", "BVI VLAN", "Bandwidth"})
	for _, r := range recs {
		t.AppendRow(table.Row{
			r.ServiceID,
			optional(r.ClientSite),
			optional(r.AggregatorName),
			optional(r.AggregatorPort1),
			optional(r.AggregatorPort2),
			optional(r.BVIVLAN),
			optional(r.Bandwidth),
		})
	}
	t.AppendFooter(table.Row{"Total", len(recs)})
	t.Render()
	return nil
}
