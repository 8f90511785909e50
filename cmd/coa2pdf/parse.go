package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	coa2pdf "github.com/alnah/go-coa2pdf"
)

// runParseCmd validates input rows and lists the records.
func runParseCmd(args []string, env *Environment) error {
	flags, positional, err := parseParseFlags(args)
	if err != nil {
		return usageError(err)
	}

	path, err := inputPath(positional)
	if err != nil {
		return err
	}

	coas, next, err := readRecords(path, flags.start, env.Stdin)
	if err != nil {
		return err
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(coas)
	}

	fmt.Fprintln(env.Stdout, renderRecordTable(coas, isTerminal(env.Stdout)))
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "%d record(s)", len(coas))
		if next > 0 {
			fmt.Fprintf(env.Stderr, ", next id %d", next)
		}
		fmt.Fprintln(env.Stderr)
	}
	return nil
}

// renderRecordTable lays records out one per row. Plain ASCII borders are
// used when the output is not a terminal.
func renderRecordTable(coas []coa2pdf.COA, styled bool) string {
	tw := table.NewWriter()
	if styled {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"#", "ID", "Order", "Clone", "Sample", "Vector", "Length", "Site", "Export"})
	for i := range coas {
		c := &coas[i]
		site, _ := c.Site()
		tw.AppendRow(table.Row{
			i + 1, c.ID, c.OrderID, c.CloneName, c.SampleName, c.Vector, c.Length,
			site, exportState(c),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// exportState summarises the export gate for one record.
func exportState(c *coa2pdf.COA) string {
	err := c.ExportReady()
	switch {
	case err == nil:
		return "ready"
	case errors.Is(err, coa2pdf.ErrMissingImages):
		return "needs images"
	default:
		return "invalid"
	}
}
