package cmd

import (
	"io"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hotgen/hotgen/parser"
)

func InspectHandler(cmd *cobra.Command, args []string) error {
	var data [][]string
	for _, hotfile := range args {
		rows, err := inspect(hotfile)
		if err != nil {
			return err
		}
		data = append(data, rows...)
	}
	renderInspect(cmd.OutOrStdout(), data)
	return nil
}

// inspect returns one table row per hot function declared in hotfile,
// whichever form declared it.
func inspect(hotfile string) ([][]string, error) {
	f, warnings, err := parser.ParseFile(hotfile)
	for _, w := range warnings {
		slog.Warn(w.String())
	}
	if err != nil {
		return nil, err
	}

	var data [][]string
	for _, it := range f.Module.Items {
		hf, ok := it.(parser.HotFuncs)
		if !ok {
			continue
		}
		for _, sig := range hf.Sigs {
			data = append(data, []string{
				f.Module.Name, sig.Name, sig.String(), hf.Form.String(), sig.Span.String(),
			})
		}
	}
	return data, nil
}

func renderInspect(out io.Writer, data [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"MODULE", "FUNCTION", "SIGNATURE", "FORM", "SOURCE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
