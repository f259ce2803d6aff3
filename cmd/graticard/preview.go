package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// maxPreviewCell truncates long cells so the table stays readable.
const maxPreviewCell = 40

func newPreviewCommand(a *app) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show the first rows of a source as graticard reads them",
		Long: `Preview prints the leading rows of a recipient list or gift document with
row and column numbers, to help write --list-map, --doc-map and --skip-rows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.loader().Open(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s, %d rows, %d columns\n\n", table.Name, table.Kind, len(table.Rows), table.Width())

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			header := []string{"row"}
			for i := 0; i < table.Width(); i++ {
				header = append(header, fmt.Sprintf("col %d", i+1))
			}
			fmt.Fprintln(tw, strings.Join(header, "\t"))

			for i, row := range table.Rows {
				if rows > 0 && i >= rows {
					break
				}
				cells := []string{fmt.Sprint(i)}
				for _, c := range row {
					cells = append(cells, truncate(c, maxPreviewCell))
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 10, "rows to show; 0 shows all")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
