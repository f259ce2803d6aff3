package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/graticard/internal/core"
)

func newValidateCommand(_ *app) *cobra.Command {
	var mapping string

	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "Check a column mapping without reading any file",
		Example: `  graticard validate --map "Name,,Street Address,City State Postal Code,Gift"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cleaned, err := core.ValidateMapping(core.ParseMapping(mapping))
			if err != nil {
				return err
			}
			labels := make([]string, len(cleaned))
			for i, label := range cleaned {
				f, _ := core.ParseField(label)
				labels[i] = f.String()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", strings.Join(labels, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&mapping, "map", "", "comma-separated column labels")
	cmd.MarkFlagRequired("map")
	return cmd
}
