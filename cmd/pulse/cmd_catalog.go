package main

import (
	"github.com/spf13/cobra"
)

func newCatalogCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the KPI catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			c := engine.Catalog

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"kpis":     c.Definitions(),
					"settings": c.Settings(),
				})
			}

			rows := make([][]string, 0, len(c.IDs()))
			for _, def := range c.Definitions() {
				rows = append(rows, []string{
					def.ID, def.Label, string(def.Unit), string(def.Direction),
					formatFloat(def.Target), formatFloat(def.Weight),
				})
			}
			renderTable(cmd.OutOrStdout(), "KPI catalog", []string{"ID", "LABEL", "UNIT", "DIRECTION", "TARGET", "WEIGHT"}, rows)
			return nil
		},
	}
}
