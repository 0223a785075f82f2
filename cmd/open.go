package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOpenCommand(ctx *cmdContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open LAT LON [LAT LON...]",
		Short: "Look up each point and print the tiles left open",
		Long: `open looks up every point in order, then prints the tiles the cache
still holds. Useful to see the eviction settings at work.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := parsePoints(args)
			if err != nil {
				return err
			}

			db, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer ctx.closeDatabase(db)

			for _, p := range points {
				if !db.PointHasCoverage(cmd.Context(), p) {
					ctx.logger.Info("no tile", "point", p.String())
				}
			}
			for _, n := range db.OpenCellList() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
