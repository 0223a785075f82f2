package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krisalay/elevation-cache/geo"
)

func newCellsCommand(ctx *cmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cells LAT1 LON1 LAT2 LON2",
		Short: "List the tiles covering a bounding box",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := parseFloats(args)
			if err != nil {
				return err
			}
			b := geo.NewBounds(fs[0], fs[1], fs[2], fs[3])

			db, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer ctx.closeDatabase(db)

			names, err := db.CellsForBounds(cmd.Context(), b, ctx.v.GetInt(keyMaxCells))
			if err != nil {
				return err
			}
			ctx.logger.Debug("bounds scanned", "bounds", b.String(), "cells", len(names))
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int("max", 0, "Stop after this many tiles; 0 lists all")
	_ = ctx.v.BindPFlag(keyMaxCells, f.Lookup("max"))
	return cmd
}
