package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
)

func newHeightCommand(ctx *cmdContext) *cobra.Command {
	var fallback float64

	cmd := &cobra.Command{
		Use:   "height LAT LON [LAT LON...]",
		Short: "Print the height above mean sea level at each point",
		Args:  cobra.MinimumNArgs(2),
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
				h := db.HeightAboveMSL(cmd.Context(), p)
				if math.IsNaN(h) {
					h = fallback
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %.1f\n", p, h)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&fallback, "default", math.NaN(), "Height printed where no tile has data")
	return cmd
}
