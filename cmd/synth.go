package main

import (
	"fmt"
	"math"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/krisalay/elevation-cache/hgt"
)

func newSynthCommand(ctx *cmdContext) *cobra.Command {
	var (
		posts  int
		base   int
		relief float64
	)

	cmd := &cobra.Command{
		Use:   "synth LAT LON [LAT LON...]",
		Short: "Write synthetic tiles into --dir",
		Long: `synth writes a tile for each south-west corner given, with a smooth
made-up relief. The tiles are only good for trying out the cache.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if posts != hgt.SRTM1Posts && posts != hgt.SRTM3Posts {
				return fmt.Errorf("posts must be %d or %d", hgt.SRTM3Posts, hgt.SRTM1Posts)
			}
			points, err := parsePoints(args)
			if err != nil {
				return err
			}
			dir, err := homedir.Expand(ctx.v.GetString(keyDir))
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			for _, p := range points {
				lat, lon := hgt.Corner(p)
				path, err := hgt.WriteFile(dir, lat, lon, posts, relief2D(posts, base, relief))
				if err != nil {
					return err
				}
				ctx.logger.Info("tile written", "file", path)
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&posts, "posts", hgt.SRTM3Posts, "Posts per side: 1201 (SRTM3) or 3601 (SRTM1)")
	f.IntVar(&base, "base", 500, "Mean height in meters")
	f.Float64Var(&relief, "relief", 300, "Amplitude of the relief in meters")
	return cmd
}

// relief2D returns one period of a sine hill across the tile.
func relief2D(posts, base int, relief float64) hgt.HeightFunc {
	n := float64(posts - 1)
	return func(row, col int) int16 {
		y := math.Sin(math.Pi * float64(row) / n)
		x := math.Sin(math.Pi * float64(col) / n)
		return int16(float64(base) + relief*x*y)
	}
}
