package cellcache

import (
	"context"
	"math"

	"github.com/krisalay/elevation-cache/config"
	"github.com/krisalay/elevation-cache/engine"
	"github.com/krisalay/elevation-cache/geo"
	"github.com/krisalay/elevation-cache/types"
)

// ElevationDatabase answers height queries through a CellCache of cells
// that know their own heights.
type ElevationDatabase[H types.HeightSource] struct {
	*CellCache[H]
}

func NewElevationDatabase[H types.HeightSource](cfg config.Config, engine *engine.CellEngine[H]) *ElevationDatabase[H] {
	return &ElevationDatabase[H]{CellCache: NewCellCache(cfg, engine)}
}

// HeightAboveMSL returns the height in meters at p, or NaN when no cell
// covers p or the cell has a void there. Falling back to a default height
// is up to the caller.
func (d *ElevationDatabase[H]) HeightAboveMSL(ctx context.Context, p geo.Point) float64 {
	cell := d.GetOrCreate(ctx, p)
	if cell == nil {
		return math.NaN()
	}
	defer cell.Release()
	return cell.Handle().Height(p)
}

// PointHasCoverage reports whether some cell covers p.
func (d *ElevationDatabase[H]) PointHasCoverage(ctx context.Context, p geo.Point) bool {
	cell := d.GetOrCreate(ctx, p)
	if cell == nil {
		return false
	}
	cell.Release()
	return true
}
