package cellcache

import (
	"context"

	"github.com/krisalay/elevation-cache/geo"
)

// BoundsStep is the grid spacing, in degrees, used to probe a bounding box.
const BoundsStep = 0.1

/*
CellsForBounds returns the filenames of the cells covering b, in the order
they are first found, walking a BoundsStep grid latitude-major. b is first
clipped to the geodetic range. The last row and column of the grid land
exactly on the max edges of b.

Every probe goes through GetOrCreate, so a scan opens cells and refreshes
them exactly like normal lookups do, and can evict unrelated cells when the
box needs more than MaxOpenCells. maxCells <= 0 means no limit.

The context is checked between probes.
*/
func (c *CellCache[H]) CellsForBounds(ctx context.Context, b geo.Bounds, maxCells int) ([]string, error) {
	var names []string
	b = b.Clamp()
	if b.Empty() {
		return names, nil
	}

	seen := make(map[string]struct{})
	lons := gridSteps(b.MinLon, b.MaxLon)
	for _, lat := range gridSteps(b.MinLat, b.MaxLat) {
		for _, lon := range lons {
			if err := ctx.Err(); err != nil {
				return names, err
			}

			cell := c.GetOrCreate(ctx, geo.Point{Lat: lat, Lon: lon})
			if cell == nil {
				continue
			}
			name := cell.Filename()
			cell.Release()

			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
			if maxCells > 0 && len(names) >= maxCells {
				return names, nil
			}
		}
	}
	return names, nil
}

// gridSteps returns min, min+step, ... up to and including max.
// Steps are computed from min rather than accumulated, so rounding does
// not drift across a wide box.
func gridSteps(lo, hi float64) []float64 {
	var steps []float64
	for i := 0; ; i++ {
		v := lo + float64(i)*BoundsStep
		if v >= hi {
			return append(steps, hi)
		}
		steps = append(steps, v)
	}
}
