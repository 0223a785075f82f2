package cellcache_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	cellcache "github.com/krisalay/elevation-cache"
	"github.com/krisalay/elevation-cache/config"
	"github.com/krisalay/elevation-cache/engine"
	"github.com/krisalay/elevation-cache/geo"
	"github.com/krisalay/elevation-cache/hgt"
)

func newTestDatabase(t *testing.T, memoryMap bool) *cellcache.ElevationDatabase[*hgt.Cell] {
	t.Helper()
	root := t.TempDir()

	_, err := hgt.WriteFile(root, 46, 7, hgt.SRTM3Posts, func(row, col int) int16 { return 1500 })
	require.NoError(t, err)
	_, err = hgt.WriteFile(root, 46, 8, hgt.SRTM3Posts, func(row, col int) int16 {
		if row == 600 && col == 600 {
			return hgt.Void
		}
		return int16(col)
	})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.MemoryMapCells = memoryMap
	dir, err := hgt.NewDirectory(root, cfg.MemoryMapCells, nil)
	require.NoError(t, err)

	db := cellcache.NewElevationDatabase(cfg, engine.NewCellEngine[*hgt.Cell](dir, nil, nil))
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func TestHeightAboveMSL(t *testing.T) {
	for _, mapped := range []bool{false, true} {
		db := newTestDatabase(t, mapped)
		ctx := context.Background()

		require.Equal(t, 1500.0, db.HeightAboveMSL(ctx, geo.Point{Lat: 46.5, Lon: 7.5}))
		require.InDelta(t, 300.0, db.HeightAboveMSL(ctx, geo.Point{Lat: 46.2, Lon: 8.25}), 1e-9)

		require.True(t, math.IsNaN(db.HeightAboveMSL(ctx, geo.Point{Lat: 46.5, Lon: 8.5})), "void post")
		require.True(t, math.IsNaN(db.HeightAboveMSL(ctx, geo.Point{Lat: -12, Lon: 8.5})), "no coverage")

		require.Len(t, db.OpenCellList(), 2)
	}
}

func TestPointHasCoverage(t *testing.T) {
	db := newTestDatabase(t, false)
	ctx := context.Background()

	require.True(t, db.PointHasCoverage(ctx, geo.Point{Lat: 46.99, Lon: 7.01}))
	require.False(t, db.PointHasCoverage(ctx, geo.Point{Lat: 45.99, Lon: 7.01}))
	require.False(t, db.PointHasCoverage(ctx, geo.Point{Lat: 95, Lon: 7}))

	names, err := db.CellsForBounds(ctx, geo.NewBounds(46.5, 6.5, 46.7, 8.2), 0)
	require.NoError(t, err)
	require.Len(t, names, 2)
}
