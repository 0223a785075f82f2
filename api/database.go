package api

import (
	"context"

	cellcache "github.com/krisalay/elevation-cache"
	"github.com/krisalay/elevation-cache/config"
	"github.com/krisalay/elevation-cache/geo"
	"github.com/krisalay/elevation-cache/types"
)

/*
CellDatabase defines the PUBLIC API of the cell cache.
The locking, eviction and single-flight details stay behind this interface.
*/
type CellDatabase[H types.CellHandle] interface {

	/*
		GetOrCreate returns the open cell covering p.

		BEHAVIOR:
		---------
		1. If the cell is open: refresh its access time and return it (hit)
		2. Otherwise: ask the factory to open it, cache it, and return it (miss)
		3. If no cell covers p, or it fails to open: return nil

		The caller owns one reference on the returned cell and must Release it.
	*/
	GetOrCreate(ctx context.Context, p geo.Point) *cellcache.Cell[H]

	/*
		Remove closes the cell with the given id, once nobody holds it.
		Removing an id that is not open is a no-op.
	*/
	Remove(id uint64)

	// OpenCellList returns a snapshot of the filenames of the open cells.
	OpenCellList() []string

	/*
		CellsForBounds lists the filenames of the cells covering b, probing
		it on a 0.1 degree grid. It opens cells as it goes. maxCells <= 0
		means no limit.
	*/
	CellsForBounds(ctx context.Context, b geo.Bounds, maxCells int) ([]string, error)

	// SetMinMaxOpenCells changes the water marks, swapping them if inverted,
	// and sweeps right away if the cache is above the new high-water mark.
	SetMinMaxOpenCells(minCells, maxCells uint32)

	// Config returns the current configuration.
	Config() config.Config

	// Size returns the number of open cells.
	Size() int

	/*
		Close drops every cell. Cells still held by callers close when
		released. The database opens nothing afterwards.
	*/
	Close() error
}

// ElevationDatabase is a CellDatabase that answers height queries.
type ElevationDatabase[H types.HeightSource] interface {
	CellDatabase[H]

	// HeightAboveMSL returns the height in meters at p, NaN if unknown.
	HeightAboveMSL(ctx context.Context, p geo.Point) float64

	// PointHasCoverage reports whether some cell covers p.
	PointHasCoverage(ctx context.Context, p geo.Point) bool
}

var (
	_ CellDatabase[types.CellHandle]        = (*cellcache.CellCache[types.CellHandle])(nil)
	_ ElevationDatabase[types.HeightSource] = (*cellcache.ElevationDatabase[types.HeightSource])(nil)
)
