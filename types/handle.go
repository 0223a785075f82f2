package types

import (
	"context"
	"errors"
	"io"

	"github.com/krisalay/elevation-cache/geo"
)

// ErrNoCoverage is returned by a CellFactory when no data source covers a point.
var ErrNoCoverage = errors.New("no cell covers point")

// CellHandle is an open data source for one cell. The cache never looks inside
// a handle; it only needs a name for reporting and a way to close it.
type CellHandle interface {
	io.Closer

	// Filename identifies the underlying source, usually its path.
	Filename() string
}

// HeightSource is a CellHandle that can answer elevation queries.
type HeightSource interface {
	CellHandle

	// Height returns the height above mean sea level in meters at p,
	// or NaN if p is outside the cell or falls on a void.
	Height(p geo.Point) float64
}

// CellFactory is the contract between the cache and whatever knows how to
// find and open cells.
type CellFactory[H CellHandle] interface {

	/*
		CreateCell is called on a cache miss, without any cache lock held.
		It may block on I/O. It returns ErrNoCoverage (or any other error)
		when no handle can be produced; the cache treats every error the
		same way and caches nothing. A nil handle with a nil error is read
		as ErrNoCoverage.
	*/
	CreateCell(ctx context.Context, p geo.Point) (H, error)

	// CellID maps a point to its cache key. It must be a pure function,
	// consistent with the tiling CreateCell opens.
	CellID(p geo.Point) uint64
}
