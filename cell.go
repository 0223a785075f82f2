package cellcache

import (
	"fmt"
	"sync/atomic"

	"github.com/krisalay/elevation-cache/types"
)

/*
Cell is a counted reference to an open cell handle.

The cache holds one reference for as long as the cell is in its map. Every
Cell returned by GetOrCreate carries one more, owned by the caller, who must
call Release when done with it. Eviction and Remove only drop the cache's
reference, so a handle in use is never closed under its user; it closes
when the last reference goes away.
*/
type Cell[H types.CellHandle] struct {
	id     uint64
	handle H
	refs   atomic.Int64

	closeFn func(H) error
}

func newCell[H types.CellHandle](id uint64, h H, closeFn func(H) error) *Cell[H] {
	c := &Cell[H]{id: id, handle: h, closeFn: closeFn}
	c.refs.Store(1)
	return c
}

// ID returns the cell identity.
func (c *Cell[H]) ID() uint64 { return c.id }

// Handle returns the open handle. It is valid until Release.
func (c *Cell[H]) Handle() H { return c.handle }

// Filename returns the name of the underlying source.
func (c *Cell[H]) Filename() string { return c.handle.Filename() }

// Release gives up the caller's reference.
func (c *Cell[H]) Release() {
	_ = c.release()
}

// tryAcquire takes a reference unless the cell already closed.
func (c *Cell[H]) tryAcquire() bool {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return false
		}
		if c.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops one reference and closes the handle on the last one,
// returning the close error.
func (c *Cell[H]) release() error {
	switch n := c.refs.Add(-1); {
	case n > 0:
		return nil
	case n == 0:
		return c.closeFn(c.handle)
	default:
		panic(fmt.Sprintf("cellcache: cell %d released more often than acquired", c.id))
	}
}
