package types

import (
	"sync/atomic"
	"time"
)

// CellEntry is the bookkeeping the cache keeps for one open cell.
// Tick and Hits are updated under the cache's read lock, so they are atomics.
type CellEntry struct {
	ID       uint64
	Filename string
	OpenedAt time.Time

	// OpenSeq is the access tick at insertion time.
	OpenSeq uint64

	// Tick is the access tick of the most recent lookup.
	Tick atomic.Uint64

	// Hits counts lookups served by this entry, the insert included.
	Hits atomic.Uint64
}

// NewCellEntry returns an entry stamped with tick as both open and access time.
func NewCellEntry(id uint64, filename string, tick uint64) *CellEntry {
	ent := &CellEntry{
		ID:       id,
		Filename: filename,
		OpenedAt: time.Now(),
		OpenSeq:  tick,
	}
	ent.Tick.Store(tick)
	ent.Hits.Store(1)
	return ent
}

// Touch records an access at tick.
func (e *CellEntry) Touch(tick uint64) {
	e.Tick.Store(tick)
	e.Hits.Add(1)
}
