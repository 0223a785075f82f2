// This file implements LRU eviction.

package eviction

import "github.com/krisalay/elevation-cache/types"

// lru orders entries by the tick of their last lookup, oldest first.
type lru struct{}

func (lru) Less(a, b *types.CellEntry) bool {
	return a.Tick.Load() < b.Tick.Load()
}
