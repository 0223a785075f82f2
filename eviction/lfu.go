// This file implements LFU eviction.

package eviction

import "github.com/krisalay/elevation-cache/types"

// lfu orders entries by lookup count. Entries with the same count fall back
// to LRU order, so a burst of new cells does not always evict the newest.
type lfu struct{}

func (lfu) Less(a, b *types.CellEntry) bool {
	ha, hb := a.Hits.Load(), b.Hits.Load()
	if ha != hb {
		return ha < hb
	}
	return a.Tick.Load() < b.Tick.Load()
}
