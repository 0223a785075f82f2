// This file implements FIFO eviction.

package eviction

import "github.com/krisalay/elevation-cache/types"

// fifo ignores lookups and orders entries by when they were opened.
type fifo struct{}

func (fifo) Less(a, b *types.CellEntry) bool {
	return a.OpenSeq < b.OpenSeq
}
