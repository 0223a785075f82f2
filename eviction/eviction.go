package eviction

/*
This file defines how the cell cache decides which cells to close when it has
more open than it may keep.

Eviction runs as a sweep: the cache hands every live entry to Sweep, which
fully sorts them with a Policy and returns the ones to drop, stalest first.
The open-cell budget is small (tens of cells), so a full sort per overflow
is all that is needed.
*/

import (
	"fmt"
	"sort"
	"strings"

	"github.com/krisalay/elevation-cache/types"
)

// Policy orders entries for eviction.
type Policy interface {

	// Less reports whether a should be evicted before b.
	Less(a, b *types.CellEntry) bool
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// LRU (Least Recently Used): evicts the cells not looked up for the longest time.
	LRU PolicyType = "LRU"

	// LFU (Least Frequently Used): evicts the cells with the fewest lookups.
	// Ties go to the least recently used.
	LFU PolicyType = "LFU"

	// FIFO (First In First Out): evicts the cells opened first, regardless of access.
	FIFO PolicyType = "FIFO"
)

// ParsePolicyType accepts a policy name in any case.
func ParsePolicyType(s string) (PolicyType, error) {
	switch t := PolicyType(strings.ToUpper(strings.TrimSpace(s))); t {
	case LRU, LFU, FIFO:
		return t, nil
	case "":
		return LRU, nil
	default:
		return "", fmt.Errorf("unknown eviction policy %q", s)
	}
}

// NewEvictionPolicy is a small factory function.
// Given a PolicyType, it creates the correct eviction policy.
func NewEvictionPolicy(t PolicyType) Policy {
	switch t {
	case LRU:
		return lru{}
	case LFU:
		return lfu{}
	case FIFO:
		return fifo{}
	default:
		panic("unknown eviction policy")
	}
}

// Sweep returns the entries to remove so that keep entries remain, in
// eviction order. It sorts entries in place.
func Sweep(p Policy, entries []*types.CellEntry, keep int) []*types.CellEntry {
	if keep < 0 {
		keep = 0
	}
	n := len(entries) - keep
	if n <= 0 {
		return nil
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return p.Less(entries[i], entries[j])
	})
	return entries[:n]
}
