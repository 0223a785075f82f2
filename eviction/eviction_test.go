package eviction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisalay/elevation-cache/types"
)

func entries(ticks ...uint64) []*types.CellEntry {
	out := make([]*types.CellEntry, len(ticks))
	for i, tick := range ticks {
		out[i] = types.NewCellEntry(uint64(i), "", tick)
	}
	return out
}

func ids(es []*types.CellEntry) []uint64 {
	out := make([]uint64, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestParsePolicyType(t *testing.T) {
	testCases := []struct {
		in  string
		out PolicyType
		err bool
	}{
		{"lru", LRU, false},
		{" LFU ", LFU, false},
		{"Fifo", FIFO, false},
		{"", LRU, false},
		{"random", "", true},
	}

	for i, c := range testCases {
		got, err := ParsePolicyType(c.in)
		if c.err {
			require.Errorf(t, err, "expected an error in test case %d", i)
			continue
		}
		require.NoErrorf(t, err, "unexpected error in test case %d", i)
		require.Equalf(t, c.out, got, "wrong policy in test case %d", i)
	}
}

func TestSweepLRU(t *testing.T) {
	es := entries(5, 1, 9, 3, 7)
	// a lookup on id 1 makes it the most recent
	es[1].Touch(10)

	victims := Sweep(NewEvictionPolicy(LRU), es, 2)
	require.Equal(t, []uint64{3, 0, 4}, ids(victims))
}

func TestSweepFIFOIgnoresLookups(t *testing.T) {
	es := entries(1, 2, 3, 4)
	es[0].Touch(10)

	victims := Sweep(NewEvictionPolicy(FIFO), es, 1)
	require.Equal(t, []uint64{0, 1, 2}, ids(victims))
}

func TestSweepLFU(t *testing.T) {
	es := entries(1, 2, 3, 4)
	es[0].Touch(5)
	es[0].Touch(6)
	es[2].Touch(7)

	victims := Sweep(NewEvictionPolicy(LFU), es, 2)
	require.Equal(t, []uint64{1, 3}, ids(victims))
}

func TestSweepNothingToDo(t *testing.T) {
	es := entries(1, 2)
	require.Empty(t, Sweep(NewEvictionPolicy(LRU), es, 2))
	require.Empty(t, Sweep(NewEvictionPolicy(LRU), es, 5))
	require.Len(t, Sweep(NewEvictionPolicy(LRU), es, -1), 2)
}

func TestUnknownPolicyPanics(t *testing.T) {
	require.Panics(t, func() { NewEvictionPolicy("MRU") })
}
