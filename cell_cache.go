package cellcache

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/singleflight"

	"github.com/krisalay/elevation-cache/config"
	"github.com/krisalay/elevation-cache/engine"
	"github.com/krisalay/elevation-cache/eviction"
	"github.com/krisalay/elevation-cache/geo"
	"github.com/krisalay/elevation-cache/types"
)

/*
CellCache is a bounded cache of open cell handles keyed by cell identity.

This struct is the orchestrator that connects:
- the cell map and its lock
- the engine (factory, metrics, logging)
- the eviction policy
- single-flight opens

A single RWMutex protects the map. Hits only take the read lock. The factory
is always called with no lock held, since opening a cell may block on I/O.
Inserting, and the eviction sweep an insert may trigger, take the write lock.
*/
type CellCache[H types.CellHandle] struct {
	mu     sync.RWMutex
	cells  map[uint64]*entry[H]
	cfg    config.Config
	closed bool

	policy eviction.Policy
	engine *engine.CellEngine[H]

	// tick orders accesses. Every hit and insert takes the next value.
	tick atomic.Uint64

	// sf lets concurrent misses on the same cell share one factory call.
	sf singleflight.Group
}

type entry[H types.CellHandle] struct {
	meta *types.CellEntry
	cell *Cell[H]
}

func NewCellCache[H types.CellHandle](cfg config.Config, engine *engine.CellEngine[H]) *CellCache[H] {
	cfg.Normalize()
	return &CellCache[H]{
		cells:  make(map[uint64]*entry[H]),
		cfg:    cfg,
		policy: eviction.NewEvictionPolicy(cfg.Eviction),
		engine: engine,
	}
}

/*
GetOrCreate returns the cell covering p, opening it if needed, or nil if no
cell covers p or it failed to open.

The returned Cell holds a reference for the caller, who must Release it.
*/
func (c *CellCache[H]) GetOrCreate(ctx context.Context, p geo.Point) *Cell[H] {
	id := c.engine.CellID(p)

	for {
		if cell := c.lookup(id); cell != nil {
			c.engine.OnHit()
			return cell
		}
		cfg, closed := c.state()
		if closed {
			return nil
		}

		if !cfg.SingleFlight {
			c.engine.OnMiss()
			return c.open(ctx, id, p, true)
		}

		/*
			Only one goroutine per cell id runs the flight; the others wait
			for its result. The flight hands back the cell without a caller
			reference, so each waiter takes its own. If the cell got evicted
			and closed in between, start over.
		*/
		v, _, _ := c.sf.Do(strconv.FormatUint(id, 16), func() (any, error) {
			return c.flight(ctx, id, p), nil
		})
		res := v.(flightResult[H])
		if res.hit {
			c.engine.OnHit()
		} else {
			c.engine.OnMiss()
		}
		if res.cell == nil {
			return nil
		}
		if res.cell.tryAcquire() {
			return res.cell
		}
	}
}

type flightResult[H types.CellHandle] struct {
	cell *Cell[H]
	hit  bool
}

// flight re-checks the map, since another caller may have inserted the cell
// after our lookup, and opens the cell otherwise.
func (c *CellCache[H]) flight(ctx context.Context, id uint64, p geo.Point) flightResult[H] {
	if cell := c.touch(id); cell != nil {
		return flightResult[H]{cell: cell, hit: true}
	}
	return flightResult[H]{cell: c.open(ctx, id, p, false)}
}

// lookup returns the mapped cell for id with a caller reference, refreshing
// its access tick.
func (c *CellCache[H]) lookup(id uint64) *Cell[H] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.cells[id]
	if !ok {
		return nil
	}
	// A mapped cell always holds the cache's reference, so this cannot fail.
	if !e.cell.tryAcquire() {
		panic(fmt.Sprintf("cellcache: mapped cell %d has no references", id))
	}
	e.meta.Touch(c.tick.Add(1))
	return e.cell
}

// touch refreshes the access tick of the mapped cell for id and returns it
// without taking a reference.
func (c *CellCache[H]) touch(id uint64) *Cell[H] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.cells[id]
	if !ok {
		return nil
	}
	e.meta.Touch(c.tick.Add(1))
	return e.cell
}

// open calls the factory outside the lock and inserts the result.
func (c *CellCache[H]) open(ctx context.Context, id uint64, p geo.Point, callerRef bool) *Cell[H] {
	h, ok := c.engine.Open(ctx, p)
	if !ok {
		return nil
	}
	return c.insert(id, h, callerRef)
}

/*
insert maps a freshly opened handle under id.

If an entry for id already exists (two misses raced without single-flight),
the new one supersedes it and the old one loses the cache's reference. If the
map grows past the high-water mark, the sweep runs before returning.
Handles are closed after the lock is released.
*/
func (c *CellCache[H]) insert(id uint64, h H, callerRef bool) *Cell[H] {
	cell := newCell(id, h, c.engine.CloseHandle)
	if callerRef {
		cell.refs.Add(1)
	}

	var dropped []*Cell[H]

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = cell.release()
		if callerRef {
			_ = cell.release()
		}
		return nil
	}

	meta := types.NewCellEntry(id, h.Filename(), c.tick.Add(1))
	if old, ok := c.cells[id]; ok {
		c.engine.OnSupersede(old.meta)
		dropped = append(dropped, old.cell)
	}
	c.cells[id] = &entry[H]{meta: meta, cell: cell}

	if len(c.cells) > int(c.cfg.MaxOpenCells) {
		dropped = append(dropped, c.sweepLocked(id)...)
	}
	c.engine.OnResize(len(c.cells))
	c.mu.Unlock()

	for _, d := range dropped {
		_ = d.release()
	}
	return cell
}

/*
sweepLocked removes entries until at most max(MinOpenCells, 1) remain and
returns their cells. The entry under pinned is never a victim.
Must hold c.mu for writing.
*/
func (c *CellCache[H]) sweepLocked(pinned uint64) []*Cell[H] {
	keep := int(c.cfg.MinOpenCells)
	if keep < 1 {
		keep = 1
	}

	candidates := make([]*types.CellEntry, 0, len(c.cells))
	for id, e := range c.cells {
		if id != pinned {
			candidates = append(candidates, e.meta)
		}
	}

	victims := eviction.Sweep(c.policy, candidates, keep-1)
	dropped := make([]*Cell[H], 0, len(victims))
	for _, v := range victims {
		e, ok := c.cells[v.ID]
		if !ok || e.meta != v {
			panic(fmt.Sprintf("cellcache: entry %d vanished during eviction sweep", v.ID))
		}
		delete(c.cells, v.ID)
		c.engine.OnEvict(v)
		dropped = append(dropped, e.cell)
	}
	return dropped
}

// newestLocked returns the id of the most recently used entry.
// Must hold c.mu.
func (c *CellCache[H]) newestLocked() uint64 {
	var (
		newest uint64
		tick   uint64
	)
	for id, e := range c.cells {
		if t := e.meta.Tick.Load(); t >= tick {
			newest, tick = id, t
		}
	}
	return newest
}

/*
Remove drops the entry for id, if any. Its handle closes as soon as no caller
holds a reference to it.
*/
func (c *CellCache[H]) Remove(id uint64) {
	c.mu.Lock()
	e, ok := c.cells[id]
	if ok {
		delete(c.cells, id)
		c.engine.OnResize(len(c.cells))
	}
	c.mu.Unlock()

	if ok {
		_ = e.cell.release()
	}
}

// OpenCellList returns the filenames of the open cells, ordered by cell id.
// The result is a snapshot.
func (c *CellCache[H]) OpenCellList() []string {
	c.mu.RLock()
	metas := make([]*types.CellEntry, 0, len(c.cells))
	for _, e := range c.cells {
		metas = append(metas, e.meta)
	}
	c.mu.RUnlock()

	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
	names := make([]string, len(metas))
	for i, m := range metas {
		names[i] = m.Filename
	}
	return names
}

/*
SetMinMaxOpenCells changes the water marks. Inverted values are swapped.
A cache above the new high-water mark is swept right away, keeping the most
recently used entry.
*/
func (c *CellCache[H]) SetMinMaxOpenCells(minCells, maxCells uint32) {
	var dropped []*Cell[H]

	c.mu.Lock()
	c.cfg.MinOpenCells = minCells
	c.cfg.MaxOpenCells = maxCells
	c.cfg.Normalize()
	if len(c.cells) > int(c.cfg.MaxOpenCells) {
		dropped = c.sweepLocked(c.newestLocked())
		c.engine.OnResize(len(c.cells))
	}
	c.mu.Unlock()

	for _, d := range dropped {
		_ = d.release()
	}
}

// Config returns the current configuration.
func (c *CellCache[H]) Config() config.Config {
	cfg, _ := c.state()
	return cfg
}

func (c *CellCache[H]) state() (config.Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg, c.closed
}

// Size returns how many cells are open in the cache.
func (c *CellCache[H]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cells)
}

// CellID returns the cache key of the cell covering p.
func (c *CellCache[H]) CellID(p geo.Point) uint64 {
	return c.engine.CellID(p)
}

/*
Close drops every entry and refuses further inserts. Handles not held by a
caller are closed right away and their close errors returned; the others
close when released.
*/
func (c *CellCache[H]) Close() error {
	c.mu.Lock()
	c.closed = true
	cells := c.cells
	c.cells = make(map[uint64]*entry[H])
	c.engine.OnResize(0)
	c.mu.Unlock()

	var result *multierror.Error
	for _, e := range cells {
		if err := e.cell.release(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing %s: %w", e.meta.Filename, err))
		}
	}
	return result.ErrorOrNil()
}
