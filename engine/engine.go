package engine

import (
	"context"
	"errors"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/krisalay/elevation-cache/geo"
	"github.com/krisalay/elevation-cache/types"
)

/*
CellEngine is the policy layer between the cell cache and the outside world.
It is responsible for the "behavior" around a cell, NOT for storing it.

It decides:
- How a cell identity is computed for a point
- How a missing cell is opened, and what a failed open means
- How cache events are recorded and logged

It does NOT:
- Store cells
- Handle locking
- Decide eviction order
*/
type CellEngine[H types.CellHandle] struct {

	// Factory finds and opens cells. It is the only part of the engine
	// that may block on I/O.
	Factory types.CellFactory[H]

	// Metrics keeps track of hits, misses, opens and evictions.
	Metrics types.Metrics

	// Logger receives open failures and eviction traces.
	Logger hclog.Logger
}

/*
NewCellEngine creates a CellEngine. Metrics and logger may be nil.
*/
func NewCellEngine[H types.CellHandle](
	factory types.CellFactory[H],
	metrics types.Metrics,
	logger hclog.Logger,
) *CellEngine[H] {
	if factory == nil {
		panic("engine: nil cell factory")
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &CellEngine[H]{
		Factory: factory,
		Metrics: metrics,
		Logger:  logger,
	}
}

// CellID returns the cache key for p.
func (e *CellEngine[H]) CellID(p geo.Point) uint64 {
	return e.Factory.CellID(p)
}

/*
Open asks the factory for the cell covering p.

A point without coverage and a cell that failed to open look the same to the
caller: ok is false. The difference only shows up in the logs. A nil handle
with a nil error counts as no coverage.
*/
func (e *CellEngine[H]) Open(ctx context.Context, p geo.Point) (h H, ok bool) {
	h, err := e.Factory.CreateCell(ctx, p)
	switch {
	case errors.Is(err, types.ErrNoCoverage), err == nil && isNil(h):
		e.Metrics.OpenFailure()
		e.Logger.Trace("no coverage", "point", p.String())
		return h, false
	case err != nil:
		e.Metrics.OpenFailure()
		e.Logger.Debug("cell open failed", "point", p.String(), "error", err)
		return h, false
	}

	e.Metrics.Open()
	e.Logger.Trace("cell opened", "file", h.Filename())
	return h, true
}

// OnHit records a lookup served from the cache.
func (e *CellEngine[H]) OnHit() {
	e.Metrics.Hit()
}

// OnMiss records a lookup that has to go to the factory.
func (e *CellEngine[H]) OnMiss() {
	e.Metrics.Miss()
}

// OnEvict records a cell dropped by the eviction sweep.
func (e *CellEngine[H]) OnEvict(ent *types.CellEntry) {
	e.Metrics.Eviction()
	e.Logger.Trace("cell evicted", "id", ent.ID, "file", ent.Filename)
}

// OnSupersede records an insert that replaced an entry for the same cell.
func (e *CellEngine[H]) OnSupersede(ent *types.CellEntry) {
	e.Metrics.Supersede()
	e.Logger.Debug("cell superseded", "id", ent.ID, "file", ent.Filename)
}

// OnResize reports the number of open cells after a change.
func (e *CellEngine[H]) OnResize(n int) {
	e.Metrics.OpenCells(n)
}

// CloseHandle closes h, logging any error. It is called once the last
// reference to a cell is released.
func (e *CellEngine[H]) CloseHandle(h H) error {
	err := h.Close()
	if err != nil {
		e.Logger.Warn("cell close failed", "file", h.Filename(), "error", err)
	}
	return err
}

// isNil reports whether h is nil, including a nil pointer held in an interface.
func isNil(h any) bool {
	if h == nil {
		return true
	}
	switch v := reflect.ValueOf(h); v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
