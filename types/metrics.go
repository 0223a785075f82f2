package types

// This file defines how the cell cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in a cell's lifecycle.
*/
type Metrics interface {

	// Hit is called when a lookup finds the cell already open.
	Hit()

	// Miss is called when a lookup has to ask the factory for the cell.
	Miss()

	// Open is called when the factory returned a new handle.
	Open()

	// OpenFailure is called when the factory returned no handle.
	OpenFailure()

	// Eviction is called for every entry removed by the eviction sweep.
	Eviction()

	// Supersede is called when an insert replaces an entry for the same id.
	Supersede()

	// OpenCells reports the number of entries in the cache after a change.
	OpenCells(n int)
}

// NoopMetrics ignores every event. It is the default when no Metrics is given.
type NoopMetrics struct{}

func (NoopMetrics) Hit()          {}
func (NoopMetrics) Miss()         {}
func (NoopMetrics) Open()         {}
func (NoopMetrics) OpenFailure()  {}
func (NoopMetrics) Eviction()     {}
func (NoopMetrics) Supersede()    {}
func (NoopMetrics) OpenCells(int) {}
