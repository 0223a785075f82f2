package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/elevation-cache/geo"
	"github.com/krisalay/elevation-cache/types"
)

type handle struct {
	name     string
	closeErr error
}

func (h *handle) Filename() string { return h.name }
func (h *handle) Close() error     { return h.closeErr }

type factory struct {
	err error

	// nothing makes CreateCell return a nil handle and a nil error.
	nothing bool
}

func (f factory) CellID(p geo.Point) uint64 { return uint64(p.Lat) }

func (f factory) CreateCell(ctx context.Context, p geo.Point) (*handle, error) {
	if f.err != nil || f.nothing {
		return nil, f.err
	}
	return &handle{name: "cell"}, nil
}

type counts struct {
	types.NoopMetrics
	opens, failures int
}

func (c *counts) Open()        { c.opens++ }
func (c *counts) OpenFailure() { c.failures++ }

func newTestEngine(err error) (*CellEngine[*handle], *counts, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Trace})
	m := &counts{}
	return NewCellEngine[*handle](factory{err: err}, m, logger), m, &buf
}

func TestOpen(t *testing.T) {
	e, m, log := newTestEngine(nil)

	h, ok := e.Open(context.Background(), geo.Point{Lat: 3})
	require.True(t, ok)
	require.Equal(t, "cell", h.Filename())
	require.Equal(t, 1, m.opens)
	require.Contains(t, log.String(), "cell opened")
	require.Equal(t, uint64(3), e.CellID(geo.Point{Lat: 3.5}))
}

func TestOpenFailures(t *testing.T) {
	testCases := []struct {
		err  error
		logs string
	}{
		{types.ErrNoCoverage, "[TRACE] no coverage"},
		{errors.New("disk on fire"), "[DEBUG] cell open failed"},
	}

	for i, c := range testCases {
		e, m, log := newTestEngine(c.err)
		h, ok := e.Open(context.Background(), geo.Point{})
		require.Falsef(t, ok, "test case %d", i)
		require.Nilf(t, h, "test case %d", i)
		require.Equalf(t, 1, m.failures, "test case %d", i)
		require.Containsf(t, log.String(), c.logs, "test case %d", i)
	}
}

func TestOpenNilHandle(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Trace})
	m := &counts{}
	e := NewCellEngine[*handle](factory{nothing: true}, m, logger)

	h, ok := e.Open(context.Background(), geo.Point{Lat: 1})
	require.False(t, ok)
	require.Nil(t, h)
	require.Equal(t, 1, m.failures)
	require.Equal(t, 0, m.opens)
	require.Contains(t, buf.String(), "[TRACE] no coverage")
}

func TestIsNil(t *testing.T) {
	var h *handle
	var c types.CellHandle
	require.True(t, isNil(h))
	require.True(t, isNil(c))
	require.False(t, isNil(&handle{}))
}

func TestCloseHandle(t *testing.T) {
	e, _, log := newTestEngine(nil)

	require.NoError(t, e.CloseHandle(&handle{name: "ok"}))
	require.Empty(t, log.String())

	err := errors.New("busy")
	require.Equal(t, err, e.CloseHandle(&handle{name: "stuck", closeErr: err}))
	require.Contains(t, log.String(), "[WARN]  cell close failed")
}

func TestNewCellEngineDefaults(t *testing.T) {
	e := NewCellEngine[*handle](factory{}, nil, nil)
	require.NotNil(t, e.Metrics)
	require.NotNil(t, e.Logger)

	require.Panics(t, func() { NewCellEngine[*handle](nil, nil, nil) })
}
