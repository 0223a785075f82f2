package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisalay/elevation-cache/eviction"
)

func execute(t *testing.T, args ...string) []string {
	t.Helper()
	cmd := newRootCommand(newCmdContext())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log", "off"))
	require.NoError(t, cmd.Execute())
	return strings.Fields(out.String())
}

func TestSynthAndLookups(t *testing.T) {
	dir := t.TempDir()

	written := execute(t, "--dir", dir, "synth", "46.5", "7.5", "47.5", "7.5", "--base", "1000", "--relief", "0")
	require.Equal(t, []string{
		filepath.Join(dir, "N46E007.hgt"),
		filepath.Join(dir, "N47E007.hgt"),
	}, written)

	out := execute(t, "--dir", dir, "height", "46.5", "7.5", "50", "7", "--default=-1")
	require.Equal(t, "1000.0", out[len(out)/2-1])
	require.Equal(t, "-1.0", out[len(out)-1])

	cells := execute(t, "--dir", dir, "cells", "46.8", "7.2", "47.2", "7.4")
	require.Equal(t, written, cells)

	cells = execute(t, "--dir", dir, "cells", "46.8", "7.2", "47.2", "7.4", "--max", "1")
	require.Equal(t, written[:1], cells)

	open := execute(t, "--dir", dir, "--min-open-cells", "0", "--max-open-cells", "1", "open", "46.5", "7.5", "47.5", "7.5")
	require.Equal(t, written[1:], open)
}

func TestCacheConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"min_open_cells": 3,
		"max_open_cells": 30,
		"eviction_policy": "LFU"
	}`), 0644))
	t.Setenv("CELLCACHE_MIN_OPEN_CELLS", "7")

	ctx := newCmdContext()
	cmd := newRootCommand(ctx)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--config", path, "--max-open-cells", "40"}))

	cfg, err := ctx.cacheConfig()
	require.NoError(t, err)
	require.Equal(t, uint32(7), cfg.MinOpenCells)
	require.Equal(t, uint32(40), cfg.MaxOpenCells)
	require.Equal(t, eviction.LFU, cfg.Eviction)
	require.True(t, cfg.SingleFlight)
}

func TestCacheConfigErrors(t *testing.T) {
	ctx := newCmdContext()
	cmd := newRootCommand(ctx)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--eviction", "random"}))
	_, err := ctx.cacheConfig()
	require.Error(t, err)

	ctx = newCmdContext()
	cmd = newRootCommand(ctx)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.json")}))
	_, err = ctx.cacheConfig()
	require.Error(t, err)
}

func TestParsePoints(t *testing.T) {
	points, err := parsePoints([]string{"1.5", "2", "-3", "4.25"})
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 4.25, points[1].Lon)

	_, err = parsePoints([]string{"1"})
	require.Error(t, err)
	_, err = parsePoints([]string{"1", "x"})
	require.Error(t, err)
	_, err = parsePoints([]string{"91", "0"})
	require.Error(t, err)
}
