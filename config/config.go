// Package config holds the settings of a cell cache and how they are read
// from a key-value configuration block.
package config

import (
	"fmt"

	"go4.org/jsonconfig"

	"github.com/krisalay/elevation-cache/eviction"
)

// Configuration keys.
const (
	KeyMinOpenCells   = "min_open_cells"
	KeyMaxOpenCells   = "max_open_cells"
	KeyMemoryMapCells = "memory_map_cells"
	KeyEviction       = "eviction_policy"
	KeySingleFlight   = "single_flight"
)

const (
	DefaultMinOpenCells = 25
	DefaultMaxOpenCells = 50
)

type Config struct {
	// Number of cells left open after an eviction sweep.
	MinOpenCells uint32

	// Number of open cells above which an insert triggers a sweep.
	MaxOpenCells uint32

	// Hint for cell factories: memory-map cell files instead of reading them.
	// The cache itself does not interpret it.
	MemoryMapCells bool

	// Order in which the sweep closes cells.
	Eviction eviction.PolicyType

	// Share one factory call between concurrent misses on the same cell.
	SingleFlight bool
}

func Default() Config {
	return Config{
		MinOpenCells:   DefaultMinOpenCells,
		MaxOpenCells:   DefaultMaxOpenCells,
		MemoryMapCells: false,
		Eviction:       eviction.LRU,
		SingleFlight:   true,
	}
}

// Normalize swaps the water marks when they are inverted and fills in the
// eviction policy if unset.
func (c *Config) Normalize() {
	if c.MaxOpenCells < c.MinOpenCells {
		c.MinOpenCells, c.MaxOpenCells = c.MaxOpenCells, c.MinOpenCells
	}
	if c.Eviction == "" {
		c.Eviction = eviction.LRU
	}
}

// FromJSONConfig reads a configuration block. Missing keys keep their
// default; unknown keys and malformed values are an error.
func FromJSONConfig(obj jsonconfig.Obj) (Config, error) {
	def := Default()

	var (
		minCells = obj.OptionalInt(KeyMinOpenCells, int(def.MinOpenCells))
		maxCells = obj.OptionalInt(KeyMaxOpenCells, int(def.MaxOpenCells))
		mmap     = obj.OptionalBool(KeyMemoryMapCells, def.MemoryMapCells)
		policy   = obj.OptionalString(KeyEviction, string(def.Eviction))
		sf       = obj.OptionalBool(KeySingleFlight, def.SingleFlight)
	)
	if err := obj.Validate(); err != nil {
		return Config{}, err
	}

	if minCells < 0 || maxCells < 0 {
		return Config{}, fmt.Errorf("%s and %s must not be negative, got %d and %d",
			KeyMinOpenCells, KeyMaxOpenCells, minCells, maxCells)
	}
	pt, err := eviction.ParsePolicyType(policy)
	if err != nil {
		return Config{}, err
	}

	c := Config{
		MinOpenCells:   uint32(minCells),
		MaxOpenCells:   uint32(maxCells),
		MemoryMapCells: mmap,
		Eviction:       pt,
		SingleFlight:   sf,
	}
	c.Normalize()
	return c, nil
}

// ReadFile loads a configuration block from a JSON file.
func ReadFile(path string) (Config, error) {
	obj, err := jsonconfig.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading cache config %s: %w", path, err)
	}
	return FromJSONConfig(obj)
}
