// Command cellcache looks up elevations through a cache of SRTM tiles.
package main

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cellcache "github.com/krisalay/elevation-cache"
	"github.com/krisalay/elevation-cache/config"
	"github.com/krisalay/elevation-cache/engine"
	"github.com/krisalay/elevation-cache/eviction"
	"github.com/krisalay/elevation-cache/hgt"
)

const envPrefix = "CELLCACHE"

// Keys only known to the command line. The cache keys come from package config.
const (
	keyDir      = "dir"
	keyLog      = "log"
	keyConfig   = "config"
	keyMaxCells = "max_cells"
)

type cmdContext struct {
	v      *viper.Viper
	logger hclog.Logger
}

func main() {
	if err := newRootCommand(newCmdContext()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newCmdContext() *cmdContext {
	return &cmdContext{v: viper.New()}
}

func newRootCommand(ctx *cmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cellcache",
		Short: "Elevation lookups through a cache of open SRTM tiles",
		Long: `cellcache answers elevation queries from a directory of SRTM .hgt
tiles, keeping a bounded number of tiles open between lookups.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx.logger = hclog.New(&hclog.LoggerOptions{
				Name:   "cellcache",
				Level:  hclog.LevelFromString(ctx.v.GetString(keyLog)),
				Output: os.Stderr,
			})
		},
	}

	def := config.Default()
	f := cmd.PersistentFlags()
	f.String("dir", ".", "Directory holding .hgt or .hgt.zip tiles")
	f.String("log", "info", "Log level: trace, debug, info, warn or error")
	f.String("config", "", "JSON file with the cache settings")
	f.Uint32("min-open-cells", def.MinOpenCells, "Cells left open after an eviction sweep")
	f.Uint32("max-open-cells", def.MaxOpenCells, "Open cells above which the cache sweeps")
	f.Bool("memory-map", def.MemoryMapCells, "Memory-map tiles instead of reading them")
	f.String("eviction", string(def.Eviction), "Eviction order: LRU, LFU or FIFO")
	f.Bool("single-flight", def.SingleFlight, "Share one open between concurrent misses on a tile")

	// Lookups
	v := ctx.v
	_ = v.BindPFlag(keyDir, f.Lookup("dir"))
	_ = v.BindPFlag(keyLog, f.Lookup("log"))
	_ = v.BindPFlag(keyConfig, f.Lookup("config"))
	_ = v.BindPFlag(config.KeyMinOpenCells, f.Lookup("min-open-cells"))
	_ = v.BindPFlag(config.KeyMaxOpenCells, f.Lookup("max-open-cells"))
	_ = v.BindPFlag(config.KeyMemoryMapCells, f.Lookup("memory-map"))
	_ = v.BindPFlag(config.KeyEviction, f.Lookup("eviction"))
	_ = v.BindPFlag(config.KeySingleFlight, f.Lookup("single-flight"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.AddCommand(
		newCellsCommand(ctx),
		newHeightCommand(ctx),
		newOpenCommand(ctx),
		newSynthCommand(ctx),
	)
	return cmd
}

/*
cacheConfig starts from the defaults, or from the --config file, and applies
every setting given as a flag or an environment variable on top.
*/
func (c *cmdContext) cacheConfig() (config.Config, error) {
	cfg := config.Default()
	if path := c.v.GetString(keyConfig); path != "" {
		path, err := homedir.Expand(path)
		if err != nil {
			return cfg, err
		}
		if cfg, err = config.ReadFile(path); err != nil {
			return cfg, err
		}
	}

	v := c.v
	if v.IsSet(config.KeyMinOpenCells) {
		cfg.MinOpenCells = v.GetUint32(config.KeyMinOpenCells)
	}
	if v.IsSet(config.KeyMaxOpenCells) {
		cfg.MaxOpenCells = v.GetUint32(config.KeyMaxOpenCells)
	}
	if v.IsSet(config.KeyMemoryMapCells) {
		cfg.MemoryMapCells = v.GetBool(config.KeyMemoryMapCells)
	}
	if v.IsSet(config.KeySingleFlight) {
		cfg.SingleFlight = v.GetBool(config.KeySingleFlight)
	}
	if v.IsSet(config.KeyEviction) {
		t, err := eviction.ParsePolicyType(v.GetString(config.KeyEviction))
		if err != nil {
			return cfg, err
		}
		cfg.Eviction = t
	}
	cfg.Normalize()
	return cfg, nil
}

// openDatabase scans the tile directory and builds the database over it.
func (c *cmdContext) openDatabase() (*cellcache.ElevationDatabase[*hgt.Cell], error) {
	cfg, err := c.cacheConfig()
	if err != nil {
		return nil, err
	}
	dir, err := homedir.Expand(c.v.GetString(keyDir))
	if err != nil {
		return nil, err
	}

	tiles, err := hgt.NewDirectory(dir, cfg.MemoryMapCells, c.logger)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("cache configured",
		"min_open_cells", cfg.MinOpenCells,
		"max_open_cells", cfg.MaxOpenCells,
		"eviction", cfg.Eviction,
		"single_flight", cfg.SingleFlight,
	)

	eng := engine.NewCellEngine[*hgt.Cell](tiles, nil, c.logger.Named("engine"))
	return cellcache.NewElevationDatabase(cfg, eng), nil
}

// closeDatabase closes db, logging what could not be closed.
func (c *cmdContext) closeDatabase(db *cellcache.ElevationDatabase[*hgt.Cell]) {
	if err := db.Close(); err != nil {
		c.logger.Warn("closing tiles", "error", err)
	}
}
