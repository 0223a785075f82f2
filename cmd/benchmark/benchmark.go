// Command benchmark drives a cell cache with concurrent lookups over
// synthetic tiles and prints what the cache did.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	cellcache "github.com/krisalay/elevation-cache"
	"github.com/krisalay/elevation-cache/config"
	"github.com/krisalay/elevation-cache/engine"
	"github.com/krisalay/elevation-cache/eviction"
	"github.com/krisalay/elevation-cache/geo"
	"github.com/krisalay/elevation-cache/hgt"
	"github.com/krisalay/elevation-cache/metrics"
	"github.com/krisalay/elevation-cache/types"
)

// ================= SYNTHETIC TILES =================

// memTile is a one-degree tile whose height is a function of position.
type memTile struct {
	name   string
	closed atomic.Bool
}

func (t *memTile) Filename() string { return t.name }

func (t *memTile) Close() error {
	if t.closed.Swap(true) {
		return errors.New("tile closed twice: " + t.name)
	}
	return nil
}

func (t *memTile) Height(p geo.Point) float64 {
	if t.closed.Load() {
		return math.NaN()
	}
	return 1000 + 500*math.Sin(p.Lat*math.Pi/8)*math.Cos(p.Lon*math.Pi/8)
}

// memTiles opens memTiles after a fixed delay, standing in for disk I/O.
type memTiles struct {
	latency time.Duration
	opens   atomic.Int64
}

func (f *memTiles) CellID(p geo.Point) uint64 {
	return hgt.CellID(hgt.Corner(p))
}

func (f *memTiles) CreateCell(ctx context.Context, p geo.Point) (*memTile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.latency):
	}
	if !p.Valid() {
		return nil, types.ErrNoCoverage
	}
	f.opens.Add(1)
	lat, lon := hgt.Corner(p)
	return &memTile{name: hgt.Name(lat, lon)}, nil
}

// ================= MAIN =================

type options struct {
	workers  int
	lookups  int
	span     float64
	latency  time.Duration
	listen   string
	logLevel string
	cfg      config.Config
	eviction string
}

func main() {
	opts := options{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Concurrent lookups against a cell cache",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := eviction.ParsePolicyType(opts.eviction)
			if err != nil {
				return err
			}
			opts.cfg.Eviction = t
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.workers, "workers", 32, "Concurrent lookup goroutines")
	f.IntVar(&opts.lookups, "lookups", 20000, "Lookups per worker")
	f.Float64Var(&opts.span, "span", 10, "Side of the square region walked, in degrees")
	f.DurationVar(&opts.latency, "latency", time.Millisecond, "Simulated tile open time")
	f.StringVar(&opts.listen, "metrics", "", "Serve /metrics on this address once the run is done")
	f.StringVar(&opts.logLevel, "log", "warn", "Log level")
	f.Uint32Var(&opts.cfg.MinOpenCells, "min-open-cells", opts.cfg.MinOpenCells, "Low-water mark")
	f.Uint32Var(&opts.cfg.MaxOpenCells, "max-open-cells", opts.cfg.MaxOpenCells, "High-water mark")
	f.BoolVar(&opts.cfg.SingleFlight, "single-flight", opts.cfg.SingleFlight, "Share opens between racing misses")
	f.StringVar(&opts.eviction, "eviction", string(eviction.LRU), "Eviction order: LRU, LFU or FIFO")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "benchmark",
		Level: hclog.LevelFromString(opts.logLevel),
	})

	reg := prometheus.NewRegistry()
	m, err := metrics.NewPrometheus("benchmark", reg)
	if err != nil {
		return err
	}

	tiles := &memTiles{latency: opts.latency}
	eng := engine.NewCellEngine[*memTile](tiles, m, logger.Named("engine"))
	db := cellcache.NewElevationDatabase(opts.cfg, eng)

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	cfg := db.Config()
	fmt.Printf("EVICTION POLICY : %s\n", cfg.Eviction)
	fmt.Printf("OPEN CELLS      : %d..%d\n", cfg.MinOpenCells, cfg.MaxOpenCells)
	fmt.Printf("SINGLE FLIGHT   : %v\n", cfg.SingleFlight)
	fmt.Printf("WORKERS         : %d x %d lookups\n", opts.workers, opts.lookups)
	fmt.Printf("REGION          : %.0f° square, %s per open\n", opts.span, opts.latency)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.workers; w++ {
		seed := int64(w)
		g.Go(func() error {
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < opts.lookups; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := geo.Point{Lat: r.Float64() * opts.span, Lon: r.Float64() * opts.span}
				if h := db.HeightAboveMSL(gctx, p); math.IsNaN(h) {
					return fmt.Errorf("no height at %s", p)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := opts.workers * opts.lookups
	fmt.Println("\n==================== METRICS ====================")
	fmt.Printf("LOOKUPS   : %d in %s (%.0f/s)\n", total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	fmt.Printf("HITS      : %.0f\n", testutil.ToFloat64(m.Hits))
	fmt.Printf("MISSES    : %.0f\n", testutil.ToFloat64(m.Misses))
	fmt.Printf("OPENS     : %.0f (factory saw %d)\n", testutil.ToFloat64(m.Opens), tiles.opens.Load())
	fmt.Printf("EVICTIONS : %.0f\n", testutil.ToFloat64(m.Evictions))
	fmt.Printf("SUPERSEDE : %.0f\n", testutil.ToFloat64(m.Supersedes))
	fmt.Printf("OPEN NOW  : %d\n", db.Size())

	if opts.listen != "" {
		fmt.Printf("\nserving metrics on http://%s/metrics\n", opts.listen)
		srv := &http.Server{Addr: opts.listen, Handler: metrics.NewMetricsHTTP(reg)}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	return db.Close()
}
