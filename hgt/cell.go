// Package hgt reads SRTM height tiles (.hgt and .hgt.zip) and serves them as
// cells to the elevation cell cache.
//
// A tile covers one degree square and holds a grid of big-endian int16
// heights in meters, 1201x1201 posts for SRTM3 and 3601x3601 for SRTM1. Rows
// run north to south and adjacent tiles share their edge rows and columns.
package hgt

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/krisalay/elevation-cache/geo"
)

const (
	SRTM1Posts = 3601
	SRTM3Posts = 1201

	// Void marks a post without data.
	Void = -32768
)

var (
	ErrNotHGT  = errors.New("hgt: not an SRTM tile name")
	ErrBadSize = errors.New("hgt: unexpected tile size")
)

// Cell is one open SRTM tile.
type Cell struct {
	path     string
	lat, lon int
	posts    int
	data     []byte

	// Set when the tile is memory-mapped.
	mm   mmap.MMap
	file *os.File
}

/*
Open opens the tile at path. With memoryMap set, a plain .hgt file is mapped
into memory instead of read; zipped tiles are always read.
*/
func Open(path string, memoryMap bool) (*Cell, error) {
	lat, lon, ok := ParseName(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotHGT, path)
	}
	c := &Cell{path: path, lat: lat, lon: lon}

	var err error
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".zip"):
		c.data, err = readZipped(path)
	case memoryMap:
		err = c.mapFile()
	default:
		c.data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("hgt: opening %s: %w", path, err)
	}

	c.posts = postsFor(len(c.data))
	if c.posts == 0 {
		n := len(c.data)
		c.Close()
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrBadSize, path, n)
	}
	return c, nil
}

func (c *Cell) mapFile() error {
	f, err := os.Open(c.path)
	if err != nil {
		return err
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return err
	}
	c.file, c.mm, c.data = f, mm, mm
	return nil
}

// readZipped returns the first real file of a zipped tile. Some archives
// carry dot-files next to the tile.
func readZipped(path string) ([]byte, error) {
	z, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer z.Close()

	for _, zf := range z.File {
		if strings.HasPrefix(zf.Name, ".") || strings.Contains(zf.Name, "/.") {
			continue
		}
		r, err := zf.Open()
		if err != nil {
			return nil, err
		}
		b, err := io.ReadAll(r)
		r.Close()
		return b, err
	}
	return nil, errors.New("no tile in archive")
}

func postsFor(n int) int {
	switch n {
	case 2 * SRTM1Posts * SRTM1Posts:
		return SRTM1Posts
	case 2 * SRTM3Posts * SRTM3Posts:
		return SRTM3Posts
	}
	return 0
}

func (c *Cell) Filename() string { return c.path }

// Posts returns the number of posts along each side.
func (c *Cell) Posts() int { return c.posts }

// Bounds returns the degree square covered by the tile.
func (c *Cell) Bounds() geo.Bounds {
	return geo.Bounds{
		MinLat: float64(c.lat),
		MinLon: float64(c.lon),
		MaxLat: float64(c.lat + 1),
		MaxLon: float64(c.lon + 1),
	}
}

// Post returns the raw sample at row, col. Row 0 is the north edge.
func (c *Cell) Post(row, col int) int16 {
	i := 2 * (row*c.posts + col)
	return int16(binary.BigEndian.Uint16(c.data[i:]))
}

/*
Height returns the bilinear interpolation of the four posts around p, or NaN
if p is outside the tile or any of those posts is void.
*/
func (c *Cell) Height(p geo.Point) float64 {
	if !c.Bounds().Contains(p) {
		return math.NaN()
	}

	n := float64(c.posts - 1)
	x := (p.Lon - float64(c.lon)) * n
	y := (float64(c.lat+1) - p.Lat) * n

	x0, y0 := int(x), int(y)
	x1, y1 := min(x0+1, c.posts-1), min(y0+1, c.posts-1)
	dx, dy := x-float64(x0), y-float64(y0)

	var h [4]float64
	for i, rc := range [4][2]int{{y0, x0}, {y0, x1}, {y1, x0}, {y1, x1}} {
		v := c.Post(rc[0], rc[1])
		if v == Void {
			return math.NaN()
		}
		h[i] = float64(v)
	}

	top := h[0] + (h[1]-h[0])*dx
	bottom := h[2] + (h[3]-h[2])*dx
	return top + (bottom-top)*dy
}

// Close releases the tile data.
func (c *Cell) Close() error {
	var err error
	if c.mm != nil {
		err = c.mm.Unmap()
		if cerr := c.file.Close(); err == nil {
			err = cerr
		}
		c.mm, c.file = nil, nil
	}
	c.data = nil
	return err
}
