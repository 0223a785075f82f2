package hgt

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/krisalay/elevation-cache/geo"
	"github.com/krisalay/elevation-cache/types"
)

/*
Directory is a cell factory over a tree of SRTM tiles.

The tree is scanned once, when the Directory is created, and tiles are
indexed by their one-degree cell id. Tiles are opened on demand by
CreateCell; the Directory keeps nothing open itself.
*/
type Directory struct {
	root      string
	memoryMap bool
	files     map[uint64]string
	logger    hclog.Logger
}

var _ types.CellFactory[*Cell] = (*Directory)(nil)

// NewDirectory scans root for tiles. memoryMap is passed to Open for every
// tile. logger may be nil.
func NewDirectory(root string, memoryMap bool, logger hclog.Logger) (*Directory, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	d := &Directory{
		root:      root,
		memoryMap: memoryMap,
		files:     make(map[uint64]string),
		logger:    logger.Named("hgt"),
	}

	err := filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		lat, lon, ok := ParseName(path)
		if !ok {
			return nil
		}
		id := CellID(lat, lon)
		if prev, dup := d.files[id]; dup {
			// Plain tiles can be memory-mapped, so they win over zipped ones.
			if isZipped(path) || !isZipped(prev) {
				d.logger.Debug("duplicate tile ignored", "file", path, "kept", prev)
				return nil
			}
			d.logger.Debug("duplicate tile ignored", "file", prev, "kept", path)
		}
		d.files[id] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hgt: scanning %s: %w", root, err)
	}

	d.logger.Info("tile directory scanned", "root", root, "tiles", len(d.files))
	return d, nil
}

func isZipped(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zip")
}

// CellID returns the id of the one-degree tile holding p.
func (d *Directory) CellID(p geo.Point) uint64 {
	return CellID(Corner(p))
}

// CreateCell opens the tile holding p.
func (d *Directory) CreateCell(ctx context.Context, p geo.Point) (*Cell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.Valid() {
		return nil, types.ErrNoCoverage
	}
	path, ok := d.files[d.CellID(p)]
	if !ok {
		return nil, types.ErrNoCoverage
	}
	return Open(path, d.memoryMap)
}

// Len returns the number of tiles found.
func (d *Directory) Len() int {
	return len(d.files)
}

// Files returns the indexed tile paths, sorted.
func (d *Directory) Files() []string {
	out := make([]string, 0, len(d.files))
	for _, f := range d.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
