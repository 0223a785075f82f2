package hgt

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/krisalay/elevation-cache/geo"
)

// ParseName extracts the south-west corner from an SRTM tile name such as
// N37W122.hgt or S04E015.hgt.zip. Tiles are named by their lower left corner.
func ParseName(name string) (lat, lon int, ok bool) {
	base := strings.ToUpper(filepath.Base(name))
	base = strings.TrimSuffix(base, ".ZIP")
	if !strings.HasSuffix(base, ".HGT") {
		return 0, 0, false
	}
	base = strings.TrimSuffix(base, ".HGT")
	if len(base) != 7 {
		return 0, 0, false
	}

	var ns, ew string
	if n, err := fmt.Sscanf(base, "%1s%2d%1s%3d", &ns, &lat, &ew, &lon); n != 4 || err != nil {
		return 0, 0, false
	}
	switch ns {
	case "N":
	case "S":
		lat = -lat
	default:
		return 0, 0, false
	}
	switch ew {
	case "E":
	case "W":
		lon = -lon
	default:
		return 0, 0, false
	}
	if lat < -90 || lat > 89 || lon < -180 || lon > 179 {
		return 0, 0, false
	}
	return lat, lon, true
}

// Name returns the canonical tile name for a south-west corner.
func Name(lat, lon int) string {
	ns, ew := 'N', 'E'
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	if lon < 0 {
		ew, lon = 'W', -lon
	}
	return fmt.Sprintf("%c%02d%c%03d.hgt", ns, lat, ew, lon)
}

// Corner returns the south-west corner of the one-degree tile holding p.
// Points on the north or east edge of the world belong to the last tile.
func Corner(p geo.Point) (lat, lon int) {
	lat = int(math.Floor(p.Lat))
	lon = int(math.Floor(p.Lon))
	lat = min(max(lat, -90), 89)
	lon = min(max(lon, -180), 179)
	return lat, lon
}

// CellID is the cache key of the one-degree tile with the given corner.
func CellID(lat, lon int) uint64 {
	return uint64((lat+90)*360 + (lon + 180))
}
