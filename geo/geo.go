// Package geo holds the small geographic value types shared by the cell cache
// and its factories. Angles are decimal degrees.
package geo

import (
	"fmt"
	"math"
)

// Point is a geographic position. Lat grows north (-90..90), Lon grows east
// (-180..180).
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether p lies in the geodetic range.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lon >= -180 && p.Lon <= 180
}

func (p Point) String() string {
	ns, ew := 'N', 'E'
	lat, lon := p.Lat, p.Lon
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	if lon < 0 {
		ew, lon = 'W', -lon
	}
	return fmt.Sprintf("%8.4f°%c %9.4f°%c", lat, ns, lon, ew)
}

// Bounds is an axis-aligned lat/lon box. Both edges are inclusive.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// NewBounds returns the box spanned by the two corners, in any order.
func NewBounds(lat1, lon1, lat2, lon2 float64) Bounds {
	return Bounds{
		MinLat: math.Min(lat1, lat2),
		MinLon: math.Min(lon1, lon2),
		MaxLat: math.Max(lat1, lat2),
		MaxLon: math.Max(lon1, lon2),
	}
}

// Contains reports whether p is inside b, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Empty reports whether b has inverted or NaN edges.
func (b Bounds) Empty() bool {
	return !(b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon)
}

// Clamp limits b to the geodetic range. A box entirely outside it comes
// back Empty.
func (b Bounds) Clamp() Bounds {
	return Bounds{
		MinLat: math.Max(b.MinLat, -90),
		MinLon: math.Max(b.MinLon, -180),
		MaxLat: math.Min(b.MaxLat, 90),
		MaxLon: math.Min(b.MaxLon, 180),
	}
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%g,%g .. %g,%g]", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}
