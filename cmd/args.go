package main

import (
	"fmt"
	"strconv"

	"github.com/krisalay/elevation-cache/geo"
)

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// parsePoints reads LAT LON pairs.
func parsePoints(args []string) ([]geo.Point, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, fmt.Errorf("expected LAT LON pairs, got %d arguments", len(args))
	}
	fs, err := parseFloats(args)
	if err != nil {
		return nil, err
	}

	points := make([]geo.Point, 0, len(fs)/2)
	for i := 0; i < len(fs); i += 2 {
		p := geo.Point{Lat: fs[i], Lon: fs[i+1]}
		if !p.Valid() {
			return nil, fmt.Errorf("invalid point %v", p)
		}
		points = append(points, p)
	}
	return points, nil
}
