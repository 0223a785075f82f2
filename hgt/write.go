package hgt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// HeightFunc returns the sample for a post. Row 0 is the north edge.
type HeightFunc func(row, col int) int16

// Write encodes a posts x posts tile to w.
func Write(w io.Writer, posts int, height HeightFunc) error {
	if postsFor(2*posts*posts) != posts {
		return fmt.Errorf("%w: %d posts", ErrBadSize, posts)
	}
	bw := bufio.NewWriter(w)
	var buf [2]byte
	for row := 0; row < posts; row++ {
		for col := 0; col < posts; col++ {
			binary.BigEndian.PutUint16(buf[:], uint16(height(row, col)))
			if _, err := bw.Write(buf[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes the tile with the given south-west corner into dir under
// its canonical name and returns the path.
func WriteFile(dir string, lat, lon, posts int, height HeightFunc) (string, error) {
	path := filepath.Join(dir, Name(lat, lon))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(f, posts, height); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
