/*
Copyright © 2024 the RGMGrid authors.
This file is part of RGMGrid.

RGMGrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RGMGrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RGMGrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package rgmgrid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// surferMagic identifies a Golden Software ASCII grid.
const surferMagic = "DSAA"

// WriteSurferGrid serializes r as a Golden Software (Surfer) ASCII grid:
// the DSAA magic, column and row counts, the x and y extents measured
// cell-center to cell-center (half a cell inward from the geometric
// extent), the value range, and the value block with the geographically
// topmost row first. Every value is written with exactly one fractional
// digit.
func WriteSurferGrid(w io.Writer, r *Raster) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, surferMagic)
	fmt.Fprintf(bw, "%d %d\n", r.Nx(), r.Ny())
	fmt.Fprintf(bw, "%s %s\n", ftoa(r.W+r.Dx/2), ftoa(r.E()-r.Dx/2))
	fmt.Fprintf(bw, "%s %s\n", ftoa(r.S+r.Dy/2), ftoa(r.N()-r.Dy/2))
	fmt.Fprintf(bw, "%s %s\n", ftoa(r.Min()), ftoa(r.Max()))

	// Storage row 0 is already the topmost row, so rows are written in
	// storage order.
	for row := 0; row < r.Ny(); row++ {
		for col := 0; col < r.Nx(); col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%.1f", r.Value(row, col))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return ioErrorf("writing ascii grid: %v", err)
	}
	return nil
}

// WriteSurferGridFile writes r as a Surfer ASCII grid to the file at path.
func WriteSurferGridFile(path string, r *Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErrorf("creating ascii grid %s: %v", path, err)
	}
	if err := WriteSurferGrid(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return ioErrorf("closing ascii grid %s: %v", path, err)
	}
	return nil
}

// ReadSurferGrid parses a Surfer ASCII grid written by WriteSurferGrid.
// The returned raster carries no projection information; callers that
// know the grid projection must set it. Grids a single cell wide or tall
// cannot encode their own spacing in this format and are given unit
// spacing in that direction.
func ReadSurferGrid(r io.Reader) (*Raster, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	next := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", ioErrorf("reading ascii grid: %v", err)
			}
			return "", dataErrorf("ascii grid ends unexpectedly")
		}
		return scanner.Text(), nil
	}
	nextFloat := func() (float64, error) {
		tok, err := next()
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, dataErrorf("ascii grid contains non-numeric token %q", tok)
		}
		return v, nil
	}

	magic, err := next()
	if err != nil {
		return nil, err
	}
	if magic != surferMagic {
		return nil, dataErrorf("ascii grid starts with %q; expected %q", magic, surferMagic)
	}
	var header [8]float64 // nx ny xlo xhi ylo yhi zlo zhi
	for i := range header {
		if header[i], err = nextFloat(); err != nil {
			return nil, err
		}
	}
	nx, ny := int(header[0]), int(header[1])
	if nx < 1 || ny < 1 {
		return nil, dataErrorf("ascii grid has invalid dimensions %d×%d", nx, ny)
	}
	xlo, xhi, ylo, yhi := header[2], header[3], header[4], header[5]

	dx, dy := 1.0, 1.0
	if nx > 1 {
		dx = (xhi - xlo) / float64(nx-1)
	}
	if ny > 1 {
		dy = (yhi - ylo) / float64(ny-1)
	}
	if dx <= 0 || dy <= 0 {
		return nil, dataErrorf("ascii grid has non-increasing extent")
	}

	o := NewRaster(nx, ny, dx, dy, xlo-dx/2, ylo-dy/2, nil)
	for row := 0; row < ny; row++ {
		for col := 0; col < nx; col++ {
			v, err := nextFloat()
			if err != nil {
				return nil, err
			}
			o.SetValue(v, row, col)
		}
	}
	return o, nil
}

// ReadSurferGridFile reads a Surfer ASCII grid from the file at path.
func ReadSurferGridFile(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErrorf("opening ascii grid %s: %v", path, err)
	}
	defer f.Close()
	return ReadSurferGrid(f)
}

// ftoa formats a coordinate with the shortest decimal representation
// that round-trips.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
