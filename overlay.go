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
	"math"
	"sort"
)

// Pixel is one cell of the cropped surface raster together with its
// position in the glaciation model's pixel numbering and its assignment
// to a computational grid cell.
type Pixel struct {
	// ID is the 1-based sequential pixel number in row-major storage
	// order (top storage row first).
	ID int

	// Row and Col are 0-based. Col counts eastward from the western
	// edge. Row counts from the geographic top unless the overlay was
	// run with rowsFromBottom set, in which case it counts from the
	// geographic bottom.
	Row, Col int

	// Band is the elevation band index,
	// floor((elevation − reference) / bandSize). It may be negative.
	Band int

	// Elev is the pixel elevation rounded to the nearest whole unit.
	Elev int

	// CellID identifies the computational grid cell containing the pixel
	// center. It is empty when the center falls outside every grid
	// polygon; such pixels are still part of the overlay output.
	CellID string
}

// Overlay assigns each cell of the surface raster to an elevation band
// and to a computational grid cell. Pixels are numbered 1..nx*ny in
// row-major storage order; the cell assignment tests the pixel center
// against loc. refElevation and bandSize define the elevation band
// discretization. When rowsFromBottom is set, pixel row indices count
// from the geographic bottom of the grid instead of the top.
//
// The returned records are sorted ascending by Row, then by Col within
// each row. Downstream consumers depend on that ordering.
func Overlay(surface *Raster, loc CellLocator, refElevation, bandSize float64, rowsFromBottom bool) ([]Pixel, error) {
	if bandSize <= 0 {
		return nil, configErrorf("elevation band size must be positive but is %g", bandSize)
	}
	nx, ny := surface.Nx(), surface.Ny()
	pixels := make([]Pixel, 0, nx*ny)
	for id := 1; id <= nx*ny; id++ {
		row := int(math.Ceil(float64(id)/float64(nx))) - 1
		col := id - row*nx - 1
		elev := surface.Value(row, col)

		p := Pixel{
			ID:   id,
			Row:  row,
			Col:  col,
			Band: int(math.Floor((elev - refElevation) / bandSize)),
			Elev: round(elev),
		}
		if rowsFromBottom {
			p.Row = ny - row - 1
		}
		if cellID, ok := loc.Locate(surface.CellCenter(row, col)); ok {
			p.CellID = cellID
		}
		pixels = append(pixels, p)
	}
	sort.Slice(pixels, func(i, j int) bool {
		if pixels[i].Row != pixels[j].Row {
			return pixels[i].Row < pixels[j].Row
		}
		return pixels[i].Col < pixels[j].Col
	})
	return pixels, nil
}
