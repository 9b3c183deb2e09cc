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

	"github.com/ctessum/geom"
)

// testRaster builds a raster anchored at (0,0) with 100 m cells and the
// given values in storage (row-major, top row first) order.
func testRaster(nx, ny int, vals ...float64) *Raster {
	r := NewRaster(nx, ny, 100, 100, 0, 0, nil)
	if vals != nil {
		if len(vals) != nx*ny {
			panic("testRaster: wrong number of values")
		}
		copy(r.Data.Elements, vals)
	}
	return r
}

// uniformRaster builds a raster anchored at (0,0) with 100 m cells and
// every value set to v.
func uniformRaster(nx, ny int, v float64) *Raster {
	r := testRaster(nx, ny)
	for i := range r.Data.Elements {
		r.Data.Elements[i] = v
	}
	return r
}

// squareCell builds a rectangular grid cell polygon with its lower-left
// corner at (x0, y0).
func squareCell(id string, x0, y0, w, h float64) *GridCell {
	return &GridCell{
		CellID: id,
		Polygonal: geom.Polygon{{
			{X: x0, Y: y0},
			{X: x0 + w, Y: y0},
			{X: x0 + w, Y: y0 + h},
			{X: x0, Y: y0 + h},
			{X: x0, Y: y0},
		}},
	}
}

// testPolygons builds a two-cell computational grid covering the western
// and eastern halves of a 400×400 m domain anchored at (0,0).
func testPolygons() *GridPolygons {
	return NewGridPolygons([]*GridCell{
		squareCell("101", 0, 0, 200, 400),
		squareCell("102", 200, 0, 200, 400),
	}, nil)
}

func closeTo(a, b, tol float64) bool { return math.Abs(a-b) <= tol }
