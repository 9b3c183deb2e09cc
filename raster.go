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
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Raster is a regular grid of floating-point values. Values are stored in
// a dense array with shape [ny, nx]; storage row 0 is the northernmost
// (geographically topmost) row.
type Raster struct {
	Data *sparse.DenseArray

	// Dx and Dy are the cell dimensions [m].
	Dx, Dy float64

	// W and S are the coordinates of the western and southern edges of
	// the grid (cell edges, not cell centers).
	W, S float64

	// SR is the spatial reference of the grid. It may be nil when the
	// source format does not carry projection information.
	SR *proj.SR
}

// NewRaster allocates a zero-filled raster with nx columns and ny rows.
func NewRaster(nx, ny int, dx, dy, w, s float64, sr *proj.SR) *Raster {
	return &Raster{
		Data: sparse.ZerosDense(ny, nx),
		Dx:   dx,
		Dy:   dy,
		W:    w,
		S:    s,
		SR:   sr,
	}
}

// Nx returns the number of columns.
func (r *Raster) Nx() int { return r.Data.Shape[1] }

// Ny returns the number of rows.
func (r *Raster) Ny() int { return r.Data.Shape[0] }

// N returns the coordinate of the northern edge of the grid.
func (r *Raster) N() float64 { return r.S + float64(r.Ny())*r.Dy }

// E returns the coordinate of the eastern edge of the grid.
func (r *Raster) E() float64 { return r.W + float64(r.Nx())*r.Dx }

// Bounds returns the geometric extent of the grid, edge to edge.
func (r *Raster) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: r.W, Y: r.S},
		Max: geom.Point{X: r.E(), Y: r.N()},
	}
}

// Value returns the value at the given storage row and column.
func (r *Raster) Value(row, col int) float64 { return r.Data.Get(row, col) }

// SetValue sets the value at the given storage row and column.
func (r *Raster) SetValue(v float64, row, col int) { r.Data.Set(v, row, col) }

// CellCenter returns the coordinates of the center of the cell at the
// given storage row and column.
func (r *Raster) CellCenter(row, col int) geom.Point {
	return geom.Point{
		X: r.W + (float64(col)+0.5)*r.Dx,
		Y: r.N() - (float64(row)+0.5)*r.Dy,
	}
}

// Min returns the minimum value in the grid.
func (r *Raster) Min() float64 { return floats.Min(r.Data.Elements) }

// Max returns the maximum value in the grid.
func (r *Raster) Max() float64 { return floats.Max(r.Data.Elements) }

// Clone returns a deep copy of r.
func (r *Raster) Clone() *Raster {
	o := NewRaster(r.Nx(), r.Ny(), r.Dx, r.Dy, r.W, r.S, r.SR)
	copy(o.Data.Elements, r.Data.Elements)
	return o
}

// SameGeometryAs reports whether r and o have identical grid geometry:
// equal dimensions, cell size, and extent.
func (r *Raster) SameGeometryAs(o *Raster) bool {
	return r.Nx() == o.Nx() && r.Ny() == o.Ny() &&
		r.Dx == o.Dx && r.Dy == o.Dy &&
		r.W == o.W && r.S == o.S
}

// Crop returns the portion of r covering the extent b expanded by buffer
// in every direction. The crop boundary snaps outward to whole-cell edges,
// so the result never covers less than the requested (buffered) extent
// except where the requested extent reaches beyond the source grid.
func (r *Raster) Crop(b *geom.Bounds, buffer float64) (*Raster, error) {
	n := r.N()
	minX := b.Min.X - buffer
	maxX := b.Max.X + buffer
	minY := b.Min.Y - buffer
	maxY := b.Max.Y + buffer

	col0 := int(math.Floor((minX - r.W) / r.Dx))
	col1 := int(math.Ceil((maxX - r.W) / r.Dx))
	row0 := int(math.Floor((n - maxY) / r.Dy))
	row1 := int(math.Ceil((n - minY) / r.Dy))

	if col0 < 0 {
		col0 = 0
	}
	if row0 < 0 {
		row0 = 0
	}
	if col1 > r.Nx() {
		col1 = r.Nx()
	}
	if row1 > r.Ny() {
		row1 = r.Ny()
	}
	if col0 >= col1 || row0 >= row1 {
		return nil, dataErrorf("crop extent (%g,%g)-(%g,%g) does not overlap the raster extent (%g,%g)-(%g,%g)",
			minX, minY, maxX, maxY, r.W, r.S, r.E(), n)
	}

	o := NewRaster(col1-col0, row1-row0, r.Dx, r.Dy,
		r.W+float64(col0)*r.Dx, n-float64(row1)*r.Dy, r.SR)
	for row := row0; row < row1; row++ {
		for col := col0; col < col1; col++ {
			o.SetValue(r.Value(row, col), row-row0, col-col0)
		}
	}
	return o, nil
}

// Aggregate coarsens the grid resolution by block-averaging each
// factor×factor tile of cells into one output cell. The northwestern grid
// corner stays anchored; when the grid dimensions are not whole multiples
// of factor, edge tiles average only the cells they cover and the output
// extent snaps outward to whole output cells at the southern and eastern
// edges.
func (r *Raster) Aggregate(factor int) (*Raster, error) {
	if factor < 1 {
		return nil, configErrorf("aggregation factor must be ≥ 1 but is %d", factor)
	}
	if factor == 1 {
		return r.Clone(), nil
	}
	nx := (r.Nx() + factor - 1) / factor
	ny := (r.Ny() + factor - 1) / factor
	dx := r.Dx * float64(factor)
	dy := r.Dy * float64(factor)
	o := NewRaster(nx, ny, dx, dy, r.W, r.N()-float64(ny)*dy, r.SR)
	for row := 0; row < ny; row++ {
		for col := 0; col < nx; col++ {
			var sum float64
			var count int
			for i := row * factor; i < (row+1)*factor && i < r.Ny(); i++ {
				for j := col * factor; j < (col+1)*factor && j < r.Nx(); j++ {
					sum += r.Value(i, j)
					count++
				}
			}
			o.SetValue(sum/float64(count), row, col)
		}
	}
	return o, nil
}

func round(v float64) int { return int(math.Floor(v + 0.5)) }
