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

// minPositiveElevation replaces non-positive elevation values; the
// glaciation model does not tolerate zero or negative elevations.
const minPositiveElevation = 0.1

// CorrectElevations fixes non-physical and noise-level values in a
// surface/bed elevation pair in place, cell by cell:
//
// Non-positive surface or bed values are replaced with 0.1. Then, using
// the already-corrected values, any cell whose ice thickness
// (surface − bed) is at or below minDepth has both surface and bed
// replaced with their pairwise average, producing a degenerate
// zero-thickness cell rather than a negative or noise-level one.
//
// The corrections are idempotent: applying them twice gives the same
// result as applying them once.
func CorrectElevations(surface, bed *Raster, minDepth float64) error {
	if !surface.SameGeometryAs(bed) {
		return dataErrorf("surface raster (%d×%d) and bed raster (%d×%d) have different geometry",
			surface.Nx(), surface.Ny(), bed.Nx(), bed.Ny())
	}
	for i, s := range surface.Data.Elements {
		b := bed.Data.Elements[i]
		if s <= 0 {
			s = minPositiveElevation
		}
		if b <= 0 {
			b = minPositiveElevation
		}
		if s-b <= minDepth {
			mean := (s + b) / 2
			s = mean
			b = mean
		}
		surface.Data.Elements[i] = s
		bed.Data.Elements[i] = b
	}
	return nil
}
