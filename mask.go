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

// GlacierMask derives a binary glacier presence mask from a surface/bed
// elevation pair: 1 where the ice thickness (surface − bed) strictly
// exceeds minDepth, 0 elsewhere. The inputs are not modified.
func GlacierMask(surface, bed *Raster, minDepth float64) (*Raster, error) {
	if !surface.SameGeometryAs(bed) {
		return nil, dataErrorf("surface raster (%d×%d) and bed raster (%d×%d) have different geometry",
			surface.Nx(), surface.Ny(), bed.Nx(), bed.Ny())
	}
	mask := NewRaster(surface.Nx(), surface.Ny(), surface.Dx, surface.Dy,
		surface.W, surface.S, surface.SR)
	for i, s := range surface.Data.Elements {
		if s-bed.Data.Elements[i] > minDepth {
			mask.Data.Elements[i] = 1
		}
	}
	return mask, nil
}
